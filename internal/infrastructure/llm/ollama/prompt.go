package ollama

import "strings"

func buildIntentPrompt(text, conversationContext string) string {
	const maxSnippet = 2000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	var b strings.Builder
	b.WriteString(`You are the intent classifier of a diet-coaching chat assistant.
Classify the user message into exactly one category:
- meal_planning: the user wants a diet/meal plan, often spanning days
- recipe_lookup: the user wants how to cook a specific dish
- place_search: the user wants a restaurant or place to eat
- calendar_save: the user wants a meal or plan saved to their calendar
- general_chat: greetings, small talk, preferences, anything else

Return strict JSON with keys:
category (string), confidence (number from 0 to 1), reasoning (string).
No markdown, no extra keys.
`)

	if ctxText := strings.TrimSpace(conversationContext); ctxText != "" {
		b.WriteString("\nConversation context:\n")
		b.WriteString(ctxText)
		b.WriteString("\n")
	}

	b.WriteString("\nUser message:\n")
	b.WriteString(snippet)
	return b.String()
}
