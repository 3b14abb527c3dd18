package domain

import (
	"fmt"
	"strings"
)

// IntentCategory is the closed set of actions the chat layer can route to.
type IntentCategory string

const (
	IntentMealPlanning IntentCategory = "meal_planning"
	IntentRecipeLookup IntentCategory = "recipe_lookup"
	IntentPlaceSearch  IntentCategory = "place_search"
	IntentCalendarSave IntentCategory = "calendar_save"
	IntentGeneralChat  IntentCategory = "general_chat"
)

// IntentPriority orders categories for deterministic tie-breaking.
// Lower value wins a tie.
var intentPriority = map[IntentCategory]int{
	IntentCalendarSave: 0,
	IntentMealPlanning: 1,
	IntentRecipeLookup: 2,
	IntentPlaceSearch:  3,
	IntentGeneralChat:  4,
}

func IntentPriority(c IntentCategory) int {
	p, ok := intentPriority[c]
	if !ok {
		return len(intentPriority)
	}
	return p
}

// ParseIntentCategory rejects unknown category strings at the boundary.
func ParseIntentCategory(raw string) (IntentCategory, error) {
	switch IntentCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentMealPlanning:
		return IntentMealPlanning, nil
	case IntentRecipeLookup:
		return IntentRecipeLookup, nil
	case IntentPlaceSearch:
		return IntentPlaceSearch, nil
	case IntentCalendarSave:
		return IntentCalendarSave, nil
	case IntentGeneralChat:
		return IntentGeneralChat, nil
	default:
		return "", fmt.Errorf("unknown intent category: %q", raw)
	}
}

type ClassifyMethod string

const (
	MethodKeyword         ClassifyMethod = "keyword"
	MethodLLM             ClassifyMethod = "llm"
	MethodKeywordFallback ClassifyMethod = "keyword_fallback"
)

// IntentResult is produced once per classification call and consumed
// immediately by the caller. It is never persisted.
type IntentResult struct {
	Category        IntentCategory `json:"category"`
	Confidence      float64        `json:"confidence"`
	Method          ClassifyMethod `json:"method"`
	MatchedKeywords []string       `json:"matched_keywords"`
	Reasoning       string         `json:"reasoning,omitempty"`
}
