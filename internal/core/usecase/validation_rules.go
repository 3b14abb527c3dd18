package usecase

import (
	"github.com/minjcho/dietcoach/internal/core/domain"
)

// ValidationRule is a pure post-hoc correction of a keyword-derived category.
// Rules resolve known lexical ambiguities; applying any subset keeps the
// result inside the category enum.
type ValidationRule func(normalized string, category domain.IntentCategory) domain.IntentCategory

func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		ReclassifyMultiDayRecipeAsMealPlan,
		ForcePreferenceNotesToChat,
	}
}

func applyValidationRules(rules []ValidationRule, normalized string, category domain.IntentCategory) domain.IntentCategory {
	for _, rule := range rules {
		category = rule(normalized, category)
	}
	return category
}

// ReclassifyMultiDayRecipeAsMealPlan moves a recipe request that spans
// multiple days ("일주일치 레시피") into meal planning: the user wants a
// plan, not a single dish.
func ReclassifyMultiDayRecipeAsMealPlan(normalized string, category domain.IntentCategory) domain.IntentCategory {
	if category != domain.IntentRecipeLookup {
		return category
	}
	if hasMultiDaySpan(domain.Tokenize(normalized)) {
		return domain.IntentMealPlanning
	}
	return category
}

// ForcePreferenceNotesToChat routes messages that record a preference or
// ask the bot to remember something ("나 오이 싫어하는거 기억해") to general
// chat instead of treating them as an action request.
func ForcePreferenceNotesToChat(normalized string, category domain.IntentCategory) domain.IntentCategory {
	tokens := domain.Tokenize(normalized)
	for _, word := range memoryVerbWords {
		if matchAny(tokens, word) {
			return domain.IntentGeneralChat
		}
	}
	return category
}

var memoryVerbWords = []string{"기억해", "기억", "잊지마", "선호", "취향"}

var multiDayWords = []string{"일주일", "이주일", "한달", "주간", "매일"}

// hasMultiDaySpan detects multi-day quantities: dedicated span words or a
// numeric day count of two or more ("3일", "7일치").
func hasMultiDaySpan(tokens []string) bool {
	for _, word := range multiDayWords {
		if matchAny(tokens, word) {
			return true
		}
	}
	for _, token := range tokens {
		if n, ok := leadingDayCount(token); ok && n >= 2 {
			return true
		}
	}
	return false
}

// leadingDayCount parses tokens like "3일" or "7일치" into their day count.
func leadingDayCount(token string) (int, bool) {
	runes := []rune(token)
	n := 0
	digits := 0
	for _, r := range runes {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 || digits >= len(runes) {
		return 0, false
	}
	if runes[digits] != '일' {
		return 0, false
	}
	return n, true
}
