package usecase

import (
	"testing"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

func TestMultiDayRecipeBecomesMealPlan(t *testing.T) {
	cases := []string{
		"일주일치 레시피 알려줘",
		"3일치 레시피 부탁해",
		"매일 해먹을 레시피",
	}
	for _, text := range cases {
		got := ReclassifyMultiDayRecipeAsMealPlan(domain.Normalize(text), domain.IntentRecipeLookup)
		if got != domain.IntentMealPlanning {
			t.Fatalf("%q: expected meal planning, got %q", text, got)
		}
	}
}

func TestSingleDishRecipeStaysRecipe(t *testing.T) {
	got := ReclassifyMultiDayRecipeAsMealPlan(domain.Normalize("김치찌개 레시피 알려줘"), domain.IntentRecipeLookup)
	if got != domain.IntentRecipeLookup {
		t.Fatalf("expected recipe lookup, got %q", got)
	}

	// A one-day span is not a plan.
	got = ReclassifyMultiDayRecipeAsMealPlan(domain.Normalize("1일치 레시피"), domain.IntentRecipeLookup)
	if got != domain.IntentRecipeLookup {
		t.Fatalf("1일치: expected recipe lookup, got %q", got)
	}
}

func TestMultiDayRuleOnlyTouchesRecipeLookup(t *testing.T) {
	got := ReclassifyMultiDayRecipeAsMealPlan(domain.Normalize("일주일 식당 투어"), domain.IntentPlaceSearch)
	if got != domain.IntentPlaceSearch {
		t.Fatalf("expected place search untouched, got %q", got)
	}
}

func TestPreferenceNotesForcedToChat(t *testing.T) {
	cases := []string{
		"나 오이 싫어하는거 기억해",
		"매운거 선호하는 편이야",
		"내 취향 잊지마",
	}
	for _, text := range cases {
		got := ForcePreferenceNotesToChat(domain.Normalize(text), domain.IntentMealPlanning)
		if got != domain.IntentGeneralChat {
			t.Fatalf("%q: expected general chat, got %q", text, got)
		}
	}
}

func TestPreferenceRulePassesThroughNormalRequests(t *testing.T) {
	got := ForcePreferenceNotesToChat(domain.Normalize("일주일 식단 짜줘"), domain.IntentMealPlanning)
	if got != domain.IntentMealPlanning {
		t.Fatalf("expected meal planning untouched, got %q", got)
	}
}

func TestApplyValidationRulesChains(t *testing.T) {
	got := applyValidationRules(DefaultValidationRules(),
		domain.Normalize("일주일치 레시피, 내 취향 기억해"), domain.IntentRecipeLookup)
	// The preference rule runs last and wins.
	if got != domain.IntentGeneralChat {
		t.Fatalf("expected general chat from chained rules, got %q", got)
	}
}

func TestLeadingDayCount(t *testing.T) {
	cases := []struct {
		token string
		n     int
		ok    bool
	}{
		{"3일", 3, true},
		{"7일치", 7, true},
		{"10일", 10, true},
		{"1일", 1, true},
		{"일주일", 0, false},
		{"3시간", 0, false},
		{"3", 0, false},
	}
	for _, tc := range cases {
		n, ok := leadingDayCount(tc.token)
		if n != tc.n || ok != tc.ok {
			t.Fatalf("leadingDayCount(%q) = (%d, %v), want (%d, %v)", tc.token, n, ok, tc.n, tc.ok)
		}
	}
}
