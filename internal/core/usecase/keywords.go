package usecase

import "github.com/minjcho/dietcoach/internal/core/domain"

// keywordGroup is one weighted band of trigger words for a category.
// A group contributes its weight once no matter how many of its words match.
type keywordGroup struct {
	weight float64
	words  []string
}

const (
	weightHigh       = 2.0
	weightMedium     = 1.0
	weightContextual = 0.3

	coOccurrenceBonus = 0.5
)

// keywordTable holds the per-category trigger vocabulary plus the
// co-occurrence sets used to suppress single ambiguous keywords.
type keywordTable struct {
	groups       map[domain.IntentCategory][]keywordGroup
	coOccurrence map[domain.IntentCategory][]string
}

// defaultKeywordTable is the tuned vocabulary of the Korean diet-coach bot.
// Words are matched against normalized tokens, so particles attached to a
// stem (식당을, 레시피를) still hit via prefix matching.
func defaultKeywordTable() keywordTable {
	return keywordTable{
		groups: map[domain.IntentCategory][]keywordGroup{
			domain.IntentMealPlanning: {
				{weight: weightHigh, words: []string{"식단", "식단표", "주간식단", "식단짜"}},
				{weight: weightMedium, words: []string{"계획", "플랜", "짜줘"}},
				{weight: weightContextual, words: []string{"일주일", "주간", "한달", "다이어트"}},
			},
			domain.IntentRecipeLookup: {
				{weight: weightHigh, words: []string{"레시피", "조리법", "요리법"}},
				{weight: weightMedium, words: []string{"만드는", "만들어", "재료"}},
				{weight: weightContextual, words: []string{"요리", "방법"}},
			},
			domain.IntentPlaceSearch: {
				{weight: weightHigh, words: []string{"식당", "맛집", "레스토랑"}},
				{weight: weightMedium, words: []string{"근처", "주변"}},
				{weight: weightContextual, words: []string{"추천", "어디"}},
			},
			domain.IntentCalendarSave: {
				{weight: weightHigh, words: []string{"캘린더", "달력"}},
				{weight: weightMedium, words: []string{"저장", "기록", "등록"}},
				{weight: weightContextual, words: []string{"일정"}},
			},
			domain.IntentGeneralChat: {
				{weight: weightMedium, words: []string{"안녕", "고마워", "반가워"}},
			},
		},
		coOccurrence: map[domain.IntentCategory][]string{
			domain.IntentMealPlanning: {"식단", "일주일", "주간", "계획"},
			domain.IntentRecipeLookup: {"레시피", "만드는", "재료"},
			domain.IntentPlaceSearch:  {"식당", "맛집", "근처", "주변"},
			domain.IntentCalendarSave: {"저장", "기록", "등록", "캘린더", "달력"},
		},
	}
}

// calendarSaveWords are the independent save signals for the calendar
// short-circuit; two of them, or one plus a date token, commit the category.
var calendarSaveWords = []string{"저장", "기록", "등록", "캘린더", "달력"}

// calendarLiteralWords fire the short-circuit on their own.
var calendarLiteralWords = []string{"캘린더", "달력"}

var dateWords = []string{
	"오늘", "내일", "모레", "주말",
	"월요일", "화요일", "수요일", "목요일", "금요일", "토요일", "일요일",
}

// matchToken reports whether a normalized token carries the keyword: either
// the token is the keyword or the keyword is its stem with a particle suffix.
// Matching never fires mid-token, so "식당" cannot leak out of an unrelated
// longer word.
func matchToken(token, keyword string) bool {
	if keyword == "" || len(token) < len(keyword) {
		return false
	}
	return token[:len(keyword)] == keyword
}

// matchAny reports whether any token carries the keyword.
func matchAny(tokens []string, keyword string) bool {
	for _, token := range tokens {
		if matchToken(token, keyword) {
			return true
		}
	}
	return false
}
