package usecase

import (
	"github.com/minjcho/dietcoach/internal/core/domain"
)

const (
	defaultScoreNorm = 4.0

	// noEvidenceConfidence is deliberately above zero: "no keyword evidence"
	// is weaker than "evidence against".
	noEvidenceConfidence = 0.3
)

// KeywordScorer is the cheap, deterministic first pass of intent
// classification. It holds only immutable vocabulary and configuration.
type KeywordScorer struct {
	table     keywordTable
	scoreNorm float64
}

func NewKeywordScorer(scoreNorm float64) *KeywordScorer {
	if scoreNorm <= 0 {
		scoreNorm = defaultScoreNorm
	}
	return &KeywordScorer{
		table:     defaultKeywordTable(),
		scoreNorm: scoreNorm,
	}
}

// CategoryScore is the raw keyword evidence for one category.
type CategoryScore struct {
	Raw     float64
	Matched []string
}

// Score computes per-category keyword evidence for normalized text.
// Each group contributes its weight once; two hits from the category's
// co-occurrence set add a fixed bonus.
func (s *KeywordScorer) Score(normalized string) map[domain.IntentCategory]CategoryScore {
	tokens := domain.Tokenize(normalized)
	scores := make(map[domain.IntentCategory]CategoryScore, len(s.table.groups))

	for category, groups := range s.table.groups {
		var score CategoryScore
		for _, group := range groups {
			groupHit := false
			for _, word := range group.words {
				if matchAny(tokens, word) {
					groupHit = true
					score.Matched = append(score.Matched, word)
				}
			}
			if groupHit {
				score.Raw += group.weight
			}
		}
		if countCoOccurrences(tokens, s.table.coOccurrence[category]) >= 2 {
			score.Raw += coOccurrenceBonus
		}
		scores[category] = score
	}

	return scores
}

// Winner picks the best-scoring category. Ties break by the fixed category
// priority order. Zero evidence everywhere falls back to general chat with
// the low-but-nonzero confidence floor.
func (s *KeywordScorer) Winner(scores map[domain.IntentCategory]CategoryScore) domain.IntentResult {
	var (
		best      domain.IntentCategory
		bestScore CategoryScore
		found     bool
	)
	for category, score := range scores {
		if score.Raw <= 0 {
			continue
		}
		if !found || score.Raw > bestScore.Raw ||
			(score.Raw == bestScore.Raw && domain.IntentPriority(category) < domain.IntentPriority(best)) {
			best = category
			bestScore = score
			found = true
		}
	}

	if !found {
		return domain.IntentResult{
			Category:        domain.IntentGeneralChat,
			Confidence:      noEvidenceConfidence,
			Method:          domain.MethodKeyword,
			MatchedKeywords: []string{},
		}
	}

	confidence := bestScore.Raw / s.scoreNorm
	if confidence > 1.0 {
		confidence = 1.0
	}
	matched := bestScore.Matched
	if matched == nil {
		matched = []string{}
	}
	return domain.IntentResult{
		Category:        best,
		Confidence:      confidence,
		Method:          domain.MethodKeyword,
		MatchedKeywords: matched,
	}
}

// RawScore exposes the raw pre-normalization score of a category, used by
// the router's unambiguity threshold.
func RawScore(scores map[domain.IntentCategory]CategoryScore, category domain.IntentCategory) float64 {
	return scores[category].Raw
}

func countCoOccurrences(tokens []string, set []string) int {
	matches := 0
	for _, word := range set {
		if matchAny(tokens, word) {
			matches++
		}
	}
	return matches
}
