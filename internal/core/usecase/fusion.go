package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

const defaultExactThreshold = 0.75

// fuseCandidates deduplicates the per-strategy candidate sets, ranks the
// survivors under a total order, and classifies the overall tier.
//
// Dedup keeps the best-normalized entry per recipe id and counts how many
// strategies confirmed the recipe. The sort order is total so identical
// backend responses always produce byte-identical output: score desc,
// strategy priority (exact > semantic > fuzzy), confirmations desc,
// recipe id asc.
func fuseCandidates(results []strategyResult, exactThreshold float64) domain.RetrievalOutcome {
	if exactThreshold <= 0 {
		exactThreshold = defaultExactThreshold
	}

	merged := make(map[string]domain.Candidate)
	seenBy := make(map[string]map[domain.StrategySource]struct{})

	for _, result := range results {
		for _, candidate := range result.candidates {
			if candidate.RecipeID == "" {
				continue
			}
			if seenBy[candidate.RecipeID] == nil {
				seenBy[candidate.RecipeID] = make(map[domain.StrategySource]struct{}, 3)
			}
			seenBy[candidate.RecipeID][candidate.Source] = struct{}{}

			current, ok := merged[candidate.RecipeID]
			if !ok || betterCandidate(candidate, current) {
				merged[candidate.RecipeID] = candidate
			}
		}
	}

	fused := make([]domain.Candidate, 0, len(merged))
	for id, candidate := range merged {
		candidate.Confirmations = len(seenBy[id])
		fused = append(fused, candidate)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].NormalizedScore != fused[j].NormalizedScore {
			return fused[i].NormalizedScore > fused[j].NormalizedScore
		}
		pi, pj := domain.StrategyPriority(fused[i].Source), domain.StrategyPriority(fused[j].Source)
		if pi != pj {
			return pi < pj
		}
		if fused[i].Confirmations != fused[j].Confirmations {
			return fused[i].Confirmations > fused[j].Confirmations
		}
		return fused[i].RecipeID < fused[j].RecipeID
	})

	outcome := domain.RetrievalOutcome{Candidates: fused}
	switch {
	case len(fused) == 0:
		outcome.Tier = domain.TierNone
		outcome.Message = noCandidatesMessage(results)
	case fused[0].Source == domain.StrategyExact && fused[0].NormalizedScore >= exactThreshold:
		outcome.Tier = domain.TierExact
		outcome.Message = fmt.Sprintf(
			"exact match %q at %.2f (threshold %.2f, %d candidate(s))",
			fused[0].Title, fused[0].NormalizedScore, exactThreshold, len(fused),
		)
	default:
		outcome.Tier = domain.TierPartial
		outcome.Message = fmt.Sprintf(
			"partial match: top candidate %q via %s at %.2f, %d candidate(s)",
			fused[0].Title, fused[0].Source, fused[0].NormalizedScore, len(fused),
		)
	}

	if failed := failedStrategies(results); len(failed) > 0 {
		outcome.Degraded = failed
		outcome.Message += "; degraded strategies: " + strings.Join(failed, ", ")
	}
	return outcome
}

// betterCandidate decides which duplicate of the same recipe survives dedup.
func betterCandidate(candidate, current domain.Candidate) bool {
	if candidate.NormalizedScore != current.NormalizedScore {
		return candidate.NormalizedScore > current.NormalizedScore
	}
	return domain.StrategyPriority(candidate.Source) < domain.StrategyPriority(current.Source)
}

func noCandidatesMessage(results []strategyResult) string {
	if len(failedStrategies(results)) == len(results) && len(results) > 0 {
		return "no candidates: all strategies failed"
	}
	return "no candidates from any strategy"
}

func failedStrategies(results []strategyResult) []string {
	var failed []string
	for _, result := range results {
		if result.err != nil {
			failed = append(failed, string(result.source))
		}
	}
	sort.Strings(failed)
	return failed
}
