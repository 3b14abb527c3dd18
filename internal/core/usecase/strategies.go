package usecase

import (
	"context"
	"fmt"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
)

// exactScoreFloor is assigned when the lexical index signals a match but
// returns no usable rank.
const exactScoreFloor = 0.8

// strategyResult is what one retrieval strategy contributes to fusion.
// A failed or timed-out strategy carries its error and zero candidates.
type strategyResult struct {
	source     domain.StrategySource
	candidates []domain.Candidate
	err        error
}

// searchExact queries the lexical store for literal full-text matches.
// The store's native rank is mapped linearly into [0,1].
func searchExact(ctx context.Context, lexical ports.LexicalSearcher, query string, limit int, filter domain.SearchFilter, scale float64) strategyResult {
	hits, err := lexical.SearchExact(ctx, query, limit, filter)
	if err != nil {
		return strategyResult{source: domain.StrategyExact, err: fmt.Errorf("lexical exact search: %w", err)}
	}
	out := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		out = append(out, domain.Candidate{
			RecipeID:        hit.RecipeID,
			Title:           hit.Title,
			Snippet:         hit.Snippet,
			Source:          domain.StrategyExact,
			RawScore:        hit.Score,
			NormalizedScore: normalizeExactScore(hit.Score, scale),
		})
	}
	return strategyResult{source: domain.StrategyExact, candidates: out}
}

// searchSemantic embeds the query and runs cosine KNN search. The cosine
// similarity is already comparable; negatives clamp to zero.
func searchSemantic(ctx context.Context, embedder ports.Embedder, vector ports.VectorSearcher, query string, limit int, filter domain.SearchFilter) strategyResult {
	queryVector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return strategyResult{source: domain.StrategySemantic, err: fmt.Errorf("embed query: %w", err)}
	}
	hits, err := vector.Search(ctx, queryVector, limit, filter)
	if err != nil {
		return strategyResult{source: domain.StrategySemantic, err: fmt.Errorf("vector search: %w", err)}
	}
	out := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		out = append(out, domain.Candidate{
			RecipeID:        hit.RecipeID,
			Title:           hit.Title,
			Snippet:         hit.Snippet,
			Source:          domain.StrategySemantic,
			RawScore:        hit.Score,
			NormalizedScore: clampUnit(hit.Score),
		})
	}
	return strategyResult{source: domain.StrategySemantic, candidates: out}
}

// searchFuzzy queries the lexical store's trigram index. Trigram similarity
// is already in [0,1].
func searchFuzzy(ctx context.Context, lexical ports.LexicalSearcher, query string, limit int, filter domain.SearchFilter) strategyResult {
	hits, err := lexical.SearchFuzzy(ctx, query, limit, filter)
	if err != nil {
		return strategyResult{source: domain.StrategyFuzzy, err: fmt.Errorf("lexical fuzzy search: %w", err)}
	}
	out := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		out = append(out, domain.Candidate{
			RecipeID:        hit.RecipeID,
			Title:           hit.Title,
			Snippet:         hit.Snippet,
			Source:          domain.StrategyFuzzy,
			RawScore:        hit.Score,
			NormalizedScore: clampUnit(hit.Score),
		})
	}
	return strategyResult{source: domain.StrategyFuzzy, candidates: out}
}

func normalizeExactScore(raw, scale float64) float64 {
	if raw <= 0 {
		return exactScoreFloor
	}
	return clampUnit(raw * scale)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
