package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
)

const (
	defaultSearchLimit     = 5
	defaultStrategyTimeout = 300 * time.Millisecond
)

type HybridSearchConfig struct {
	// StrategyTimeout bounds each backend call independently; a timed-out
	// strategy contributes nothing instead of stalling the join.
	StrategyTimeout time.Duration
	// ExactThreshold is the normalized score the top exact candidate must
	// clear for the exact tier.
	ExactThreshold float64
	// ExactScoreScale maps the lexical store's native rank into [0,1].
	ExactScoreScale float64
	// DefaultLimit applies when the caller passes no positive limit.
	DefaultLimit int
}

func (c HybridSearchConfig) normalize() HybridSearchConfig {
	out := c
	if out.StrategyTimeout <= 0 {
		out.StrategyTimeout = defaultStrategyTimeout
	}
	if out.ExactThreshold <= 0 {
		out.ExactThreshold = defaultExactThreshold
	}
	if out.ExactScoreScale <= 0 {
		out.ExactScoreScale = defaultScoreNorm
	}
	if out.DefaultLimit <= 0 {
		out.DefaultLimit = defaultSearchLimit
	}
	return out
}

// HybridSearchUseCase fans one query out to the exact, semantic, and fuzzy
// strategies concurrently and fuses their candidate sets into a single
// tier-classified outcome. It holds no mutable state across requests.
type HybridSearchUseCase struct {
	embedder ports.Embedder
	lexical  ports.LexicalSearcher
	vector   ports.VectorSearcher
	cfg      HybridSearchConfig
}

func NewHybridSearchUseCase(
	embedder ports.Embedder,
	lexical ports.LexicalSearcher,
	vector ports.VectorSearcher,
	cfg HybridSearchConfig,
) *HybridSearchUseCase {
	return &HybridSearchUseCase{
		embedder: embedder,
		lexical:  lexical,
		vector:   vector,
		cfg:      cfg.normalize(),
	}
}

// Retrieve never fails: each strategy degrades independently to an empty
// contribution, and the fusion barrier is the only synchronization point.
func (uc *HybridSearchUseCase) Retrieve(ctx context.Context, query string, limit int, filter domain.SearchFilter) domain.RetrievalOutcome {
	if limit <= 0 {
		limit = uc.cfg.DefaultLimit
	}

	run := []func(context.Context) strategyResult{
		func(sctx context.Context) strategyResult {
			return searchExact(sctx, uc.lexical, query, limit, filter, uc.cfg.ExactScoreScale)
		},
		func(sctx context.Context) strategyResult {
			return searchSemantic(sctx, uc.embedder, uc.vector, query, limit, filter)
		},
		func(sctx context.Context) strategyResult {
			return searchFuzzy(sctx, uc.lexical, query, limit, filter)
		},
	}

	results := make([]strategyResult, len(run))
	var wg sync.WaitGroup
	for i, strategy := range run {
		wg.Add(1)
		go func(slot int, search func(context.Context) strategyResult) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, uc.cfg.StrategyTimeout)
			defer cancel()
			results[slot] = search(sctx)
		}(i, strategy)
	}
	wg.Wait()

	for _, result := range results {
		if result.err != nil {
			slog.Warn("search_strategy_degraded", "strategy", string(result.source), "error", result.err)
		}
	}

	outcome := fuseCandidates(results, uc.cfg.ExactThreshold)
	if len(outcome.Candidates) > limit {
		outcome.Candidates = outcome.Candidates[:limit]
	}
	return outcome
}
