package domain

import "time"

// StrategySource identifies which retrieval strategy produced a candidate.
type StrategySource string

const (
	StrategyExact    StrategySource = "exact"
	StrategySemantic StrategySource = "semantic"
	StrategyFuzzy    StrategySource = "fuzzy"
)

// StrategyPriority orders strategies for tie-breaking: exact beats semantic
// beats fuzzy. Lower value wins.
func StrategyPriority(s StrategySource) int {
	switch s {
	case StrategyExact:
		return 0
	case StrategySemantic:
		return 1
	case StrategyFuzzy:
		return 2
	default:
		return 3
	}
}

// Tier is the coarse verdict on whether retrieved data suffices to answer
// without generative fallback.
type Tier string

const (
	TierExact   Tier = "exact"
	TierPartial Tier = "partial"
	TierNone    Tier = "none"
)

type SearchFilter struct {
	Category string
	MaxKcal  int
}

// StoreHit is the raw scored row a backing store returns.
type StoreHit struct {
	RecipeID string
	Title    string
	Snippet  string
	Score    float64
}

// Candidate is one retrieved recipe plus its per-strategy relevance.
// NormalizedScore is always in [0,1] and comparable across strategies.
type Candidate struct {
	RecipeID        string         `json:"recipe_id"`
	Title           string         `json:"title"`
	Snippet         string         `json:"snippet"`
	Source          StrategySource `json:"source"`
	RawScore        float64        `json:"raw_score"`
	NormalizedScore float64        `json:"normalized_score"`
	Confirmations   int            `json:"confirmations"`
}

// RetrievalOutcome is the fused, tier-classified result of one retrieval call.
// Invariants: Tier == TierNone iff Candidates is empty; Tier == TierExact only
// when the top candidate is exact-sourced and clears the exact threshold.
type RetrievalOutcome struct {
	Tier       Tier        `json:"tier"`
	Candidates []Candidate `json:"candidates"`
	Message    string      `json:"message"`
	// Degraded lists the strategies that errored or timed out and thus
	// contributed nothing to Candidates.
	Degraded []string `json:"degraded_strategies,omitempty"`
}

type IndexStatus string

const (
	IndexPending IndexStatus = "pending"
	IndexReady   IndexStatus = "indexed"
	IndexFailed  IndexStatus = "failed"
)

// Recipe is a retrievable corpus unit. The core only reads snapshots of it;
// the stores own the data.
type Recipe struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Category    string      `json:"category"`
	Kcal        int         `json:"kcal"`
	IndexStatus IndexStatus `json:"index_status"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
