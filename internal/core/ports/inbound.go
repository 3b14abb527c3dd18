package ports

import (
	"context"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

// IntentClassifier is the inbound contract for intent classification.
// It never fails: backend trouble degrades to a keyword-derived result.
type IntentClassifier interface {
	Classify(ctx context.Context, rawText, conversationContext string) domain.IntentResult
}

// RecipeRetriever is the inbound contract for hybrid recipe retrieval.
// It never fails: a strategy that errors contributes nothing.
type RecipeRetriever interface {
	Retrieve(ctx context.Context, query string, limit int, filter domain.SearchFilter) domain.RetrievalOutcome
}

// RecipeIngestor is the inbound contract for corpus writes.
type RecipeIngestor interface {
	Ingest(ctx context.Context, title, body, category string, kcal int) (*domain.Recipe, error)
	GetByID(ctx context.Context, id string) (*domain.Recipe, error)
}

// RecipeProcessor is the inbound contract for asynchronous index building.
type RecipeProcessor interface {
	IndexByID(ctx context.Context, recipeID string) error
	ReindexPending(ctx context.Context) error
}
