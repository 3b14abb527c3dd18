package ports

import (
	"context"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

// Embedder builds vectors for query and recipe text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// IntentCompleter asks the LLM for a structured intent classification.
// A malformed or unknown-category response is returned as an error.
type IntentCompleter interface {
	CompleteIntent(ctx context.Context, text, conversationContext string) (domain.IntentCategory, float64, string, error)
}

// LexicalSearcher runs keyword search over the recipe corpus: exact
// (full-text) and fuzzy (trigram similarity) modes.
type LexicalSearcher interface {
	SearchExact(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.StoreHit, error)
	SearchFuzzy(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.StoreHit, error)
}

// VectorSearcher runs cosine k-nearest-neighbor search over recipe embeddings.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, limit int, filter domain.SearchFilter) ([]domain.StoreHit, error)
}

// RecipeIndexer upserts recipe points into the vector store.
type RecipeIndexer interface {
	IndexRecipe(ctx context.Context, recipe *domain.Recipe, vector []float32) error
}

// RecipeStore persists recipe state and serves lexical reads.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	GetRecipeByID(ctx context.Context, id string) (*domain.Recipe, error)
	UpdateIndexStatus(ctx context.Context, id string, status domain.IndexStatus, errMessage string) error
	ListRecipesByStatus(ctx context.Context, status domain.IndexStatus, limit int) ([]domain.Recipe, error)
}

// MessageQueue publishes/consumes recipe indexing events.
type MessageQueue interface {
	PublishRecipeStored(ctx context.Context, recipeID string) error
	SubscribeRecipeStored(ctx context.Context, handler func(context.Context, string) error) error
}
