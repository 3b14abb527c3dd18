package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
)

const reindexConcurrency = 4

// IndexRecipeUseCase builds the vector index for stored recipes.
type IndexRecipeUseCase struct {
	recipes  ports.RecipeStore
	embedder ports.Embedder
	vector   ports.RecipeIndexer
}

func NewIndexRecipeUseCase(recipes ports.RecipeStore, embedder ports.Embedder, vector ports.RecipeIndexer) *IndexRecipeUseCase {
	return &IndexRecipeUseCase{recipes: recipes, embedder: embedder, vector: vector}
}

func (uc *IndexRecipeUseCase) IndexByID(ctx context.Context, recipeID string) error {
	recipe, err := uc.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("fetch recipe by id: %w", err)
	}

	if err := uc.index(ctx, recipe); err != nil {
		if failErr := uc.recipes.UpdateIndexStatus(ctx, recipeID, domain.IndexFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.recipes.UpdateIndexStatus(ctx, recipeID, domain.IndexReady, ""); err != nil {
		return fmt.Errorf("set status=indexed: %w", err)
	}
	return nil
}

// ReindexPending sweeps recipes whose index build never completed, e.g.
// after a crash or a lost queue event, and rebuilds them concurrently.
func (uc *IndexRecipeUseCase) ReindexPending(ctx context.Context) error {
	pending, err := uc.recipes.ListRecipesByStatus(ctx, domain.IndexPending, 0)
	if err != nil {
		return fmt.Errorf("list pending recipes: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexConcurrency)
	for _, recipe := range pending {
		id := recipe.ID
		g.Go(func() error {
			if err := uc.IndexByID(gctx, id); err != nil {
				return fmt.Errorf("reindex %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (uc *IndexRecipeUseCase) index(ctx context.Context, recipe *domain.Recipe) error {
	vector, err := uc.embedder.EmbedQuery(ctx, recipe.Title+"\n"+recipe.Body)
	if err != nil {
		return fmt.Errorf("embed recipe: %w", err)
	}
	if len(vector) == 0 {
		return domain.WrapError(domain.ErrMalformedResponse, "embed recipe", fmt.Errorf("empty embedding"))
	}
	if err := uc.vector.IndexRecipe(ctx, recipe, vector); err != nil {
		return fmt.Errorf("index recipe in vector store: %w", err)
	}
	return nil
}
