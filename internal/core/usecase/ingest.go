package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
)

// IngestRecipeUseCase stores a structured recipe and hands it to the worker
// for embedding via the queue.
type IngestRecipeUseCase struct {
	recipes ports.RecipeStore
	queue   ports.MessageQueue
}

func NewIngestRecipeUseCase(recipes ports.RecipeStore, queue ports.MessageQueue) *IngestRecipeUseCase {
	return &IngestRecipeUseCase{recipes: recipes, queue: queue}
}

func (uc *IngestRecipeUseCase) Ingest(ctx context.Context, title, body, category string, kcal int) (*domain.Recipe, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest recipe", errors.New("title is required"))
	}
	if body == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest recipe", errors.New("body is required"))
	}
	if kcal < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest recipe", errors.New("kcal must not be negative"))
	}

	now := time.Now().UTC()
	recipe := &domain.Recipe{
		ID:          uuid.NewString(),
		Title:       title,
		Body:        body,
		Category:    strings.TrimSpace(category),
		Kcal:        kcal,
		IndexStatus: domain.IndexPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	// A lost event is recovered by the worker's pending sweep at startup,
	// so a publish failure does not fail the ingest.
	if err := uc.queue.PublishRecipeStored(ctx, recipe.ID); err != nil {
		slog.Warn("recipe_stored_publish_failed", "recipe_id", recipe.ID, "error", err)
	}

	return recipe, nil
}

func (uc *IngestRecipeUseCase) GetByID(ctx context.Context, id string) (*domain.Recipe, error) {
	recipe, err := uc.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch recipe by id: %w", err)
	}
	return recipe, nil
}
