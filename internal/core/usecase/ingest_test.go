package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

// fakeRecipeStore is mutex-guarded because the reindex sweep updates
// statuses from several goroutines.
type fakeRecipeStore struct {
	mu        sync.Mutex
	recipes   map[string]*domain.Recipe
	createErr error
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{recipes: make(map[string]*domain.Recipe)}
}

func (f *fakeRecipeStore) CreateRecipe(_ context.Context, recipe *domain.Recipe) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *recipe
	f.recipes[recipe.ID] = &clone
	return nil
}

func (f *fakeRecipeStore) GetRecipeByID(_ context.Context, id string) (*domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrRecipeNotFound, "get recipe", errors.New("id="+id))
	}
	clone := *recipe
	return &clone, nil
}

func (f *fakeRecipeStore) UpdateIndexStatus(_ context.Context, id string, status domain.IndexStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.recipes[id]
	if !ok {
		return domain.WrapError(domain.ErrRecipeNotFound, "update index status", errors.New("id="+id))
	}
	recipe.IndexStatus = status
	recipe.Error = errMessage
	return nil
}

func (f *fakeRecipeStore) ListRecipesByStatus(_ context.Context, status domain.IndexStatus, _ int) ([]domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Recipe
	for _, recipe := range f.recipes {
		if recipe.IndexStatus == status {
			out = append(out, *recipe)
		}
	}
	return out, nil
}

func (f *fakeRecipeStore) status(id string) domain.IndexStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[id].IndexStatus
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishRecipeStored(_ context.Context, recipeID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, recipeID)
	return nil
}

func (f *fakeQueue) SubscribeRecipeStored(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

func TestIngestStoresPendingRecipeAndPublishes(t *testing.T) {
	store := newFakeRecipeStore()
	queue := &fakeQueue{}
	uc := NewIngestRecipeUseCase(store, queue)

	recipe, err := uc.Ingest(context.Background(), "  두부 샐러드 ", "두부와 채소를 섞는다", "salad", 320)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if recipe.ID == "" {
		t.Fatal("expected generated recipe id")
	}
	if recipe.Title != "두부 샐러드" {
		t.Fatalf("expected trimmed title, got %q", recipe.Title)
	}
	if recipe.IndexStatus != domain.IndexPending {
		t.Fatalf("expected pending status, got %q", recipe.IndexStatus)
	}
	if len(queue.published) != 1 || queue.published[0] != recipe.ID {
		t.Fatalf("expected one publish for %s, got %v", recipe.ID, queue.published)
	}
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	uc := NewIngestRecipeUseCase(newFakeRecipeStore(), &fakeQueue{})

	cases := []struct {
		name  string
		title string
		body  string
		kcal  int
	}{
		{"empty title", "", "body", 100},
		{"empty body", "title", "   ", 100},
		{"negative kcal", "title", "body", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Ingest(context.Background(), tc.title, tc.body, "", tc.kcal)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	store := newFakeRecipeStore()
	queue := &fakeQueue{publishErr: errors.New("nats down")}
	uc := NewIngestRecipeUseCase(store, queue)

	recipe, err := uc.Ingest(context.Background(), "김치찌개", "돼지고기와 김치를 끓인다", "soup", 450)
	if err != nil {
		t.Fatalf("ingest must not fail on publish error: %v", err)
	}
	// The pending sweep picks the recipe up later.
	if recipe.IndexStatus != domain.IndexPending {
		t.Fatalf("expected pending status, got %q", recipe.IndexStatus)
	}
	if _, ok := store.recipes[recipe.ID]; !ok {
		t.Fatal("recipe must be persisted despite publish failure")
	}
}

func TestGetByIDPropagatesNotFound(t *testing.T) {
	uc := NewIngestRecipeUseCase(newFakeRecipeStore(), &fakeQueue{})

	_, err := uc.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}
