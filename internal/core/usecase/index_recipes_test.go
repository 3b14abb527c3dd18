package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	err     error
}

func (f *fakeIndexer) IndexRecipe(_ context.Context, recipe *domain.Recipe, _ []float32) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, recipe.ID)
	return nil
}

func pendingRecipe(id string) *domain.Recipe {
	now := time.Now().UTC()
	return &domain.Recipe{
		ID:          id,
		Title:       "recipe " + id,
		Body:        "body " + id,
		IndexStatus: domain.IndexPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestIndexByIDMarksIndexed(t *testing.T) {
	store := newFakeRecipeStore()
	store.recipes["r-1"] = pendingRecipe("r-1")
	indexer := &fakeIndexer{}
	uc := NewIndexRecipeUseCase(store, &fakeEmbedder{vector: []float32{0.1, 0.2}}, indexer)

	if err := uc.IndexByID(context.Background(), "r-1"); err != nil {
		t.Fatalf("IndexByID: %v", err)
	}
	if store.recipes["r-1"].IndexStatus != domain.IndexReady {
		t.Fatalf("expected indexed status, got %q", store.recipes["r-1"].IndexStatus)
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0] != "r-1" {
		t.Fatalf("expected r-1 indexed, got %v", indexer.indexed)
	}
}

func TestIndexByIDMarksFailedOnEmbedError(t *testing.T) {
	store := newFakeRecipeStore()
	store.recipes["r-1"] = pendingRecipe("r-1")
	uc := NewIndexRecipeUseCase(store, &fakeEmbedder{err: errors.New("ollama down")}, &fakeIndexer{})

	if err := uc.IndexByID(context.Background(), "r-1"); err == nil {
		t.Fatal("expected error")
	}
	recipe := store.recipes["r-1"]
	if recipe.IndexStatus != domain.IndexFailed {
		t.Fatalf("expected failed status, got %q", recipe.IndexStatus)
	}
	if recipe.Error == "" {
		t.Fatal("expected recorded failure message")
	}
}

func TestIndexByIDMarksFailedOnIndexerError(t *testing.T) {
	store := newFakeRecipeStore()
	store.recipes["r-1"] = pendingRecipe("r-1")
	uc := NewIndexRecipeUseCase(store, &fakeEmbedder{vector: []float32{0.1}}, &fakeIndexer{err: errors.New("qdrant down")})

	if err := uc.IndexByID(context.Background(), "r-1"); err == nil {
		t.Fatal("expected error")
	}
	if store.recipes["r-1"].IndexStatus != domain.IndexFailed {
		t.Fatalf("expected failed status, got %q", store.recipes["r-1"].IndexStatus)
	}
}

func TestIndexByIDUnknownRecipe(t *testing.T) {
	uc := NewIndexRecipeUseCase(newFakeRecipeStore(), &fakeEmbedder{vector: []float32{0.1}}, &fakeIndexer{})

	err := uc.IndexByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestReindexPendingProcessesAll(t *testing.T) {
	store := newFakeRecipeStore()
	for _, id := range []string{"r-1", "r-2", "r-3"} {
		store.recipes[id] = pendingRecipe(id)
	}
	store.recipes["r-4"] = pendingRecipe("r-4")
	store.recipes["r-4"].IndexStatus = domain.IndexReady

	indexer := &fakeIndexer{}
	uc := NewIndexRecipeUseCase(store, &fakeEmbedder{vector: []float32{0.1}}, indexer)

	if err := uc.ReindexPending(context.Background()); err != nil {
		t.Fatalf("ReindexPending: %v", err)
	}
	if len(indexer.indexed) != 3 {
		t.Fatalf("expected 3 reindexed recipes, got %v", indexer.indexed)
	}
	for _, id := range []string{"r-1", "r-2", "r-3"} {
		if store.recipes[id].IndexStatus != domain.IndexReady {
			t.Fatalf("recipe %s not marked indexed", id)
		}
	}
}

func TestReindexPendingEmptyIsNoop(t *testing.T) {
	uc := NewIndexRecipeUseCase(newFakeRecipeStore(), &fakeEmbedder{vector: []float32{0.1}}, &fakeIndexer{})
	if err := uc.ReindexPending(context.Background()); err != nil {
		t.Fatalf("ReindexPending on empty store: %v", err)
	}
}
