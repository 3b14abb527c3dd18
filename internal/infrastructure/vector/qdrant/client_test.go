package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

func TestSearchSendsFilterAndParsesHits(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.83,
					"payload": map[string]any{
						"recipe_id": "r-1",
						"title":     "닭가슴살 샐러드",
						"snippet":   "닭가슴살을 굽고 채소와 섞는다",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "recipes")
	hits, err := client.Search(context.Background(), []float32{0.1, 0.2}, 5,
		domain.SearchFilter{Category: "salad", MaxKcal: 400})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/collections/recipes/points/search" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if _, ok := gotBody["filter"]; !ok {
		t.Fatal("expected filter in request body")
	}
	must, _ := gotBody["filter"].(map[string]any)["must"].([]any)
	if len(must) != 2 {
		t.Fatalf("expected 2 filter conditions, got %d", len(must))
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].RecipeID != "r-1" || hits[0].Score != 0.83 {
		t.Fatalf("unexpected hit %+v", hits[0])
	}
}

func TestSearchOmitsFilterWhenEmpty(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer server.Close()

	client := New(server.URL, "recipes")
	if _, err := client.Search(context.Background(), []float32{0.5}, 3, domain.SearchFilter{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := gotBody["filter"]; ok {
		t.Fatal("expected no filter in request body")
	}
}

func TestIndexRecipeEnsuresCollectionOnce(t *testing.T) {
	var ensureCalls, upsertCalls int
	var upsertBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/recipes":
			ensureCalls++
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/recipes/points":
			upsertCalls++
			_ = json.NewDecoder(r.Body).Decode(&upsertBody)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL, "recipes")
	recipe := &domain.Recipe{
		ID:        "r-9",
		Title:     "연어 스테이크",
		Body:      "연어를 팬에 굽는다",
		Category:  "main",
		Kcal:      520,
		CreatedAt: time.Now(),
	}

	for i := 0; i < 2; i++ {
		if err := client.IndexRecipe(context.Background(), recipe, []float32{0.1, 0.2, 0.3}); err != nil {
			t.Fatalf("IndexRecipe: %v", err)
		}
	}

	if ensureCalls != 1 {
		t.Fatalf("expected 1 ensure call, got %d", ensureCalls)
	}
	if upsertCalls != 2 {
		t.Fatalf("expected 2 upsert calls, got %d", upsertCalls)
	}

	points, _ := upsertBody["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	point, _ := points[0].(map[string]any)
	if point["id"] != "r-9" {
		t.Fatalf("expected point keyed by recipe id, got %v", point["id"])
	}
}

func TestIndexRecipeTreatsConflictAsEnsured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/recipes" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "recipes")
	recipe := &domain.Recipe{ID: "r-1", Title: "t", Body: "b"}
	if err := client.IndexRecipe(context.Background(), recipe, []float32{0.4}); err != nil {
		t.Fatalf("IndexRecipe: %v", err)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "recipes")
	if _, err := client.Search(context.Background(), []float32{0.1}, 5, domain.SearchFilter{}); err == nil {
		t.Fatal("expected error on 503")
	}
}
