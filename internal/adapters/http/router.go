package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
	"github.com/minjcho/dietcoach/internal/observability/metrics"
)

type Router struct {
	intent  ports.IntentClassifier
	search  ports.RecipeRetriever
	recipes ports.RecipeIngestor
	metrics *metrics.HTTPServerMetrics
	service string

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(
	intent ports.IntentClassifier,
	search ports.RecipeRetriever,
	recipes ports.RecipeIngestor,
	serverMetrics *metrics.HTTPServerMetrics,
	service string,
	options RouterOptions,
) *Router {
	return &Router{
		intent:         intent,
		search:         search,
		recipes:        recipes,
		metrics:        serverMetrics,
		service:        service,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/intent/classify", rt.classifyIntent)
	mux.HandleFunc("/v1/search/recipes", rt.searchRecipes)
	mux.HandleFunc("/v1/recipes", rt.createRecipe)
	mux.HandleFunc("/v1/recipes/", rt.getRecipeByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) classifyIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text                string `json:"text"`
		ConversationContext string `json:"conversation_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	result := rt.intent.Classify(r.Context(), req.Text, req.ConversationContext)

	if rt.metrics != nil {
		rt.metrics.RecordIntentClassification(rt.service, string(result.Category), string(result.Method))
		if result.Category == domain.IntentCalendarSave && result.Method == domain.MethodKeyword {
			rt.metrics.RecordCalendarShortCircuit(rt.service)
		}
		if result.Method == domain.MethodKeywordFallback {
			rt.metrics.RecordLLMFallback(rt.service, "degraded")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) searchRecipes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query    string `json:"query"`
		Limit    int    `json:"limit"`
		Category string `json:"category"`
		MaxKcal  int    `json:"max_kcal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	outcome := rt.search.Retrieve(r.Context(), req.Query, req.Limit, domain.SearchFilter{
		Category: req.Category,
		MaxKcal:  req.MaxKcal,
	})

	if rt.metrics != nil {
		rt.metrics.RecordSearchOutcome(rt.service, string(outcome.Tier), len(outcome.Candidates), time.Since(start))
		for _, strategy := range outcome.Degraded {
			rt.metrics.RecordStrategyFailure(rt.service, strategy)
		}
	}

	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) createRecipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Category string `json:"category"`
		Kcal     int    `json:"kcal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	recipe, err := rt.recipes.Ingest(r.Context(), req.Title, req.Body, req.Category, req.Kcal)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	// Indexing happens asynchronously; the recipe is searchable once the
	// worker marks it indexed.
	writeJSON(w, http.StatusAccepted, recipe)
}

func (rt *Router) getRecipeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/recipes/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipe id is required"})
		return
	}

	recipe, err := rt.recipes.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
