package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// IntentClassifier escalates ambiguous messages to the LLM for a structured
// category verdict.
type IntentClassifier struct {
	client *Client
}

func NewIntentClassifier(client *Client) *IntentClassifier {
	return &IntentClassifier{client: client}
}

func (c *IntentClassifier) CompleteIntent(ctx context.Context, text, conversationContext string) (domain.IntentCategory, float64, string, error) {
	raw, err := c.client.generateJSON(ctx, buildIntentPrompt(text, conversationContext))
	if err != nil {
		return "", 0, "", err
	}

	var payload struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return "", 0, "", domain.WrapError(domain.ErrMalformedResponse, "parse intent json", err)
	}

	category, err := domain.ParseIntentCategory(payload.Category)
	if err != nil {
		return "", 0, "", domain.WrapError(domain.ErrMalformedResponse, "parse intent category", err)
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		return "", 0, "", domain.WrapError(domain.ErrMalformedResponse, "parse intent confidence",
			fmt.Errorf("confidence out of range: %f", payload.Confidence))
	}
	return category, payload.Confidence, strings.TrimSpace(payload.Reasoning), nil
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "embed query", fmt.Errorf("empty embedding result"))
	}
	return vectors[0], nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
