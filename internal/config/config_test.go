package config

import (
	"testing"
	"time"
)

func TestLoadIncludesIntentAndSearchDefaults(t *testing.T) {
	t.Setenv("INTENT_HIGH_SCORE", "")
	t.Setenv("INTENT_LLM_CONFIRM", "")
	t.Setenv("INTENT_LLM_TIMEOUT", "")
	t.Setenv("SEARCH_EXACT_THRESHOLD", "")
	t.Setenv("SEARCH_STRATEGY_TIMEOUT", "")

	cfg := Load()
	if cfg.IntentHighScore != 2.0 {
		t.Fatalf("expected default high score 2.0, got %f", cfg.IntentHighScore)
	}
	if cfg.IntentLLMConfirm != 0.6 {
		t.Fatalf("expected default llm confirm 0.6, got %f", cfg.IntentLLMConfirm)
	}
	if cfg.IntentLLMTimeout != 4*time.Second {
		t.Fatalf("expected default llm timeout 4s, got %s", cfg.IntentLLMTimeout)
	}
	if cfg.SearchExactThresh != 0.75 {
		t.Fatalf("expected default exact threshold 0.75, got %f", cfg.SearchExactThresh)
	}
	if cfg.SearchStrategyLimit != 300*time.Millisecond {
		t.Fatalf("expected default strategy timeout 300ms, got %s", cfg.SearchStrategyLimit)
	}
	if !cfg.IntentLLMEnabled {
		t.Fatal("expected llm escalation enabled by default")
	}
}

func TestLoadParsesIntentAndSearchOverrides(t *testing.T) {
	t.Setenv("INTENT_HIGH_SCORE", "3.5")
	t.Setenv("INTENT_LLM_CONFIRM", "0.8")
	t.Setenv("INTENT_LLM_TIMEOUT", "2s")
	t.Setenv("INTENT_LLM_ENABLED", "false")
	t.Setenv("SEARCH_EXACT_THRESHOLD", "0.9")
	t.Setenv("SEARCH_STRATEGY_TIMEOUT", "150ms")
	t.Setenv("API_RATE_LIMIT_RPS", "25")

	cfg := Load()
	if cfg.IntentHighScore != 3.5 {
		t.Fatalf("expected high score 3.5, got %f", cfg.IntentHighScore)
	}
	if cfg.IntentLLMConfirm != 0.8 {
		t.Fatalf("expected llm confirm 0.8, got %f", cfg.IntentLLMConfirm)
	}
	if cfg.IntentLLMTimeout != 2*time.Second {
		t.Fatalf("expected llm timeout 2s, got %s", cfg.IntentLLMTimeout)
	}
	if cfg.IntentLLMEnabled {
		t.Fatal("expected llm escalation disabled")
	}
	if cfg.SearchExactThresh != 0.9 {
		t.Fatalf("expected exact threshold 0.9, got %f", cfg.SearchExactThresh)
	}
	if cfg.SearchStrategyLimit != 150*time.Millisecond {
		t.Fatalf("expected strategy timeout 150ms, got %s", cfg.SearchStrategyLimit)
	}
	if cfg.APIRateLimitRPS != 25 {
		t.Fatalf("expected rate limit 25 rps, got %f", cfg.APIRateLimitRPS)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("INTENT_HIGH_SCORE", "not-a-number")
	t.Setenv("INTENT_LLM_TIMEOUT", "soon")
	t.Setenv("WORKER_REINDEX_ON_START", "maybe")

	cfg := Load()
	if cfg.IntentHighScore != 2.0 {
		t.Fatalf("expected fallback high score 2.0, got %f", cfg.IntentHighScore)
	}
	if cfg.IntentLLMTimeout != 4*time.Second {
		t.Fatalf("expected fallback llm timeout 4s, got %s", cfg.IntentLLMTimeout)
	}
	if !cfg.WorkerReindexOnStart {
		t.Fatal("expected fallback reindex on start true")
	}
}
