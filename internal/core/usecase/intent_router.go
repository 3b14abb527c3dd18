package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/minjcho/dietcoach/internal/core/domain"
	"github.com/minjcho/dietcoach/internal/core/ports"
)

const (
	defaultHighScore      = 2.0
	defaultLLMConfirm     = 0.6
	defaultLLMTimeout     = 4 * time.Second
	calendarSaveConfident = 0.95
)

type IntentRouterConfig struct {
	// HighScore is the raw keyword score above which the keyword result is
	// treated as unambiguous and the LLM is skipped.
	HighScore float64
	// LLMConfirm is the minimum LLM-reported confidence to accept its verdict.
	LLMConfirm float64
	// LLMTimeout bounds the single escalation call.
	LLMTimeout time.Duration
}

func (c IntentRouterConfig) normalize() IntentRouterConfig {
	out := c
	if out.HighScore <= 0 {
		out.HighScore = defaultHighScore
	}
	if out.LLMConfirm <= 0 {
		out.LLMConfirm = defaultLLMConfirm
	}
	if out.LLMTimeout <= 0 {
		out.LLMTimeout = defaultLLMTimeout
	}
	return out
}

// IntentRouter classifies a raw chat message into an action category.
// A nil completer disables LLM escalation entirely; classification then
// stays keyword-only. Classification never fails: every backend problem
// degrades to the keyword result.
type IntentRouter struct {
	scorer    *KeywordScorer
	completer ports.IntentCompleter
	rules     []ValidationRule
	cfg       IntentRouterConfig
}

func NewIntentRouter(scorer *KeywordScorer, completer ports.IntentCompleter, rules []ValidationRule, cfg IntentRouterConfig) *IntentRouter {
	return &IntentRouter{
		scorer:    scorer,
		completer: completer,
		rules:     rules,
		cfg:       cfg.normalize(),
	}
}

func (r *IntentRouter) Classify(ctx context.Context, rawText, conversationContext string) domain.IntentResult {
	normalized := domain.Normalize(rawText)

	// Calendar saves collide lexically with meal planning ("이 식단 저장해줘")
	// and must win deterministically, so they are detected before scoring.
	if matched, ok := detectCalendarSave(normalized); ok {
		return domain.IntentResult{
			Category:        domain.IntentCalendarSave,
			Confidence:      calendarSaveConfident,
			Method:          domain.MethodKeyword,
			MatchedKeywords: matched,
		}
	}

	scores := r.scorer.Score(normalized)
	keywordResult := r.scorer.Winner(scores)

	if RawScore(scores, keywordResult.Category) >= r.cfg.HighScore {
		keywordResult.Category = applyValidationRules(r.rules, normalized, keywordResult.Category)
		return keywordResult
	}

	if r.completer == nil {
		return keywordResult
	}

	llmCtx, cancel := context.WithTimeout(ctx, r.cfg.LLMTimeout)
	defer cancel()

	category, confidence, reasoning, err := r.completer.CompleteIntent(llmCtx, rawText, conversationContext)
	if err != nil {
		slog.Warn("intent_llm_degraded", "error", err)
		keywordResult.Category = applyValidationRules(r.rules, normalized, keywordResult.Category)
		keywordResult.Method = domain.MethodKeywordFallback
		return keywordResult
	}
	if confidence <= r.cfg.LLMConfirm {
		slog.Debug("intent_llm_below_threshold", "category", category, "confidence", confidence)
		keywordResult.Category = applyValidationRules(r.rules, normalized, keywordResult.Category)
		keywordResult.Method = domain.MethodKeywordFallback
		return keywordResult
	}

	return domain.IntentResult{
		Category:        category,
		Confidence:      confidence,
		Method:          domain.MethodLLM,
		MatchedKeywords: keywordResult.MatchedKeywords,
		Reasoning:       reasoning,
	}
}

// detectCalendarSave fires on two independent save signals, one save signal
// plus an explicit date or weekday token, or the literal calendar word.
func detectCalendarSave(normalized string) ([]string, bool) {
	tokens := domain.Tokenize(normalized)

	var matched []string
	for _, word := range calendarSaveWords {
		if matchAny(tokens, word) {
			matched = append(matched, word)
		}
	}
	if len(matched) >= 2 {
		return matched, true
	}

	for _, word := range calendarLiteralWords {
		if matchAny(tokens, word) {
			return matched, true
		}
	}

	if len(matched) == 1 {
		for _, word := range dateWords {
			if matchAny(tokens, word) {
				return append(matched, word), true
			}
		}
	}

	return nil, false
}
