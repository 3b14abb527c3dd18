package bootstrap

import (
	"context"
	"fmt"

	"github.com/minjcho/dietcoach/internal/config"
	"github.com/minjcho/dietcoach/internal/core/ports"
	"github.com/minjcho/dietcoach/internal/core/usecase"
	"github.com/minjcho/dietcoach/internal/infrastructure/lexical/postgres"
	"github.com/minjcho/dietcoach/internal/infrastructure/llm/ollama"
	"github.com/minjcho/dietcoach/internal/infrastructure/queue/nats"
	"github.com/minjcho/dietcoach/internal/infrastructure/resilience"
	"github.com/minjcho/dietcoach/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Recipes  ports.RecipeStore
	IntentUC ports.IntentClassifier
	SearchUC ports.RecipeRetriever
	IngestUC ports.RecipeIngestor
	IndexUC  ports.RecipeProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRecipeRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)

	// A disabled LLM keeps classification keyword-only instead of failing.
	var completer ports.IntentCompleter
	if cfg.IntentLLMEnabled {
		completer = ollama.NewIntentClassifier(ollamaClient)
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	scorer := usecase.NewKeywordScorer(cfg.IntentScoreNorm)
	intentUC := usecase.NewIntentRouter(scorer, completer, usecase.DefaultValidationRules(), usecase.IntentRouterConfig{
		HighScore:  cfg.IntentHighScore,
		LLMConfirm: cfg.IntentLLMConfirm,
		LLMTimeout: cfg.IntentLLMTimeout,
	})
	searchUC := usecase.NewHybridSearchUseCase(embedder, repo, vectorDB, usecase.HybridSearchConfig{
		StrategyTimeout: cfg.SearchStrategyLimit,
		ExactThreshold:  cfg.SearchExactThresh,
		ExactScoreScale: cfg.SearchExactScale,
		DefaultLimit:    cfg.SearchDefaultLimit,
	})
	ingestUC := usecase.NewIngestRecipeUseCase(repo, queue)
	indexUC := usecase.NewIndexRecipeUseCase(repo, embedder, vectorDB)

	return &App{
		Config: cfg,

		Queue:    queue,
		Recipes:  repo,
		IntentUC: intentUC,
		SearchUC: searchUC,
		IngestUC: ingestUC,
		IndexUC:  indexUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
