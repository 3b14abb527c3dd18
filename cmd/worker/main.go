package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minjcho/dietcoach/internal/bootstrap"
	"github.com/minjcho/dietcoach/internal/config"
	"github.com/minjcho/dietcoach/internal/observability/logging"
	"github.com/minjcho/dietcoach/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := startMetricsServer(cfg.WorkerMetricsPort, workerMetrics)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	// Sweep recipes whose queue event was lost before this worker came up.
	if cfg.WorkerReindexOnStart {
		if err := app.IndexUC.ReindexPending(ctx); err != nil {
			slog.Warn("pending reindex sweep failed", "error", err)
		}
	}

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeRecipeStored(ctx, func(handlerCtx context.Context, recipeID string) error {
		indexCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if recipe, fetchErr := app.Recipes.GetRecipeByID(indexCtx, recipeID); fetchErr == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(recipe.CreatedAt))
		}

		workerMetrics.StartRecipe()
		start := time.Now()
		indexErr := app.IndexUC.IndexByID(indexCtx, recipeID)
		workerMetrics.FinishRecipe("worker", time.Since(start), indexErr)
		return indexErr
	})
	if err != nil {
		slog.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}

func startMetricsServer(port string, workerMetrics *metrics.WorkerMetrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("worker metrics listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server failed", "error", err)
		}
	}()
	return server
}
