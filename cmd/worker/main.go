package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendcore/backend/internal/config"
	"github.com/lendcore/backend/internal/db"
	"github.com/lendcore/backend/internal/jobs"
	"github.com/lendcore/backend/internal/observability"
	postgresrepo "github.com/lendcore/backend/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	worker := jobs.NewWorker(
		postgresrepo.NewOutboxRepository(pool),
		jobs.NewLogNotifier(logger),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notification worker starting",
		"batch_size", cfg.WorkerBatchSize, "interval", cfg.WorkerPollInterval.String())
	if err := worker.Run(runCtx, cfg.WorkerBatchSize, cfg.WorkerPollInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("notification worker stopped")
}
