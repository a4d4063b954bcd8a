package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargotrack_backend/internal/archive"
	"cargotrack_backend/internal/email"
	"cargotrack_backend/internal/events"
	"cargotrack_backend/internal/orders"
	"cargotrack_backend/internal/runlock"
	"cargotrack_backend/internal/scheduler"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/db"
	"cargotrack_backend/platform/logger"
	"cargotrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	guard, err := runlock.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize run lock", "error", err)
		panic("failed to initialize run lock: " + err.Error())
	}
	defer func() { _ = guard.Close() }()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}
	reporter := email.NewReporter(sender, cfg.GetAlertRecipients(), log)
	reporter.RegisterHandlers(eventBus)

	if cfg.IsMinIOEnabled() {
		archiver, err := archive.New(cfg, log)
		if err != nil {
			log.Error("failed to initialize run archiver", "error", err)
			panic("failed to initialize run archiver: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure archive bucket", 5, 2*time.Second, func() error {
			return archiver.EnsureBucketExists(ctx)
		}); err != nil {
			log.Error("failed to ensure archive bucket exists", "error", err)
			panic("failed to ensure archive bucket exists: " + err.Error())
		}
		archiver.RegisterHandlers(eventBus)
	}

	val := validator.New()

	// The worker never enqueues, so no scheduler client is wired.
	ordersModule := orders.NewModule(pool, cfg, guard, eventBus, nil, val, log)

	cleanup := scheduler.NewRetentionCleanup(ordersModule.Repository(), cfg.GetRetentionMaxAge(), log)
	go cleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, ordersModule.Service(), cleanup, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
