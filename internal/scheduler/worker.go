package scheduler

import (
	"context"
	"fmt"

	"cargotrack_backend/internal/orders/transport"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// SheetProcessor runs the pipeline for one sheet. Satisfied by the orders
// service.
type SheetProcessor interface {
	ProcessSheet(ctx context.Context, sheetName string) transport.ProcessResult
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor SheetProcessor
	cleanup   *RetentionCleanup
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor SheetProcessor, cleanup *RetentionCleanup, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		// Sheet runs serialize on the run lock anyway; one worker slot is
		// enough and keeps WhatsApp traffic predictable.
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		cleanup:   cleanup,
		log:       log,
	}

	mux.HandleFunc(TaskProcessSheet, w.handleProcessSheet)
	mux.HandleFunc(TaskRetentionCleanup, w.handleRetentionCleanup)

	return w, nil
}

func (w *Worker) handleProcessSheet(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProcessSheetPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	result := w.processor.ProcessSheet(ctx, payload.SheetName)
	if !result.Success {
		// A failed run is final: retrying cannot fix a missing sheet, and a
		// transient fetch failure is better retried by the operator.
		w.log.Warn("queued sheet run failed", "sheet", payload.SheetName, "message", result.Message)
		return fmt.Errorf("%s: %w", result.Message, asynq.SkipRetry)
	}

	w.log.Info("queued sheet run finished", "sheet", payload.SheetName, "message", result.Message)
	return nil
}

func (w *Worker) handleRetentionCleanup(ctx context.Context, _ *asynq.Task) error {
	if w.cleanup == nil {
		return nil
	}
	w.cleanup.runOnce(ctx)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
