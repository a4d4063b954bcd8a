// Package service implements the order notification pipeline: fetch a sheet
// snapshot, reconcile it against the tracking ledger, notify clients and
// persist what was handed to the notifier.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cargotrack_backend/internal/events"
	"cargotrack_backend/internal/notifier"
	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/internal/orders/repository"
	"cargotrack_backend/internal/orders/transport"
	"cargotrack_backend/internal/runlock"
	"cargotrack_backend/internal/webhook"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"

	"github.com/google/uuid"
)

// Pipeline states. Failed is terminal and reachable only from Validating and
// Fetching; past Filtering every run reaches Done, with downstream failures
// degrading the summary message instead.
const (
	StateIdle       = "Idle"
	StateValidating = "Validating"
	StateFetching   = "Fetching"
	StateExtracting = "Extracting"
	StateFiltering  = "Filtering"
	StateNotifying  = "Notifying"
	StatePersisting = "Persisting"
	StateDone       = "Done"
	StateFailed     = "Failed"
)

// SheetSource is the read-only spreadsheet boundary. Satisfied by
// sheets.Client.
type SheetSource interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	Values(ctx context.Context, spreadsheetID, rangeA1 string) ([][]string, error)
}

// Notifier dispatches per-client messages. Satisfied by notifier.Batcher.
type Notifier interface {
	SendAll(ctx context.Context, sets map[string]*domain.ClientOrderSet) notifier.Result
}

// Forwarder mirrors the new-orders payload. Satisfied by webhook.Forwarder.
type Forwarder interface {
	Forward(ctx context.Context, sets map[string]*domain.ClientOrderSet) webhook.ForwardResult
}

// Service is the pipeline orchestrator.
type Service struct {
	cfg       config.SheetsConfig
	source    SheetSource
	store     repository.Store
	notifier  Notifier
	forwarder Forwarder
	guard     *runlock.Guard
	bus       events.Bus
	log       *logger.Logger
}

// New creates the orchestrator. guard and bus may be nil.
func New(cfg config.SheetsConfig, source SheetSource, store repository.Store, n Notifier, f Forwarder, guard *runlock.Guard, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		source:    source,
		store:     store,
		notifier:  n,
		forwarder: f,
		guard:     guard,
		bus:       bus,
		log:       log,
	}
}

// run tracks one pipeline invocation.
type run struct {
	id        uuid.UUID
	sheetName string
	state     string
	startedAt time.Time
	stats     domain.PartitionStats
	skipped   int
	dispatch  notifier.Result
	newSets   map[string]*domain.ClientOrderSet
}

func (r *run) advance(state string, log *logger.Logger) {
	r.state = state
	log.Debug("pipeline state", "sheet", r.sheetName, "state", state)
}

// ProcessSheet runs the full pipeline for one sheet. It never panics or
// returns an error: every internal failure is translated into the structured
// result.
func (s *Service) ProcessSheet(ctx context.Context, sheetName string) (result transport.ProcessResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("pipeline panicked", "sheet", sheetName, "panic", rec)
			result = transport.ProcessResult{Success: false, Message: fmt.Sprintf("internal error: %v", rec)}
		}
	}()

	r := &run{
		id:        uuid.New(),
		sheetName: strings.TrimSpace(sheetName),
		state:     StateIdle,
		startedAt: time.Now().UTC(),
	}
	log := s.log.WithRunID(r.id.String())

	// Validating: configuration problems fail before any side effect.
	r.advance(StateValidating, log)
	if r.sheetName == "" {
		r.state = StateFailed
		return transport.ProcessResult{Success: false, Message: "sheet name must not be empty"}
	}
	if s.cfg.GetSpreadsheetID() == "" {
		r.state = StateFailed
		return transport.ProcessResult{Success: false, Message: "spreadsheet id is not configured"}
	}

	release, ok, err := s.guard.Acquire(ctx, r.sheetName)
	if err != nil {
		r.state = StateFailed
		return s.finish(ctx, r, false, fmt.Sprintf("run lock unavailable: %v", err))
	}
	if !ok {
		return transport.ProcessResult{Success: false, Message: fmt.Sprintf("sheet %q is already being processed", r.sheetName)}
	}
	defer release()

	r.advance(StateFetching, log)
	titles, err := s.source.SheetTitles(ctx, s.cfg.GetSpreadsheetID())
	if err != nil {
		r.state = StateFailed
		return s.finish(ctx, r, false, fmt.Sprintf("spreadsheet source unavailable: %v", err))
	}
	if !containsTitle(titles, r.sheetName) {
		r.state = StateFailed
		return s.finish(ctx, r, false,
			fmt.Sprintf("sheet %q not found; available sheets: %s", r.sheetName, strings.Join(titles, ", ")))
	}

	orderRows, err := s.source.Values(ctx, s.cfg.GetSpreadsheetID(), r.sheetName+"!"+s.cfg.GetOrderRange())
	if err != nil {
		r.state = StateFailed
		return s.finish(ctx, r, false, fmt.Sprintf("fetch order rows: %v", err))
	}

	directoryRows, err := s.source.Values(ctx, s.cfg.GetSpreadsheetID(), s.cfg.GetClientDirectoryRange())
	if err != nil {
		r.state = StateFailed
		return s.finish(ctx, r, false, fmt.Sprintf("fetch client directory: %v", err))
	}

	r.advance(StateExtracting, log)
	clientMap := BuildClientMap(directoryRows)
	sets, skipped := Extract(r.sheetName, orderRows, clientMap, log)
	r.skipped = skipped

	r.advance(StateFiltering, log)
	sentSet, err := s.store.FilterSent(ctx, allTrackingNumbers(sets))
	if err != nil {
		// The ledger is the dedup source of truth; without it the run cannot
		// safely proceed past Filtering.
		r.state = StateFailed
		return s.finish(ctx, r, false, fmt.Sprintf("tracking ledger unavailable: %v", err))
	}

	newSets, stats := Partition(sets, sentSet)
	r.stats = stats
	r.newSets = newSets

	if stats.NewCount == 0 {
		r.advance(StateDone, log)
		return s.finish(ctx, r, true, s.summary(r, "nothing new", ""))
	}

	// Notifying and Persisting always run together: the ledger records the
	// attempt, not the delivery, so a failed send is still marked sent.
	r.advance(StateNotifying, log)
	r.dispatch = s.notifier.SendAll(ctx, newSets)

	forward := s.forwarder.Forward(ctx, newSets)

	r.advance(StatePersisting, log)
	var degraded string
	if err := s.store.MarkSent(ctx, sentRecords(newSets, time.Now().UTC())); err != nil {
		log.DatabaseError("mark sent", err)
		degraded = appendNote(degraded, fmt.Sprintf("ledger write failed: %v", err))
	}
	if !forward.Success {
		degraded = appendNote(degraded, "webhook: "+forward.Message)
	}
	if r.dispatch.Failed > 0 {
		degraded = appendNote(degraded, fmt.Sprintf("%d notifications failed", r.dispatch.Failed))
	}

	r.advance(StateDone, log)
	return s.finish(ctx, r, true, s.summary(r, "processed", degraded))
}

// finish records the run, upserts the processed marker on completed runs and
// publishes the run event. It is best-effort: bookkeeping failures only log.
func (s *Service) finish(ctx context.Context, r *run, success bool, message string) transport.ProcessResult {
	now := time.Now().UTC()

	if r.state == StateDone {
		if err := s.store.UpsertProcessedSheet(ctx, r.sheetName, now); err != nil {
			s.log.DatabaseError("upsert processed sheet", err)
		}
	}

	if err := s.store.InsertRun(ctx, repository.Run{
		ID:               r.id,
		SheetName:        r.sheetName,
		StartedAt:        r.startedAt,
		FinishedAt:       now,
		Success:          success,
		Message:          message,
		NewCount:         r.stats.NewCount,
		AlreadySentCount: r.stats.AlreadySentCount,
		SkippedCount:     r.skipped,
		SentCount:        r.dispatch.Sent,
		FailedCount:      r.dispatch.Failed,
	}); err != nil {
		s.log.DatabaseError("insert run", err)
	}

	s.log.SheetRun(r.sheetName, r.stats.NewCount, r.stats.AlreadySentCount, r.skipped, r.dispatch.Sent, r.dispatch.Failed)
	s.publish(ctx, r, success, message)

	return transport.ProcessResult{Success: success, Message: message}
}

func (s *Service) publish(ctx context.Context, r *run, success bool, message string) {
	if s.bus == nil {
		return
	}

	var payload []byte
	if len(r.newSets) > 0 {
		if data, err := webhook.BuildPayload(r.newSets); err == nil {
			payload = data
		}
	}

	s.bus.Publish(ctx, events.SheetProcessed{
		BaseEvent:        events.NewBaseEvent(),
		RunID:            r.id,
		SheetName:        r.sheetName,
		Success:          success,
		Message:          message,
		NewCount:         r.stats.NewCount,
		AlreadySentCount: r.stats.AlreadySentCount,
		SkippedCount:     r.skipped,
		SentCount:        r.dispatch.Sent,
		FailedCount:      r.dispatch.Failed,
		Payload:          payload,
	})
}

func (s *Service) summary(r *run, verdict, degraded string) string {
	msg := fmt.Sprintf("sheet %q %s: %d new, %d already sent, %d rows skipped; notifications: %d sent, %d failed",
		r.sheetName, verdict, r.stats.NewCount, r.stats.AlreadySentCount, r.skipped, r.dispatch.Sent, r.dispatch.Failed)
	if degraded != "" {
		msg += " (" + degraded + ")"
	}
	return msg
}

// ListSheets returns the live sheet titles.
func (s *Service) ListSheets(ctx context.Context) ([]string, error) {
	if s.cfg.GetSpreadsheetID() == "" {
		return nil, fmt.Errorf("spreadsheet id is not configured")
	}
	return s.source.SheetTitles(ctx, s.cfg.GetSpreadsheetID())
}

// ListProcessedSheets returns the processed-sheet markers.
func (s *Service) ListProcessedSheets(ctx context.Context) ([]repository.ProcessedSheet, error) {
	return s.store.ListProcessedSheets(ctx)
}

// ListRecentRuns returns the latest recorded runs.
func (s *Service) ListRecentRuns(ctx context.Context, limit int) ([]repository.Run, error) {
	return s.store.ListRecentRuns(ctx, limit)
}

func containsTitle(titles []string, name string) bool {
	for _, title := range titles {
		if title == name {
			return true
		}
	}
	return false
}

func allTrackingNumbers(sets map[string]*domain.ClientOrderSet) []string {
	var numbers []string
	for _, set := range sets {
		numbers = append(numbers, set.TrackingNumbers()...)
	}
	return numbers
}

func sentRecords(sets map[string]*domain.ClientOrderSet, sentAt time.Time) []repository.SentRecord {
	var records []repository.SentRecord
	for _, set := range sets {
		name := set.Client.FullName
		phone := set.Client.PhoneNumber
		for _, order := range set.OrdersInOrder() {
			records = append(records, repository.SentRecord{
				TrackingNumber: order.TrackingNumber,
				ClientName:     optional(name),
				PhoneNumber:    optional(phone),
				SentAt:         sentAt,
			})
		}
	}
	return records
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
