package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SentRecord is one durable ledger entry: proof that a tracking number was
// handed to the notifier. Entries are permanent; the retention sweep never
// touches the ledger.
type SentRecord struct {
	TrackingNumber string
	ClientName     *string
	PhoneNumber    *string
	SentAt         time.Time
}

// ProcessedSheet marks when a sheet was last fully processed. Display only,
// not part of dedup correctness.
type ProcessedSheet struct {
	SheetName   string
	ProcessedAt time.Time
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID               uuid.UUID
	SheetName        string
	StartedAt        time.Time
	FinishedAt       time.Time
	Success          bool
	Message          string
	NewCount         int
	AlreadySentCount int
	SkippedCount     int
	SentCount        int
	FailedCount      int
}

// Store is the persistence boundary of the pipeline: the tracking ledger,
// processed-sheet markers and run history.
type Store interface {
	// FilterSent returns which of the given tracking numbers are already in
	// the ledger.
	FilterSent(ctx context.Context, trackingNumbers []string) (map[string]struct{}, error)
	// MarkSent appends records to the ledger, skipping duplicates.
	MarkSent(ctx context.Context, records []SentRecord) error
	// UpsertProcessedSheet creates or refreshes the marker for a sheet.
	UpsertProcessedSheet(ctx context.Context, sheetName string, processedAt time.Time) error
	// ListProcessedSheets returns all markers, most recent first.
	ListProcessedSheets(ctx context.Context) ([]ProcessedSheet, error)
	// InsertRun records a finished pipeline run.
	InsertRun(ctx context.Context, run Run) error
	// ListRecentRuns returns the latest runs, most recent first.
	ListRecentRuns(ctx context.Context, limit int) ([]Run, error)
	// CleanupOld deletes runs and processed-sheet markers older than the
	// cutoff. The ledger is deliberately untouched.
	CleanupOld(ctx context.Context, olderThan time.Time) (int64, error)
}
