// Package repository implements the pipeline's persistence on PostgreSQL.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const errRepoNotConfigured = "orders repository not configured"

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FilterSent(ctx context.Context, trackingNumbers []string) (map[string]struct{}, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New(errRepoNotConfigured)
	}

	sent := make(map[string]struct{})
	if len(trackingNumbers) == 0 {
		return sent, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT tracking_number
		 FROM sent_tracking_numbers
		 WHERE tracking_number = ANY($1)`,
		trackingNumbers,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		sent[number] = struct{}{}
	}
	return sent, rows.Err()
}

func (r *Repository) MarkSent(ctx context.Context, records []SentRecord) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		sentAt := rec.SentAt
		if sentAt.IsZero() {
			sentAt = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO sent_tracking_numbers (tracking_number, client_name, phone_number, sent_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (tracking_number) DO NOTHING`,
			rec.TrackingNumber, rec.ClientName, rec.PhoneNumber, sentAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) UpsertProcessedSheet(ctx context.Context, sheetName string, processedAt time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO processed_sheets (sheet_name, processed_at)
		 VALUES ($1, $2)
		 ON CONFLICT (sheet_name) DO UPDATE SET processed_at = EXCLUDED.processed_at`,
		sheetName, processedAt,
	)
	return err
}

func (r *Repository) ListProcessedSheets(ctx context.Context) ([]ProcessedSheet, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New(errRepoNotConfigured)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT sheet_name, processed_at
		 FROM processed_sheets
		 ORDER BY processed_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []ProcessedSheet
	for rows.Next() {
		var sheet ProcessedSheet
		if err := rows.Scan(&sheet.SheetName, &sheet.ProcessedAt); err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}

func (r *Repository) InsertRun(ctx context.Context, run Run) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO pipeline_runs
		 (id, sheet_name, started_at, finished_at, success, message,
		  new_count, already_sent_count, skipped_count, sent_count, failed_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.SheetName, run.StartedAt, run.FinishedAt, run.Success, run.Message,
		run.NewCount, run.AlreadySentCount, run.SkippedCount, run.SentCount, run.FailedCount,
	)
	return err
}

func (r *Repository) ListRecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New(errRepoNotConfigured)
	}
	if limit < 1 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, sheet_name, started_at, finished_at, success, message,
		        new_count, already_sent_count, skipped_count, sent_count, failed_count
		 FROM pipeline_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.SheetName, &run.StartedAt, &run.FinishedAt, &run.Success, &run.Message,
			&run.NewCount, &run.AlreadySentCount, &run.SkippedCount, &run.SentCount, &run.FailedCount,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *Repository) CleanupOld(ctx context.Context, olderThan time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New(errRepoNotConfigured)
	}

	runsTag, err := r.pool.Exec(ctx,
		`DELETE FROM pipeline_runs WHERE started_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}

	markersTag, err := r.pool.Exec(ctx,
		`DELETE FROM processed_sheets WHERE processed_at < $1`, olderThan)
	if err != nil {
		return runsTag.RowsAffected(), err
	}

	return runsTag.RowsAffected() + markersTag.RowsAffected(), nil
}

var _ Store = (*Repository)(nil)
