// Package archive persists the payload of each completed pipeline run to
// object storage for auditing. Archival is best-effort and never affects the
// run outcome.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"cargotrack_backend/internal/events"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver writes run payloads to a MinIO bucket.
type Archiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// New creates the archiver. Returns an error when MinIO is not configured;
// callers should then skip archival entirely.
func New(cfg config.MinIOConfig, log *logger.Logger) (*Archiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("minio is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	bucket := cfg.GetMinIOBucket()
	if bucket == "" {
		bucket = "run-archive"
	}

	return &Archiver{client: client, bucket: bucket, log: log}, nil
}

// EnsureBucketExists creates the archive bucket if it doesn't exist.
func (a *Archiver) EnsureBucketExists(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// RegisterHandlers subscribes the archiver to pipeline run events.
func (a *Archiver) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SheetProcessed{}.EventName(), a)
}

// Handle archives the payload of each run that produced new orders.
func (a *Archiver) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SheetProcessed)
	if !ok {
		return nil
	}
	if len(e.Payload) == 0 {
		return nil
	}

	key := fmt.Sprintf("runs/%s/%s_%s.json", e.SheetName, time.Now().UTC().Format("20060102T150405Z"), e.RunID)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(e.Payload), int64(len(e.Payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		a.log.Warn("run archive upload failed", "sheet", e.SheetName, "key", key, "error", err)
		return nil
	}

	a.log.Info("run payload archived", "sheet", e.SheetName, "key", key, "bytes", len(e.Payload))
	return nil
}
