package runlock

import (
	"context"
	"testing"
	"time"

	"cargotrack_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, time.Minute, logger.New("development"))
}

func TestAcquire_BlocksSecondAcquirerForSameSheet(t *testing.T) {
	guard := newTestGuard(t)
	ctx := context.Background()

	release, ok, err := guard.Acquire(ctx, "January")
	if err != nil || !ok {
		t.Fatalf("first acquire failed: ok=%v err=%v", ok, err)
	}

	_, ok, err = guard.Acquire(ctx, "January")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("second acquire for the same sheet must be refused")
	}

	release()

	_, ok, err = guard.Acquire(ctx, "January")
	if err != nil || !ok {
		t.Fatalf("acquire after release failed: ok=%v err=%v", ok, err)
	}
}

func TestAcquire_DifferentSheetsAreIndependent(t *testing.T) {
	guard := newTestGuard(t)
	ctx := context.Background()

	_, ok, err := guard.Acquire(ctx, "January")
	if err != nil || !ok {
		t.Fatalf("acquire January failed: ok=%v err=%v", ok, err)
	}

	_, ok, err = guard.Acquire(ctx, "February")
	if err != nil || !ok {
		t.Fatalf("acquire February must be independent: ok=%v err=%v", ok, err)
	}
}

func TestAcquire_NilGuardIsNoop(t *testing.T) {
	var guard *Guard

	release, ok, err := guard.Acquire(context.Background(), "January")
	if err != nil || !ok {
		t.Fatalf("nil guard must always grant: ok=%v err=%v", ok, err)
	}
	release()
}
