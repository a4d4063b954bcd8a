package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/logger"
	"cargotrack_backend/platform/phone"
)

type notifierConfig struct {
	batchSize int
	delay     time.Duration
	timeout   time.Duration
	locale    string
}

func (c notifierConfig) GetNotifyBatchSize() int             { return c.batchSize }
func (c notifierConfig) GetNotifySendDelay() time.Duration   { return c.delay }
func (c notifierConfig) GetNotifySendTimeout() time.Duration { return c.timeout }
func (c notifierConfig) GetNotifyLocale() string             { return c.locale }

type fakeGateway struct {
	mu            sync.Mutex
	sends         []string
	inFlight      int
	maxInFlight   int
	failFor       map[string]error
	blockUntilCtx bool
}

func (g *fakeGateway) SendMessage(ctx context.Context, destination, message string) error {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.sends = append(g.sends, destination)
	err := g.failFor[destination]
	g.mu.Unlock()

	if g.blockUntilCtx {
		<-ctx.Done()
		err = ctx.Err()
	}

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return err
}

func makeSets(n int) map[string]*domain.ClientOrderSet {
	sets := make(map[string]*domain.ClientOrderSet, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("C%03d", i)
		set := domain.NewClientOrderSet(domain.ClientRecord{
			Code:        code,
			FullName:    "Client " + code,
			PhoneNumber: fmt.Sprintf("700%06d", i),
		})
		set.Add(domain.Order{TrackingNumber: "TRK-" + code})
		sets[code] = set
	}
	return sets
}

func newBatcher(gateway Gateway, cfg notifierConfig) *Batcher {
	if cfg.locale == "" {
		cfg.locale = "ru"
	}
	if cfg.timeout == 0 {
		cfg.timeout = time.Second
	}
	return New(cfg, gateway, phone.NewNormalizer("996", "KG"), logger.New("development"))
}

func TestSendAll_BatchBoundsConcurrency(t *testing.T) {
	gateway := &fakeGateway{}
	batcher := newBatcher(gateway, notifierConfig{batchSize: 10, delay: time.Millisecond})

	result := batcher.SendAll(context.Background(), makeSets(25))

	if result.Sent != 25 || result.Failed != 0 {
		t.Fatalf("expected 25 sent / 0 failed, got %+v", result)
	}
	if len(gateway.sends) != 25 {
		t.Fatalf("expected 25 gateway calls, got %d", len(gateway.sends))
	}
	// 25 clients with batch size 10: at no point may more than one batch be
	// in flight.
	if gateway.maxInFlight > 10 {
		t.Fatalf("expected at most 10 concurrent sends, observed %d", gateway.maxInFlight)
	}
}

func TestSendAll_OneFailureDoesNotBlockOthers(t *testing.T) {
	sets := makeSets(25)
	failing := sets["C007"].Client.PhoneNumber
	gateway := &fakeGateway{failFor: map[string]error{
		"996" + failing: errors.New("gateway rejected"),
	}}
	batcher := newBatcher(gateway, notifierConfig{batchSize: 10})

	result := batcher.SendAll(context.Background(), sets)

	if result.Failed != 1 {
		t.Fatalf("expected exactly 1 failed client, got %d", result.Failed)
	}
	if result.Sent != 24 {
		t.Fatalf("expected the other 24 clients attempted and sent, got %d", result.Sent)
	}
}

func TestSendAll_TimeoutCountsAsFailed(t *testing.T) {
	gateway := &fakeGateway{blockUntilCtx: true}
	batcher := newBatcher(gateway, notifierConfig{batchSize: 2, timeout: 10 * time.Millisecond})

	result := batcher.SendAll(context.Background(), makeSets(2))

	if result.Failed != 2 || result.Sent != 0 {
		t.Fatalf("expected all sends to fail on timeout, got %+v", result)
	}
}

func TestSendAll_EmptyInput(t *testing.T) {
	gateway := &fakeGateway{}
	batcher := newBatcher(gateway, notifierConfig{batchSize: 10})

	result := batcher.SendAll(context.Background(), nil)

	if result.Sent != 0 || result.Failed != 0 {
		t.Fatalf("expected zero result, got %+v", result)
	}
	if len(gateway.sends) != 0 {
		t.Fatalf("expected no gateway calls, got %d", len(gateway.sends))
	}
}

func TestSendAll_UnusablePhoneCountsAsFailed(t *testing.T) {
	set := domain.NewClientOrderSet(domain.ClientRecord{Code: "X1", FullName: "No Phone"})
	set.Add(domain.Order{TrackingNumber: "TRK-X"})
	gateway := &fakeGateway{}
	batcher := newBatcher(gateway, notifierConfig{batchSize: 10})

	result := batcher.SendAll(context.Background(), map[string]*domain.ClientOrderSet{"X1": set})

	if result.Failed != 1 || result.Sent != 0 {
		t.Fatalf("expected 1 failed, got %+v", result)
	}
	if len(gateway.sends) != 0 {
		t.Fatalf("gateway must not be called without a destination, got %d calls", len(gateway.sends))
	}
}
