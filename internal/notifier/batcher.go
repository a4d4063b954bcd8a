package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"
	"cargotrack_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// Gateway sends one text message to a normalized phone-derived destination.
// Satisfied by whatsapp.Client.
type Gateway interface {
	SendMessage(ctx context.Context, destination, message string) error
}

// Result tallies dispatch outcomes in clients, not individual orders: a
// client either received their consolidated message or did not.
type Result struct {
	Sent   int
	Failed int
}

// Batcher dispatches per-client notifications in fixed-size batches. Within
// a batch all sends run concurrently and independently; batch N+1 starts only
// after batch N fully settles.
type Batcher struct {
	gateway     Gateway
	normalizer  *phone.Normalizer
	builder     *MessageBuilder
	batchSize   int
	sendDelay   time.Duration
	sendTimeout time.Duration
	log         *logger.Logger
}

// New creates a Batcher from configuration.
func New(cfg config.NotifierConfig, gateway Gateway, normalizer *phone.Normalizer, log *logger.Logger) *Batcher {
	batchSize := cfg.GetNotifyBatchSize()
	if batchSize < 1 {
		batchSize = 10
	}
	sendTimeout := cfg.GetNotifySendTimeout()
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	return &Batcher{
		gateway:     gateway,
		normalizer:  normalizer,
		builder:     NewMessageBuilder(cfg.GetNotifyLocale()),
		batchSize:   batchSize,
		sendDelay:   cfg.GetNotifySendDelay(),
		sendTimeout: sendTimeout,
		log:         log,
	}
}

// SendAll dispatches one message per client order set. Every failure mode of
// an individual send (gateway error status, timeout, transport error) becomes
// a failed count; nothing aborts the remaining sends or batches.
func (b *Batcher) SendAll(ctx context.Context, sets map[string]*domain.ClientOrderSet) Result {
	codes := make([]string, 0, len(sets))
	for code := range sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var (
		mu     sync.Mutex
		result Result
	)

	for start := 0; start < len(codes); start += b.batchSize {
		end := start + b.batchSize
		if end > len(codes) {
			end = len(codes)
		}

		var group errgroup.Group
		for _, code := range codes[start:end] {
			set := sets[code]
			group.Go(func() error {
				err := b.sendOne(ctx, set)

				mu.Lock()
				if err != nil {
					result.Failed++
				} else {
					result.Sent++
				}
				mu.Unlock()

				if err != nil && b.log != nil {
					b.log.DeliveryFailed(set.Client.Code, set.Client.PhoneNumber, err)
				}

				// Hold the batch slot for the configured delay so the
				// gateway rate limit is respected.
				b.pause(ctx)
				return nil
			})
		}
		_ = group.Wait()
	}

	return result
}

func (b *Batcher) sendOne(ctx context.Context, set *domain.ClientOrderSet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()

	destination := b.normalizer.Normalize(set.Client.PhoneNumber)
	if destination == "" {
		return fmt.Errorf("client %s has no usable phone number", set.Client.Code)
	}

	message := b.builder.Build(set)

	sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()

	return b.gateway.SendMessage(sendCtx, destination, message)
}

func (b *Batcher) pause(ctx context.Context) {
	if b.sendDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(b.sendDelay):
	}
}
