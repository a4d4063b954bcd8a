package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"cargotrack_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues pipeline tasks onto the Redis-backed queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// SheetScheduler is the enqueue boundary used by the HTTP layer.
type SheetScheduler interface {
	ScheduleProcessSheet(ctx context.Context, payload ProcessSheetPayload, runAt *time.Time) (string, error)
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleProcessSheet enqueues a pipeline run, immediately or at runAt.
// Returns the queued task id.
func (c *Client) ScheduleProcessSheet(ctx context.Context, payload ProcessSheetPayload, runAt *time.Time) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("scheduler not configured")
	}

	task, err := NewProcessSheetTask(payload)
	if err != nil {
		return "", err
	}

	opts := []asynq.Option{asynq.Queue(c.queue), asynq.MaxRetry(3)}
	if runAt != nil {
		opts = append(opts, asynq.ProcessAt(*runAt))
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
