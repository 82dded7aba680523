package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zma-auto/taxi-landing/internal/leads"
	"github.com/zma-auto/taxi-landing/internal/observability/metrics"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

const defaultRetryKey = "crm:retry"

// Envelope is a parked payload plus its delivery history.
type Envelope struct {
	Payload    leads.Payload `json:"record"`
	Attempts   int           `json:"attempts"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// RedisRetryQueue parks undelivered payloads in a Redis list.
type RedisRetryQueue struct {
	client  *redis.Client
	key     string
	metrics *metrics.LeadMetrics
	now     func() time.Time
}

// NewRedisRetryQueue parks payloads in the crm:retry list of client.
func NewRedisRetryQueue(client *redis.Client, m *metrics.LeadMetrics) *RedisRetryQueue {
	return &RedisRetryQueue{
		client:  client,
		key:     defaultRetryKey,
		metrics: m,
		now:     time.Now,
	}
}

var _ FailureSink = (*RedisRetryQueue)(nil)

// Park enqueues a payload after its first failed delivery.
func (q *RedisRetryQueue) Park(ctx context.Context, payload leads.Payload) error {
	if err := q.push(ctx, Envelope{Payload: payload, Attempts: 1, EnqueuedAt: q.now().UTC()}); err != nil {
		return err
	}
	q.metrics.ObserveRetry("enqueued")
	return nil
}

func (q *RedisRetryQueue) push(ctx context.Context, env Envelope) error {
	if q == nil || q.client == nil {
		return ErrQueueUnavailable
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("crm: marshal envelope: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("crm: push retry: %w", err)
	}
	return nil
}

// Pop removes the oldest envelope. It returns nil, nil when the queue is empty.
func (q *RedisRetryQueue) Pop(ctx context.Context) (*Envelope, error) {
	if q == nil || q.client == nil {
		return nil, ErrQueueUnavailable
	}
	data, err := q.client.LPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("crm: pop retry: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("crm: decode envelope: %w", err)
	}
	return &env, nil
}

// Len reports how many envelopes are parked.
func (q *RedisRetryQueue) Len(ctx context.Context) (int64, error) {
	if q == nil || q.client == nil {
		return 0, ErrQueueUnavailable
	}
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("crm: retry len: %w", err)
	}
	return n, nil
}

// PayloadDeliverer re-sends a stamped payload.
type PayloadDeliverer interface {
	Deliver(ctx context.Context, payload leads.Payload) error
}

// Replayer polls the retry queue and re-sends parked payloads.
type Replayer struct {
	queue       *RedisRetryQueue
	deliverer   PayloadDeliverer
	logger      *logging.Logger
	metrics     *metrics.LeadMetrics
	interval    time.Duration
	maxAttempts int
}

// NewReplayer re-sends parked payloads every 30s, giving up after 5 attempts.
func NewReplayer(queue *RedisRetryQueue, deliverer PayloadDeliverer, logger *logging.Logger) *Replayer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Replayer{
		queue:       queue,
		deliverer:   deliverer,
		logger:      logger.With("component", "crm_retry"),
		interval:    30 * time.Second,
		maxAttempts: 5,
	}
}

// WithInterval sets the polling period.
func (r *Replayer) WithInterval(interval time.Duration) *Replayer {
	if interval > 0 {
		r.interval = interval
	}
	return r
}

// WithMaxAttempts sets how many failed deliveries drop an envelope.
func (r *Replayer) WithMaxAttempts(n int) *Replayer {
	if n > 0 {
		r.maxAttempts = n
	}
	return r
}

// WithMetrics records retry outcomes.
func (r *Replayer) WithMetrics(m *metrics.LeadMetrics) *Replayer {
	r.metrics = m
	return r
}

// Start blocks until ctx is done, draining the queue every interval.
func (r *Replayer) Start(ctx context.Context) {
	if r.queue == nil || r.deliverer == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Drain(ctx)
		}
	}
}

// Drain makes one pass over the envelopes parked when it starts and returns
// how many were delivered.
func (r *Replayer) Drain(ctx context.Context) int {
	pending, err := r.queue.Len(ctx)
	if err != nil {
		r.logger.Error("crm retry: read queue length", "error", err)
		return 0
	}

	delivered := 0
	for i := int64(0); i < pending; i++ {
		if ctx.Err() != nil {
			return delivered
		}
		env, err := r.queue.Pop(ctx)
		if err != nil {
			r.logger.Error("crm retry: pop", "error", err)
			return delivered
		}
		if env == nil {
			return delivered
		}

		env.Attempts++
		err = r.deliverer.Deliver(ctx, env.Payload)
		if err == nil {
			delivered++
			r.metrics.ObserveRetry("delivered")
			r.logger.Info("crm retry: lead delivered", "source", env.Payload.Source, "attempts", env.Attempts)
			continue
		}
		if env.Attempts >= r.maxAttempts {
			r.metrics.ObserveRetry("dropped")
			r.logger.Error("crm retry: giving up on lead", "error", err, "source", env.Payload.Source, "attempts", env.Attempts)
			continue
		}

		if err := r.queue.push(ctx, *env); err != nil {
			r.logger.Error("crm retry: requeue", "error", err, "source", env.Payload.Source)
			continue
		}
		r.metrics.ObserveRetry("requeued")
	}
	return delivered
}
