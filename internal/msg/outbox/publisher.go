package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
	"taskhub/pkg/redis"
)

const (
	defaultBatchSize = 1000
	defaultLockTTL   = 30 * time.Second
	unlockTimeout    = 5 * time.Second
)

type Repository interface {
	MarkProcessed(ctx context.Context, ext repository.RepoExtension, messageID uuid.UUID, at time.Time) error
	SelectPendingBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error)
}

// Locker guards a publish cycle across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (redis.Unlock, bool, error)
}

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ConsecutiveFails uint32
}

type Config struct {
	Name         string
	PollInterval time.Duration
	BatchSize    int
	LockKey      string
	LockTTL      time.Duration
	Breaker      BreakerConfig
}

// Stats describes one publish cycle. Deferred rows were left for the next
// cycle because the lock was about to expire.
type Stats struct {
	Selected  int
	Published int
	Failed    int
	Deferred  int
	Skipped   bool
}

type Publisher struct {
	l          *zap.Logger
	cfg        Config
	producer   broker.Publisher
	outboxRepo Repository
	locker     Locker
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

func NewPublisher(l *zap.Logger, cfg Config, producer broker.Publisher, outboxRepo Repository, locker Locker) *Publisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	if cfg.LockKey == "" {
		cfg.LockKey = "lock:outbox:" + cfg.Name
	}

	if cfg.Breaker.ConsecutiveFails == 0 {
		cfg.Breaker.ConsecutiveFails = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.ConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("Outbox breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Publisher{
		l:          l,
		cfg:        cfg,
		producer:   producer,
		outboxRepo: outboxRepo,
		locker:     locker,
		breaker:    breaker,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run polls the outbox until ctx is done. A failing cycle is logged and the
// next tick tries again.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.l.Info("Outbox publisher started", zap.String("name", p.cfg.Name), zap.Duration("poll_interval", p.cfg.PollInterval))

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Outbox publisher stopped")

			return
		case <-ticker.C:
			stats, err := p.RunOnce(ctx)
			if err != nil {
				p.l.Error("Outbox cycle failed", zap.Error(err))
				continue
			}

			if stats.Selected > 0 {
				p.l.Info("Outbox cycle finished",
					zap.Int("selected", stats.Selected),
					zap.Int("published", stats.Published),
					zap.Int("failed", stats.Failed),
					zap.Int("deferred", stats.Deferred),
				)
			}
		}
	}
}

// RunOnce drains one batch of pending rows, oldest first. Each row is
// published and marked on its own, so one failure never undoes another
// row's progress. When another instance holds the lock the cycle is skipped.
// No row is sent after three quarters of LockTTL: the lock expires on its
// own and another instance may already be publishing the same rows.
func (p *Publisher) RunOnce(ctx context.Context) (stats Stats, err error) {
	unlock, acquired, err := p.locker.TryLock(ctx, p.cfg.LockKey, p.cfg.LockTTL)
	if err != nil {
		return stats, fmt.Errorf("failed to acquire outbox lock: %w", err)
	}

	if !acquired {
		p.l.Debug("Outbox lock busy, skipping cycle", zap.String("lock_key", p.cfg.LockKey))
		stats.Skipped = true

		return stats, nil
	}

	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
		defer cancel()

		if uErr := unlock(unlockCtx); uErr != nil {
			p.l.Warn("Failed to release outbox lock", zap.Error(uErr))
		}
	}()

	cycleCtx, cancel := context.WithTimeout(ctx, p.cfg.LockTTL*3/4)
	defer cancel()

	messages, err := p.outboxRepo.SelectPendingBatch(cycleCtx, nil, p.cfg.BatchSize)
	if err != nil {
		return stats, fmt.Errorf("failed to select pending messages: %w", err)
	}

	stats.Selected = len(messages)

	for i, msg := range messages {
		if ctx.Err() != nil {
			stats.Failed += len(messages) - i
			break
		}

		if cycleCtx.Err() != nil {
			stats.Deferred = len(messages) - i

			p.l.Warn("Outbox lock about to expire, deferring rest of batch",
				zap.Int("deferred", stats.Deferred),
				zap.Duration("lock_ttl", p.cfg.LockTTL),
			)

			break
		}

		if err := p.sendAndMark(ctx, cycleCtx, msg); err != nil {
			stats.Failed++

			p.l.Error("Failed to publish outbox message",
				zap.Error(err),
				zap.String("message_id", msg.ID.String()),
				zap.String("message_type", msg.Type),
			)

			if errors.Is(err, gobreaker.ErrOpenState) {
				// broker is down; leave the rest for the next cycle
				stats.Failed += len(messages) - i - 1
				break
			}

			continue
		}

		stats.Published++

		p.l.Debug("Message published",
			zap.String("message_id", msg.ID.String()),
			zap.String("message_type", msg.Type),
		)
	}

	return stats, nil
}

// sendAndMark publishes under the cycle deadline. Marking uses ctx so a row
// that reached the broker is still marked when the deadline passes mid-send.
func (p *Publisher) sendAndMark(ctx, cycleCtx context.Context, message model.OutboxMessage) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.Publish(cycleCtx, broker.Message{
			ID:   message.ID,
			Key:  message.AggregateID,
			Type: message.Type,
			Body: message.Payload,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	// published but unmarked rows are re-sent next cycle; consumers dedupe by id
	if err := p.outboxRepo.MarkProcessed(ctx, nil, message.ID, p.now()); err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	return nil
}

// LocalLocker is an in-process Locker for single-instance deployments
// without redis.
type LocalLocker struct {
	mu sync.Mutex
}

func (l *LocalLocker) TryLock(context.Context, string, time.Duration) (redis.Unlock, bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}

	return func(context.Context) error {
		l.mu.Unlock()
		return nil
	}, true, nil
}
