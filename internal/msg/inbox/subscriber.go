package inbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskhub/internal/msg/broker"
)

const (
	defaultWorkerCount   = 1
	defaultHandleTimeout = 30 * time.Second
)

type Config struct {
	Name          string
	WorkerCount   int
	BufferSize    int
	HandleTimeout time.Duration
}

// Subscriber pumps one broker subscription into a pool of workers. Workers
// run the handler on a context detached from shutdown, so a message that is
// already being applied finishes instead of being cut off halfway.
type Subscriber struct {
	l       *zap.Logger
	cfg     Config
	sub     broker.Subscription
	handler Handler
}

func NewSubscriber(l *zap.Logger, cfg Config, sub broker.Subscription, handler Handler) *Subscriber {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}

	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}

	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = defaultHandleTimeout
	}

	l = l.With(zap.String("subscriber", cfg.Name))

	return &Subscriber{
		l:       l,
		cfg:     cfg,
		sub:     sub,
		handler: Chain(handler, WithLogging(l), WithRecover(l), WithTimeout(cfg.HandleTimeout)),
	}
}

func (s *Subscriber) Name() string {
	return s.cfg.Name
}

// Run blocks until ctx is done or the subscription ends, then waits for
// in-flight messages. Messages still queued in the pipe are left unacked
// and come back on the next start.
func (s *Subscriber) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)

	go func() {
		runErr <- s.sub.Run(ctx)
	}()

	go s.logErrors(ctx)

	messagePipe := make(chan broker.Delivery, s.cfg.BufferSize)

	var wg sync.WaitGroup

	for i := 0; i < s.cfg.WorkerCount; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id, messagePipe)
		}(i)
	}

	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Context canceled, stopping subscriber")

			return nil
		case d, ok := <-s.sub.Deliveries():
			if !ok {
				s.l.Info("Deliveries channel closed")
				cancel()

				return <-runErr
			}

			select {
			case messagePipe <- d:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Close releases the underlying subscription. Call it after Run returned.
func (s *Subscriber) Close() error {
	return s.sub.Close()
}

func (s *Subscriber) worker(ctx context.Context, id int, messagePipe <-chan broker.Delivery) {
	s.l.Debug("Subscriber worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			s.l.Debug("Worker stopping", zap.Int("worker_id", id))

			return
		case d := <-messagePipe:
			s.handle(ctx, d)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, d broker.Delivery) {
	// errors are already logged by the middleware; the message is acked
	// regardless so a poison message cannot block the subscription
	_ = s.handler.Handle(context.WithoutCancel(ctx), d.Message)

	d.Ack()
}

func (s *Subscriber) logErrors(ctx context.Context) {
	errs := s.sub.Errors()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}

			s.l.Warn("Subscription error", zap.Error(err))
		}
	}
}
