package inbox

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"taskhub/internal/msg/broker"
)

// Handler applies one broker message. A returned error is logged by the
// runtime; the message is acknowledged either way.
type Handler interface {
	Handle(ctx context.Context, msg broker.Message) error
}

type HandlerFunc func(ctx context.Context, msg broker.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg broker.Message) error {
	return f(ctx, msg)
}

type Middleware func(next Handler) Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}

func WithLogging(l *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, msg broker.Message) error {
			start := time.Now()

			err := next.Handle(ctx, msg)

			fields := []zap.Field{
				zap.String("message_id", msg.ID.String()),
				zap.String("message_type", msg.Type),
				zap.Duration("duration", time.Since(start)),
			}

			if err != nil {
				l.Error("Error processing message", append(fields, zap.Error(err))...)

				return err
			}

			l.Debug("Message processed", fields...)

			return nil
		})
	}
}

// WithRecover turns a panic inside the handler into an error so one poison
// message cannot take the worker down.
func WithRecover(l *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, msg broker.Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					l.Error("Handler panicked",
						zap.String("message_id", msg.ID.String()),
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()),
					)

					err = fmt.Errorf("handler panic: %v", r)
				}
			}()

			return next.Handle(ctx, msg)
		})
	}
}

func WithTimeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		if d <= 0 {
			return next
		}

		return HandlerFunc(func(ctx context.Context, msg broker.Message) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Handle(ctx, msg)
		})
	}
}
