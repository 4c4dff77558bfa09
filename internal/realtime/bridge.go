package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bridge feeds envelopes published by any instance into the local hub.
type Bridge struct {
	l       *zap.Logger
	redis   goredis.UniversalClient
	hub     *Hub
	channel string
}

func NewBridge(l *zap.Logger, redis goredis.UniversalClient, hub *Hub, channel string) *Bridge {
	return &Bridge{
		l:       l,
		redis:   redis,
		hub:     hub,
		channel: channel,
	}
}

func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.redis.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// wait for the subscription to be confirmed before reading
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	b.l.Info("Realtime bridge subscribed", zap.String("channel", b.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.l.Warn("Dropping malformed realtime envelope", zap.Error(err))
				continue
			}

			b.hub.SendToUser(env.UserID, []byte(msg.Payload))
		}
	}
}
