package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope is the frame written to the websocket.
type Envelope struct {
	Kind      string          `json:"kind"`
	UserID    uuid.UUID       `json:"userId"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Fanout delivers messages to users wherever they are connected. With a redis
// client the envelope goes through pub/sub and every instance's Bridge picks
// it up; without one only the local hub is used.
type Fanout struct {
	l       *zap.Logger
	hub     *Hub
	redis   goredis.UniversalClient
	channel string
	now     func() time.Time
}

func NewFanout(l *zap.Logger, hub *Hub, redis goredis.UniversalClient, channel string) *Fanout {
	return &Fanout{
		l:       l,
		hub:     hub,
		redis:   redis,
		channel: channel,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Push is best-effort. Offline users are not an error.
func (f *Fanout) Push(ctx context.Context, userID uuid.UUID, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	frame, err := json.Marshal(Envelope{
		Kind:      kind,
		UserID:    userID,
		Payload:   body,
		Timestamp: f.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if f.redis == nil {
		f.hub.SendToUser(userID, frame)

		return nil
	}

	if err := f.redis.Publish(ctx, f.channel, frame).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", f.channel, err)
	}

	return nil
}
