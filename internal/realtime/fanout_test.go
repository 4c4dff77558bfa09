package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFanout_LocalDelivery(t *testing.T) {
	hub := runHub(t)
	userID := uuid.New()
	client := registerClient(t, hub, userID, 4)

	f := NewFanout(zap.NewNop(), hub, nil, "")

	require.NoError(t, f.Push(context.Background(), userID, "notification.created", map[string]string{"title": "New Todo"}))

	var env Envelope
	require.NoError(t, json.Unmarshal(<-client.send, &env))

	assert.Equal(t, "notification.created", env.Kind)
	assert.Equal(t, userID, env.UserID)
	assert.JSONEq(t, `{"title":"New Todo"}`, string(env.Payload))
	assert.False(t, env.Timestamp.IsZero())
}

func TestFanout_OfflineUser(t *testing.T) {
	f := NewFanout(zap.NewNop(), runHub(t), nil, "")

	assert.NoError(t, f.Push(context.Background(), uuid.New(), "feed.item", struct{}{}))
}

func TestFanout_ThroughRedisBridge(t *testing.T) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const channel = "realtime:test"

	// two instances: the user is connected to the second one only
	publishingHub := runHub(t)
	receivingHub := runHub(t)

	userID := uuid.New()
	conn := registerClient(t, receivingHub, userID, 16)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bridge := NewBridge(zap.NewNop(), client, receivingHub, channel)
	go func() { _ = bridge.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels(channel)) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f := NewFanout(zap.NewNop(), publishingHub, client, channel)
	require.NoError(t, f.Push(ctx, userID, "notification.created", map[string]string{"message": "Ship it"}))

	select {
	case frame := <-conn.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		assert.Equal(t, userID, env.UserID)
		assert.JSONEq(t, `{"message":"Ship it"}`, string(env.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("message was not bridged")
	}
}

func TestFanout_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()

	f := NewFanout(zap.NewNop(), runHub(t), client, "realtime:test")
	assert.Error(t, f.Push(context.Background(), uuid.New(), "feed.item", struct{}{}))
}
