package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/realtime"
)

func TestRealtimeHandler_PushReachesSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := realtime.NewHub(zap.NewNop())
	go func() { _ = hub.Run(ctx) }()

	userID := uuid.New()
	h := NewRealtimeHandler(zap.NewNop(), hub, realtime.ClientConfig{}, nil)

	r := gin.New()
	r.GET("/ws", withUser(userID), h.Connect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	fanout := realtime.NewFanout(zap.NewNop(), hub, nil, "")
	require.NoError(t, fanout.Push(ctx, userID, "notification.created", map[string]string{"title": "Todo Completed"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Todo Completed")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestRealtimeHandler_Anonymous(t *testing.T) {
	h := NewRealtimeHandler(zap.NewNop(), realtime.NewHub(zap.NewNop()), realtime.ClientConfig{}, nil)

	r := gin.New()
	r.GET("/ws", h.Connect)

	rec := do(t, r, "GET", "/ws", nil)
	assert.Equal(t, 401, rec.Code)
}
