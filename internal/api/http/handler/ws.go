package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskhub/internal/realtime"
)

type Hub interface {
	Register(client *realtime.Client)
	Unregister(client *realtime.Client)
}

type RealtimeHandler struct {
	BaseHandler

	log      *zap.Logger
	hub      Hub
	cfg      realtime.ClientConfig
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(log *zap.Logger, hub Hub, cfg realtime.ClientConfig, checkOrigin func(r *http.Request) bool) *RealtimeHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &RealtimeHandler{
		log: log,
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Connect
// @Summary Realtime channel.
// @Description Upgrades to a websocket. The server pushes notification.created and feed.item envelopes, client frames are ignored.
// @Tags Realtime
// @Security AccessToken
// @Success 101 "Switching protocols"
// @Failure 401 {object} ResponseWithMessage "Not authorized"
// @Router /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, userID, h.cfg)
	h.hub.Register(client)

	h.log.Debug("Websocket connected",
		zap.String("user_id", userID.String()),
		zap.String("client_id", client.ID.String()),
	)

	// The request context ends with this handler, the write pump has to outlive it.
	go client.WritePump(context.WithoutCancel(c.Request.Context()), h.log)

	client.ReadPump()
	h.hub.Unregister(client)

	h.log.Debug("Websocket disconnected", zap.String("client_id", client.ID.String()))
}
