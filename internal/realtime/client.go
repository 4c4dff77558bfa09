package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ClientConfig struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	SendBuffer int
}

func (c ClientConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Client is one websocket connection of an authenticated user. Only the hub
// writes to send and only the hub closes it.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID

	conn *websocket.Conn
	send chan []byte
	cfg  ClientConfig
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, cfg ClientConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}

	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}

	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}

	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, cfg.SendBuffer),
		cfg:    cfg,
	}
}

// trySend never blocks; a client that cannot keep up loses the message.
func (c *Client) trySend(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WritePump forwards queued messages to the socket and keeps it alive with
// pings. It returns when the hub closes the client or ctx is done.
func (c *Client) WritePump(ctx context.Context, l *zap.Logger) {
	ticker := time.NewTicker(c.cfg.pingPeriod())

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(c.cfg.WriteWait),
			)

			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				l.Debug("Websocket write failed", zap.String("client_id", c.ID.String()), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains the socket so control frames are processed. The channel
// is push-only; inbound data frames are discarded.
func (c *Client) ReadPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
