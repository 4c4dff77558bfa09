package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks the live connections of this instance, grouped by user.
// Membership changes happen under mu, so a client registered after Run
// returned is closed immediately instead of being left unreachable.
type Hub struct {
	l *zap.Logger

	mu      sync.RWMutex
	users   map[uuid.UUID]map[*Client]struct{}
	stopped bool
}

func NewHub(l *zap.Logger) *Hub {
	return &Hub{
		l:     l,
		users: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Run blocks until ctx is done, then closes every remaining client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.closeAll()

	return nil
}

// Register hands the client to the hub. Once the hub has stopped the client
// is closed right away.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		close(client.send)
		return
	}

	clients, ok := h.users[client.UserID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.users[client.UserID] = clients
	}

	clients[client] = struct{}{}
}

// Unregister closes the client. Unknown or already removed clients are
// ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.users[client.UserID]
	if !ok {
		return
	}

	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)

	if len(clients) == 0 {
		delete(h.users, client.UserID)
	}

	close(client.send)
}

// SendToUser queues msg on every connection of the user. A connection whose
// buffer is full is dropped. It reports how many connections got the message.
func (h *Hub) SendToUser(userID uuid.UUID, msg []byte) int {
	var slow []*Client

	delivered := 0

	h.mu.RLock()
	for client := range h.users[userID] {
		if client.trySend(msg) {
			delivered++
		} else {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.l.Warn("Dropping slow websocket client",
			zap.String("client_id", client.ID.String()),
			zap.String("user_id", userID.String()),
		)

		h.Unregister(client)
	}

	return delivered
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.users {
		n += len(clients)
	}

	return n
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true

	for userID, clients := range h.users {
		for client := range clients {
			close(client.send)
		}

		delete(h.users, userID)
	}
}
