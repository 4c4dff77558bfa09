package model

import (
	"time"

	"github.com/google/uuid"
)

// InboxMessage records that a subscriber has already applied a broker message.
type InboxMessage struct {
	Subscriber  string    `db:"subscriber"`
	MessageID   uuid.UUID `db:"message_id"`
	MessageType string    `db:"message_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
