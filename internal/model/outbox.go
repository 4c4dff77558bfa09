package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboxMessage is a domain fact waiting to be handed to the broker.
// ProcessedAt is nil while the row is pending. AggregateID is the broker
// partition key, so facts about one aggregate stay on one partition.
type OutboxMessage struct {
	ID          uuid.UUID  `db:"id"`
	Type        string     `db:"type"`
	AggregateID uuid.UUID  `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	OccurredAt  time.Time  `db:"occurred_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}

func (m OutboxMessage) Pending() bool {
	return m.ProcessedAt == nil
}
