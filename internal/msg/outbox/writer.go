package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

var ErrNoTransaction = errors.New("outbox rows must be written inside the caller's transaction")

type MessageInserter interface {
	InsertMessage(ctx context.Context, ext repository.RepoExtension, message model.OutboxMessage) error
}

// Writer turns typed events into outbox rows. It never opens or commits a
// transaction: the row is only durable if the caller's unit of work commits.
type Writer struct {
	outboxRepo MessageInserter
}

func NewWriter(outboxRepo MessageInserter) *Writer {
	return &Writer{outboxRepo: outboxRepo}
}

// Build is pure construction. The id is a UUIDv7 so ids sort roughly by
// creation time.
func (w *Writer) Build(evt contracts.Event) (model.OutboxMessage, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return model.OutboxMessage{}, fmt.Errorf("failed to marshal %s: %w", evt.EventType(), err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.OutboxMessage{}, fmt.Errorf("failed to generate message id: %w", err)
	}

	return model.OutboxMessage{
		ID:          id,
		Type:        evt.EventType(),
		AggregateID: evt.AggregateID(),
		Payload:     payload,
		OccurredAt:  evt.OccurredAt().UTC(),
	}, nil
}

// Enqueue builds the row and inserts it through tx.
func (w *Writer) Enqueue(ctx context.Context, tx repository.RepoExtension, evt contracts.Event) (model.OutboxMessage, error) {
	if tx == nil {
		return model.OutboxMessage{}, ErrNoTransaction
	}

	message, err := w.Build(evt)
	if err != nil {
		return model.OutboxMessage{}, err
	}

	if err := w.outboxRepo.InsertMessage(ctx, tx, message); err != nil {
		return model.OutboxMessage{}, fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return message, nil
}
