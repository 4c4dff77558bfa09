package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

type OutboxRepository struct {
	db DB
}

func NewOutboxRepository(db DB) *OutboxRepository {
	return &OutboxRepository{
		db: db,
	}
}

func (r *OutboxRepository) InsertMessage(ctx context.Context, ext RepoExtension, message model.OutboxMessage) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO pipeline.outbox_messages (id, type, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := ext.Exec(ctx, query, message.ID, message.Type, message.AggregateID, message.Payload, message.OccurredAt)
	if err != nil {
		return err
	}

	return nil
}

// MarkProcessed stamps a pending row. Rows that already carry processed_at
// are left untouched.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, ext RepoExtension, messageID uuid.UUID, at time.Time) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE pipeline.outbox_messages
		SET processed_at = $2
		WHERE id = $1 AND processed_at IS NULL;
	`

	_, err := ext.Exec(ctx, query, messageID, at)
	if err != nil {
		return err
	}

	return nil
}

func (r *OutboxRepository) SelectPendingBatch(ctx context.Context, ext RepoExtension, batchSize int) ([]model.OutboxMessage, error) {
	if ext == nil {
		ext = r.db
	}

	messages := make([]model.OutboxMessage, 0, batchSize)

	const query = `
		SELECT id, type, aggregate_id, payload, occurred_at, processed_at
		FROM pipeline.outbox_messages
		WHERE processed_at IS NULL
		ORDER BY occurred_at
		LIMIT $1;
	`

	rows, err := ext.Query(ctx, query, batchSize)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var message model.OutboxMessage
		if err := rows.Scan(
			&message.ID,
			&message.Type,
			&message.AggregateID,
			&message.Payload,
			&message.OccurredAt,
			&message.ProcessedAt,
		); err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	return messages, rows.Err()
}
