package repository

import (
	"context"

	"taskhub/internal/model"
)

type InboxRepository struct {
	db DB
}

func NewInboxRepository(db DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// InsertMessage records the message for the subscriber. It reports false
// when the pair was already present, i.e. the message is a redelivery.
func (r *InboxRepository) InsertMessage(ctx context.Context, ext RepoExtension, message model.InboxMessage) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO pipeline.inbox_messages (subscriber, message_id, message_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber, message_id) DO NOTHING;
	`

	tag, err := ext.Exec(ctx, query, message.Subscriber, message.MessageID, message.MessageType)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
