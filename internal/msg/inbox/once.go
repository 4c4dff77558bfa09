package inbox

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
	"taskhub/pkg/postgres"
)

type InboxRepository interface {
	InsertMessage(ctx context.Context, ext repository.RepoExtension, message model.InboxMessage) (bool, error)
}

// Once makes a subscriber's side effects idempotent. The (subscriber,
// message id) row and the projection writes share one transaction, so a
// redelivered message either finds the row and is skipped or the earlier
// attempt never committed at all.
type Once struct {
	db         postgres.TxBeginner
	inboxRepo  InboxRepository
	subscriber string
}

func NewOnce(db postgres.TxBeginner, inboxRepo InboxRepository, subscriber string) *Once {
	return &Once{
		db:         db,
		inboxRepo:  inboxRepo,
		subscriber: subscriber,
	}
}

// Do runs fn at most once per message id. It reports whether fn ran.
func (o *Once) Do(ctx context.Context, msg broker.Message, fn func(ctx context.Context, tx pgx.Tx) error) (applied bool, err error) {
	err = postgres.WithTx(ctx, o.db, func(tx pgx.Tx) error {
		inserted, err := o.inboxRepo.InsertMessage(ctx, tx, model.InboxMessage{
			Subscriber:  o.subscriber,
			MessageID:   msg.ID,
			MessageType: msg.Type,
		})
		if err != nil {
			return fmt.Errorf("failed to insert inbox message: %w", err)
		}

		if !inserted {
			return nil
		}

		if err := fn(ctx, tx); err != nil {
			return err
		}

		applied = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}
