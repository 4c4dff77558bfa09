package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

func TestOutboxRepository_InsertMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msg := model.OutboxMessage{
		ID:          uuid.New(),
		Type:        "TodoCreatedEventV1",
		AggregateID: uuid.New(),
		Payload:     []byte(`{"text":"a"}`),
		OccurredAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO pipeline.outbox_messages").
		WithArgs(msg.ID, msg.Type, msg.AggregateID, msg.Payload, msg.OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewOutboxRepository(mock)
	require.NoError(t, repo.InsertMessage(context.Background(), nil, msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_SelectPendingBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	older := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	first, second, todoID := uuid.New(), uuid.New(), uuid.New()

	rows := pgxmock.NewRows([]string{"id", "type", "aggregate_id", "payload", "occurred_at", "processed_at"}).
		AddRow(first, "TodoCreatedEventV1", todoID, []byte(`{}`), older, nil).
		AddRow(second, "TodoCompletedEventV1", todoID, []byte(`{}`), newer, nil)

	mock.ExpectQuery(`WHERE processed_at IS NULL\s+ORDER BY occurred_at\s+LIMIT \$1`).
		WithArgs(1000).
		WillReturnRows(rows)

	repo := NewOutboxRepository(mock)

	messages, err := repo.SelectPendingBatch(context.Background(), nil, 1000)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, first, messages[0].ID)
	assert.Equal(t, second, messages[1].ID)
	assert.Equal(t, todoID, messages[1].AggregateID)
	assert.True(t, messages[0].Pending())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkProcessedOnlyTouchesPendingRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(`SET processed_at = \$2\s+WHERE id = \$1 AND processed_at IS NULL`).
		WithArgs(id, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewOutboxRepository(mock)
	require.NoError(t, repo.MarkProcessed(context.Background(), nil, id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
