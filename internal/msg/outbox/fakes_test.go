package outbox

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
)

var errBrokerDown = errors.New("broker down")

type fakeRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.OutboxMessage
}

func newFakeRepo(messages ...model.OutboxMessage) *fakeRepo {
	r := &fakeRepo{rows: make(map[uuid.UUID]*model.OutboxMessage)}
	for i := range messages {
		m := messages[i]
		r.rows[m.ID] = &m
	}

	return r
}

func (r *fakeRepo) InsertMessage(_ context.Context, _ repository.RepoExtension, message model.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[message.ID] = &message

	return nil
}

func (r *fakeRepo) SelectPendingBatch(_ context.Context, _ repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make([]model.OutboxMessage, 0, len(r.rows))
	for _, m := range r.rows {
		if m.Pending() {
			pending = append(pending, *m)
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].OccurredAt.Before(pending[j].OccurredAt) })

	if len(pending) > batchSize {
		pending = pending[:batchSize]
	}

	return pending, nil
}

func (r *fakeRepo) MarkProcessed(_ context.Context, _ repository.RepoExtension, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.rows[id]; ok && m.ProcessedAt == nil {
		m.ProcessedAt = &at
	}

	return nil
}

func (r *fakeRepo) processed(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rows[id].ProcessedAt != nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published []broker.Message
	failFor   map[uuid.UUID]bool

	// when set, the first Publish signals entered and waits for release
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	// runs before every publish
	before func(msg broker.Message)
}

func (b *fakeBroker) Publish(_ context.Context, msg broker.Message) error {
	if b.before != nil {
		b.before(msg)
	}

	if b.entered != nil {
		b.once.Do(func() {
			close(b.entered)
			<-b.release
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failFor[msg.ID] {
		return errBrokerDown
	}

	b.published = append(b.published, msg)

	return nil
}

func (b *fakeBroker) count(id uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, m := range b.published {
		if m.ID == id {
			n++
		}
	}

	return n
}

func (b *fakeBroker) setFail(id uuid.UUID, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failFor == nil {
		b.failFor = make(map[uuid.UUID]bool)
	}

	b.failFor[id] = fail
}

type nopExt struct{}

func (nopExt) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (nopExt) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (nopExt) QueryRow(context.Context, string, ...any) pgx.Row { return nil }
