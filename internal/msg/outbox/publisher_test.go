package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/pkg/redis"
)

func pendingMessages(n int) []model.OutboxMessage {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	messages := make([]model.OutboxMessage, 0, n)
	for i := 0; i < n; i++ {
		messages = append(messages, model.OutboxMessage{
			ID:          uuid.New(),
			Type:        "TodoCreatedEventV1",
			AggregateID: uuid.New(),
			Payload:     []byte(`{}`),
			OccurredAt:  base.Add(time.Duration(i) * time.Second),
		})
	}

	return messages
}

func newTestPublisher(b *fakeBroker, repo *fakeRepo, locker Locker) *Publisher {
	return NewPublisher(zap.NewNop(), Config{
		Name:         "test",
		PollInterval: 10 * time.Millisecond,
		BatchSize:    100,
		LockTTL:      5 * time.Second,
	}, b, repo, locker)
}

func TestPublisher_RunOnce_PublishesOldestFirstAndMarks(t *testing.T) {
	messages := pendingMessages(3)
	repo := newFakeRepo(messages[2], messages[0], messages[1])
	b := &fakeBroker{}

	p := newTestPublisher(b, repo, &LocalLocker{})

	stats, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Selected: 3, Published: 3}, stats)
	require.Len(t, b.published, 3)

	for i, m := range messages {
		assert.Equal(t, m.ID, b.published[i].ID)
		assert.Equal(t, m.Type, b.published[i].Type)
		assert.Equal(t, m.AggregateID, b.published[i].Key)
		assert.True(t, repo.processed(m.ID))
	}

	stats, err = p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Selected, "processed rows are never selected again")
}

func TestPublisher_RunOnce_FailedRowStaysPending(t *testing.T) {
	messages := pendingMessages(3)
	repo := newFakeRepo(messages...)
	b := &fakeBroker{}
	b.setFail(messages[1].ID, true)

	p := newTestPublisher(b, repo, &LocalLocker{})

	stats, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Published)
	assert.Equal(t, 1, stats.Failed)
	assert.True(t, repo.processed(messages[0].ID))
	assert.False(t, repo.processed(messages[1].ID))
	assert.True(t, repo.processed(messages[2].ID))

	b.setFail(messages[1].ID, false)

	stats, err = p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Selected: 1, Published: 1}, stats)
	assert.True(t, repo.processed(messages[1].ID))
	assert.Equal(t, 1, b.count(messages[0].ID))
	assert.Equal(t, 1, b.count(messages[1].ID))
}

func TestPublisher_RunOnce_OpenBreakerLeavesRestPending(t *testing.T) {
	messages := pendingMessages(10)
	repo := newFakeRepo(messages...)
	b := &fakeBroker{}

	for _, m := range messages {
		b.setFail(m.ID, true)
	}

	p := newTestPublisher(b, repo, &LocalLocker{})

	stats, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Published)
	assert.Equal(t, 10, stats.Failed)

	for _, m := range messages {
		assert.False(t, repo.processed(m.ID))
	}
}

func TestPublisher_RunOnce_ConcurrentCyclesAreExclusive(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	messages := pendingMessages(5)
	repo := newFakeRepo(messages...)

	blocking := &fakeBroker{entered: make(chan struct{}), release: make(chan struct{})}

	first := newTestPublisher(blocking, repo, redis.NewLocker(client))
	second := newTestPublisher(blocking, repo, redis.NewLocker(client))

	var (
		wg         sync.WaitGroup
		firstStats Stats
		firstErr   error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		firstStats, firstErr = first.RunOnce(context.Background())
	}()

	select {
	case <-blocking.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first publisher never reached the broker")
	}

	secondStats, err := second.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, secondStats.Skipped)
	assert.Zero(t, secondStats.Selected)

	close(blocking.release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, 5, firstStats.Published)

	for _, m := range messages {
		assert.Equal(t, 1, blocking.count(m.ID))
		assert.True(t, repo.processed(m.ID))
	}

	// lock is released after the cycle
	secondStats, err = second.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, secondStats.Skipped)
}

func TestPublisher_Run_StopsOnCancel(t *testing.T) {
	messages := pendingMessages(2)
	repo := newFakeRepo(messages...)
	b := &fakeBroker{}

	p := newTestPublisher(b, repo, &LocalLocker{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return repo.processed(messages[0].ID) && repo.processed(messages[1].ID)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestLocalLocker(t *testing.T) {
	l := &LocalLocker{}

	unlock, ok, err := l.TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, unlock(context.Background()))

	_, ok, _ = l.TryLock(context.Background(), "k", time.Second)
	assert.True(t, ok)
}

func TestPublisher_RunOnce_StopsBeforeLockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const (
		lockTTL = 400 * time.Millisecond
		perSend = 40 * time.Millisecond
	)

	messages := pendingMessages(20)
	repo := newFakeRepo(messages...)

	var (
		mu          sync.Mutex
		sentExpired []uuid.UUID
	)

	// every send is slow, and redis time moves with it
	slow := &fakeBroker{before: func(msg broker.Message) {
		if !mr.Exists("lock:outbox:slow") {
			mu.Lock()
			sentExpired = append(sentExpired, msg.ID)
			mu.Unlock()
		}

		time.Sleep(perSend)
		mr.FastForward(perSend)
	}}

	p := NewPublisher(zap.NewNop(), Config{
		Name:      "slow",
		BatchSize: 100,
		LockTTL:   lockTTL,
	}, slow, repo, redis.NewLocker(client))

	stats, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sentExpired, "nothing may be sent once the lock has expired")
	assert.Positive(t, stats.Published)
	assert.Positive(t, stats.Deferred)
	assert.Equal(t, len(messages), stats.Published+stats.Deferred)

	for _, m := range messages[stats.Published:] {
		assert.False(t, repo.processed(m.ID))
	}

	// the next cycle picks up exactly the deferred rows
	slow.before = nil

	next, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Deferred, next.Published)

	for _, m := range messages {
		assert.Equal(t, 1, slow.count(m.ID))
	}
}
