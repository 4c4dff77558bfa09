package projector

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskhub/internal/apperrors"
	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
)

var errPushFailed = errors.New("push failed")

// fakeOnce mirrors inbox.Once without a database: fn gets a nil tx, which
// the fake repositories ignore.
type fakeOnce struct {
	mu   sync.Mutex
	seen map[uuid.UUID]bool
}

func newFakeOnce() *fakeOnce {
	return &fakeOnce{seen: make(map[uuid.UUID]bool)}
}

func (o *fakeOnce) Do(ctx context.Context, msg broker.Message, fn func(ctx context.Context, tx pgx.Tx) error) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.seen[msg.ID] {
		return false, nil
	}

	if err := fn(ctx, nil); err != nil {
		return false, err
	}

	o.seen[msg.ID] = true

	return true, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) SelectUserByID(_ context.Context, _ repository.RepoExtension, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}

	return nil, apperrors.ErrUserNotFound
}

type fakeProjects struct {
	projects map[uuid.UUID]*model.Project
	members  map[uuid.UUID][]uuid.UUID
}

func (f *fakeProjects) SelectProjectByID(_ context.Context, _ repository.RepoExtension, id uuid.UUID) (*model.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}

	return nil, apperrors.ErrProjectNotFound
}

func (f *fakeProjects) SelectMemberIDs(_ context.Context, _ repository.RepoExtension, projectID uuid.UUID) ([]uuid.UUID, error) {
	return f.members[projectID], nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	rows []model.UserNotification
	err  error
}

func (f *fakeNotifications) InsertNotifications(_ context.Context, _ repository.RepoExtension, notifications []model.UserNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.rows = append(f.rows, notifications...)

	return nil
}

func (f *fakeNotifications) snapshot() []model.UserNotification {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]model.UserNotification(nil), f.rows...)
}

type fakeActivities struct {
	mu   sync.Mutex
	rows []model.ProjectActivity
}

func (f *fakeActivities) InsertActivity(_ context.Context, _ repository.RepoExtension, activity model.ProjectActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rows = append(f.rows, activity)

	return nil
}

func (f *fakeActivities) snapshot() []model.ProjectActivity {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]model.ProjectActivity(nil), f.rows...)
}

type push struct {
	UserID  uuid.UUID
	Kind    string
	Payload any
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []push
	fail   bool
}

func (f *fakePusher) Push(_ context.Context, userID uuid.UUID, kind string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushes = append(f.pushes, push{UserID: userID, Kind: kind, Payload: payload})

	if f.fail {
		return errPushFailed
	}

	return nil
}

func (f *fakePusher) recipients() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(f.pushes))
	for _, p := range f.pushes {
		ids = append(ids, p.UserID)
	}

	return ids
}

// fakeIndex keeps documents the way TodoSearchRepository does: every change
// is merged into whatever is stored.
type fakeIndex struct {
	mu   sync.Mutex
	docs map[uuid.UUID]model.TodoDocument
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[uuid.UUID]model.TodoDocument)}
}

func (f *fakeIndex) Apply(_ context.Context, change model.TodoChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs[change.ID] = f.docs[change.ID].Merge(change)

	return nil
}

func (f *fakeIndex) doc(id uuid.UUID) (model.TodoDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]

	return doc, ok
}

func message(evt contracts.Event) broker.Message {
	body, err := json.Marshal(evt)
	if err != nil {
		panic(err)
	}

	return broker.Message{ID: uuid.New(), Type: evt.EventType(), Body: body}
}

var occurredAt = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
