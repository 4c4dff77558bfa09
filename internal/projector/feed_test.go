package projector

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/contracts"
)

func TestFeedRelay_PushesToEveryMember(t *testing.T) {
	projectID := uuid.New()
	actor, other := uuid.New(), uuid.New()

	pusher := &fakePusher{}
	projects := &fakeProjects{members: map[uuid.UUID][]uuid.UUID{projectID: {actor, other}}}

	r := NewFeedRelay(zap.NewNop(), projects, pusher)

	todoID := uuid.New()
	require.NoError(t, r.Handle(context.Background(), message(&contracts.TodoCompletedEventV1{
		TodoID: todoID, ProjectID: projectID, Text: "Ship it", CompletedByUserID: actor, CompletedByUserDisplayName: "Alice", At: occurredAt,
	})))

	assert.ElementsMatch(t, []uuid.UUID{actor, other}, pusher.recipients())

	item, ok := pusher.pushes[0].Payload.(FeedItem)
	require.True(t, ok)
	assert.Equal(t, KindFeedItem, pusher.pushes[0].Kind)
	assert.Equal(t, contracts.TodoCompletedType, item.EventType)
	assert.Equal(t, todoID, item.AggregateID)
	assert.Equal(t, "completed todo: Ship it", item.Message)
	assert.Equal(t, "Alice", item.ActorDisplayName)
}

func TestFeedRelay_PushFailureIsNotFatal(t *testing.T) {
	projectID := uuid.New()
	pusher := &fakePusher{fail: true}
	projects := &fakeProjects{members: map[uuid.UUID][]uuid.UUID{projectID: {uuid.New()}}}

	r := NewFeedRelay(zap.NewNop(), projects, pusher)

	assert.NoError(t, r.Handle(context.Background(), message(&contracts.ProjectCreatedEventV1{
		ProjectID: projectID, Name: "Launch",
	})))
}
