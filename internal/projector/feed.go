package projector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/msg/broker"
)

// FeedItem is what live clients receive for every project event.
type FeedItem struct {
	EventType        string    `json:"eventType"`
	ProjectID        uuid.UUID `json:"projectId"`
	AggregateID      uuid.UUID `json:"aggregateId"`
	Message          string    `json:"message"`
	ActorUserID      uuid.UUID `json:"actorUserId"`
	ActorDisplayName string    `json:"actorDisplayName"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// FeedRelay forwards events to every project member, actor included. It
// keeps no state, so redelivered messages are simply pushed again.
type FeedRelay struct {
	l           *zap.Logger
	projectRepo ProjectRepository
	pusher      Pusher
}

func NewFeedRelay(l *zap.Logger, projectRepo ProjectRepository, pusher Pusher) *FeedRelay {
	return &FeedRelay{
		l:           l,
		projectRepo: projectRepo,
		pusher:      pusher,
	}
}

func (r *FeedRelay) Handle(ctx context.Context, msg broker.Message) error {
	evt, f, ok, err := decode(r.l, msg)
	if err != nil || !ok {
		return err
	}

	members, err := r.projectRepo.SelectMemberIDs(ctx, nil, f.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to select project members: %w", err)
	}

	item := FeedItem{
		EventType:        evt.EventType(),
		ProjectID:        f.ProjectID,
		AggregateID:      evt.AggregateID(),
		Message:          f.activityMessage(),
		ActorUserID:      f.ActorID,
		ActorDisplayName: f.ActorName,
		OccurredAt:       f.OccurredAt,
	}

	for _, member := range members {
		if err := r.pusher.Push(ctx, member, KindFeedItem, item); err != nil {
			r.l.Warn("Failed to push feed item",
				zap.Error(err),
				zap.String("message_id", msg.ID.String()),
				zap.String("user_id", member.String()),
			)
		}
	}

	return nil
}
