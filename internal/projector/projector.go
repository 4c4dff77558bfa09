// Package projector turns the event stream into read models and side
// channels. Every projector is an inbox.Handler bound to its own broker
// subscription.
package projector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
)

const (
	KindNotificationCreated = "notification.created"
	KindFeedItem            = "feed.item"
)

var validate = validator.New()

type UserRepository interface {
	SelectUserByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.User, error)
}

type ProjectRepository interface {
	SelectProjectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Project, error)
	SelectMemberIDs(ctx context.Context, ext repository.RepoExtension, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Deduper runs fn at most once per message. See inbox.Once.
type Deduper interface {
	Do(ctx context.Context, msg broker.Message, fn func(ctx context.Context, tx pgx.Tx) error) (bool, error)
}

// Pusher delivers a realtime message to every live connection of a user.
type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, kind string, payload any) error
}

// fact is the projector-agnostic reading of an event.
type fact struct {
	ProjectID   uuid.UUID `validate:"required"`
	WorkspaceID uuid.UUID
	Subject     string `validate:"required"`
	ActorID     uuid.UUID
	ActorName   string
	OccurredAt  time.Time

	NotificationType string
	Title            string
	ActivityType     string
	Verb             string
}

func (f fact) activityMessage() string {
	return f.Verb + ": " + f.Subject
}

func describe(evt contracts.Event) fact {
	actorID, actorName := evt.Actor()

	f := fact{
		ProjectID:   evt.Project(),
		WorkspaceID: evt.Workspace(),
		ActorID:     actorID,
		ActorName:   actorName,
		OccurredAt:  evt.OccurredAt(),
	}

	switch e := evt.(type) {
	case *contracts.TodoCreatedEventV1:
		f.Subject = e.Text
		f.NotificationType, f.Title = model.NotificationTodoCreated, "New Todo"
		f.ActivityType, f.Verb = model.ActivityTodoCreated, "created todo"
	case *contracts.TodoCompletedEventV1:
		f.Subject = e.Text
		f.NotificationType, f.Title = model.NotificationTodoCompleted, "Todo Completed"
		f.ActivityType, f.Verb = model.ActivityTodoCompleted, "completed todo"
	case *contracts.TodoTextEditedEventV1:
		f.Subject = e.Text
		f.NotificationType, f.Title = model.NotificationTodoTextEdited, "Todo Updated"
		f.ActivityType, f.Verb = model.ActivityTodoTextEdited, "edited todo"
	case *contracts.TodoDeletedEventV1:
		f.Subject = e.Text
		f.NotificationType, f.Title = model.NotificationTodoDeleted, "Todo Deleted"
		f.ActivityType, f.Verb = model.ActivityTodoDeleted, "deleted todo"
	case *contracts.ProjectCreatedEventV1:
		f.Subject = e.Name
		f.NotificationType, f.Title = model.NotificationProjectCreated, "New Project"
		f.ActivityType, f.Verb = model.ActivityProjectCreated, "created project"
	}

	f.Subject = strings.TrimSpace(f.Subject)

	return f
}

// actor is the enriched view of whoever caused the event. Missing data stays
// nil; enrichment never blocks a projection.
type actor struct {
	ID          *uuid.UUID
	DisplayName *string
	AvatarURL   *string
}

func resolveActor(ctx context.Context, users UserRepository, f fact) actor {
	var a actor

	if f.ActorID == uuid.Nil {
		return a
	}

	id := f.ActorID
	a.ID = &id

	if f.ActorName != "" {
		name := f.ActorName
		a.DisplayName = &name
	}

	user, err := users.SelectUserByID(ctx, nil, f.ActorID)
	if err != nil {
		return a
	}

	if a.DisplayName == nil && user.DisplayName != "" {
		name := user.DisplayName
		a.DisplayName = &name
	}

	a.AvatarURL = user.AvatarURL

	return a
}

// decode returns ok=false for messages the projector should skip: unknown
// types and events missing the fields every projection needs.
func decode(l *zap.Logger, msg broker.Message) (contracts.Event, fact, bool, error) {
	evt, err := contracts.Decode(msg.Type, msg.Body)
	if err != nil {
		if errors.Is(err, contracts.ErrUnknownEventType) {
			l.Debug("Skipping unknown event type",
				zap.String("message_id", msg.ID.String()),
				zap.String("message_type", msg.Type),
			)

			return nil, fact{}, false, nil
		}

		return nil, fact{}, false, fmt.Errorf("failed to decode %s: %w", msg.Type, err)
	}

	f := describe(evt)

	if err := validate.Struct(f); err != nil {
		l.Debug("Skipping incomplete event",
			zap.String("message_id", msg.ID.String()),
			zap.String("message_type", msg.Type),
			zap.Error(err),
		)

		return nil, fact{}, false, nil
	}

	return evt, f, true, nil
}
