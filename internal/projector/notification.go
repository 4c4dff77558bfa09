package projector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
	"taskhub/internal/repository"
)

type NotificationRepository interface {
	InsertNotifications(ctx context.Context, ext repository.RepoExtension, notifications []model.UserNotification) error
}

// NotificationProjector writes one notification per project member other
// than the actor, then pushes each one to the recipient's live connections.
type NotificationProjector struct {
	l                *zap.Logger
	once             Deduper
	userRepo         UserRepository
	projectRepo      ProjectRepository
	notificationRepo NotificationRepository
	pusher           Pusher
}

func NewNotificationProjector(
	l *zap.Logger,
	once Deduper,
	userRepo UserRepository,
	projectRepo ProjectRepository,
	notificationRepo NotificationRepository,
	pusher Pusher,
) *NotificationProjector {
	return &NotificationProjector{
		l:                l,
		once:             once,
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

func (p *NotificationProjector) Handle(ctx context.Context, msg broker.Message) error {
	_, f, ok, err := decode(p.l, msg)
	if err != nil || !ok {
		return err
	}

	a := resolveActor(ctx, p.userRepo, f)

	var notifications []model.UserNotification

	applied, err := p.once.Do(ctx, msg, func(ctx context.Context, tx pgx.Tx) error {
		members, err := p.projectRepo.SelectMemberIDs(ctx, tx, f.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to select project members: %w", err)
		}

		workspaceID := f.WorkspaceID
		if workspaceID == uuid.Nil {
			project, err := p.projectRepo.SelectProjectByID(ctx, tx, f.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to select project: %w", err)
			}

			workspaceID = project.WorkspaceID
		}

		notifications = buildNotifications(f, a, workspaceID, members)
		if len(notifications) == 0 {
			return nil
		}

		if err := p.notificationRepo.InsertNotifications(ctx, tx, notifications); err != nil {
			return fmt.Errorf("failed to insert notifications: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if !applied {
		p.l.Info("Duplicate message skipped", zap.String("message_id", msg.ID.String()))

		return nil
	}

	for _, n := range notifications {
		if err := p.pusher.Push(ctx, n.UserID, KindNotificationCreated, n); err != nil {
			p.l.Warn("Failed to push notification",
				zap.Error(err),
				zap.String("message_id", msg.ID.String()),
				zap.String("user_id", n.UserID.String()),
			)
		}
	}

	return nil
}

func buildNotifications(f fact, a actor, workspaceID uuid.UUID, members []uuid.UUID) []model.UserNotification {
	projectID := f.ProjectID

	notifications := make([]model.UserNotification, 0, len(members))

	for _, member := range members {
		if member == f.ActorID {
			continue
		}

		notifications = append(notifications, model.UserNotification{
			ID:               uuid.New(),
			WorkspaceID:      workspaceID,
			ProjectID:        &projectID,
			UserID:           member,
			NotificationType: f.NotificationType,
			Title:            f.Title,
			Message:          f.Subject,
			ActorUserID:      a.ID,
			ActorDisplayName: a.DisplayName,
			ActorAvatarURL:   a.AvatarURL,
			OccurredAt:       f.OccurredAt,
		})
	}

	return notifications
}
