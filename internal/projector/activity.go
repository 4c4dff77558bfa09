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

type ActivityRepository interface {
	InsertActivity(ctx context.Context, ext repository.RepoExtension, activity model.ProjectActivity) error
}

// ActivityProjector appends one entry per event to the project's feed.
type ActivityProjector struct {
	l            *zap.Logger
	once         Deduper
	userRepo     UserRepository
	activityRepo ActivityRepository
}

func NewActivityProjector(l *zap.Logger, once Deduper, userRepo UserRepository, activityRepo ActivityRepository) *ActivityProjector {
	return &ActivityProjector{
		l:            l,
		once:         once,
		userRepo:     userRepo,
		activityRepo: activityRepo,
	}
}

func (p *ActivityProjector) Handle(ctx context.Context, msg broker.Message) error {
	_, f, ok, err := decode(p.l, msg)
	if err != nil || !ok {
		return err
	}

	a := resolveActor(ctx, p.userRepo, f)

	activity := model.ProjectActivity{
		ID:              uuid.New(),
		ProjectID:       f.ProjectID,
		ActivityType:    f.ActivityType,
		Message:         f.activityMessage(),
		UserID:          a.ID,
		UserDisplayName: a.DisplayName,
		UserAvatarURL:   a.AvatarURL,
		OccurredAt:      f.OccurredAt,
	}

	applied, err := p.once.Do(ctx, msg, func(ctx context.Context, tx pgx.Tx) error {
		if err := p.activityRepo.InsertActivity(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if !applied {
		p.l.Info("Duplicate message skipped", zap.String("message_id", msg.ID.String()))
	}

	return nil
}
