package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

type NotificationRepository interface {
	SelectByUser(ctx context.Context, ext repository.RepoExtension, userID uuid.UUID, params model.NotificationQueryParams) ([]model.UserNotification, int, error)
	SelectByID(ctx context.Context, ext repository.RepoExtension, userID, notificationID uuid.UUID) (*model.UserNotification, error)
	Dismiss(ctx context.Context, ext repository.RepoExtension, userID, notificationID uuid.UUID, at time.Time) (bool, error)
	DismissAll(ctx context.Context, ext repository.RepoExtension, userID uuid.UUID, at time.Time) (int64, error)
}

type NotificationService struct {
	log              *zap.Logger
	notificationRepo NotificationRepository
	now              func() time.Time
}

func NewNotificationService(log *zap.Logger, notificationRepo NotificationRepository) *NotificationService {
	return &NotificationService{
		log:              log,
		notificationRepo: notificationRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, params model.NotificationQueryParams) ([]model.UserNotification, int, error) {
	return s.notificationRepo.SelectByUser(ctx, nil, userID, params)
}

// DismissNotification returns the notification after dismissal. Dismissing
// twice is a no-op: the first dismissed_at is kept. A notification owned by
// someone else is reported as not found.
func (s *NotificationService) DismissNotification(ctx context.Context, userID, notificationID uuid.UUID) (*model.UserNotification, error) {
	changed, err := s.notificationRepo.Dismiss(ctx, nil, userID, notificationID, s.now())
	if err != nil {
		return nil, err
	}

	if !changed {
		s.log.Debug("Notification already dismissed", zap.String("notification_id", notificationID.String()))
	}

	return s.notificationRepo.SelectByID(ctx, nil, userID, notificationID)
}

func (s *NotificationService) DismissAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.DismissAll(ctx, nil, userID, s.now())
}
