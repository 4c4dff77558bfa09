package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

type ActivityRepository interface {
	SelectByProject(ctx context.Context, ext repository.RepoExtension, projectID uuid.UUID, limit int, before *time.Time) ([]model.ProjectActivity, error)
}

type ActivityService struct {
	log          *zap.Logger
	activityRepo ActivityRepository
	projectRepo  ProjectRepository
}

func NewActivityService(log *zap.Logger, activityRepo ActivityRepository, projectRepo ProjectRepository) *ActivityService {
	return &ActivityService{
		log:          log,
		activityRepo: activityRepo,
		projectRepo:  projectRepo,
	}
}

func (s *ActivityService) ListActivity(ctx context.Context, userID, projectID uuid.UUID, params model.ActivityQueryParams) ([]model.ProjectActivity, error) {
	if _, err := memberProject(ctx, nil, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	return s.activityRepo.SelectByProject(ctx, nil, projectID, params.Limit, params.Before)
}
