package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/pkg/postgres"
)

type ProjectService struct {
	log         *zap.Logger
	projectRepo ProjectRepository
	userRepo    UserRepository
	outbox      OutboxWriter
}

func NewProjectService(log *zap.Logger, projectRepo ProjectRepository, userRepo UserRepository, outbox OutboxWriter) *ProjectService {
	return &ProjectService{
		log:         log,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		outbox:      outbox,
	}
}

// CreateProject stores the project with its creator and initial members, and
// enqueues ProjectCreatedEventV1 in the same transaction.
func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, req model.ProjectCreateRequest) (*model.Project, error) {
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace id: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ErrEmptyText
	}

	actor, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedBy:   userID,
	}

	err = postgres.WithTx(ctx, s.projectRepo.Pool(), func(tx pgx.Tx) error {
		if err := s.projectRepo.InsertProject(ctx, tx, project); err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}

		members := append([]uuid.UUID{userID}, req.MemberIDs...)
		for _, memberID := range members {
			if err := s.projectRepo.InsertMember(ctx, tx, project.ID, memberID); err != nil {
				return fmt.Errorf("failed to insert project member: %w", err)
			}
		}

		if _, err := s.outbox.Enqueue(ctx, tx, &contracts.ProjectCreatedEventV1{
			ProjectID:                project.ID,
			WorkspaceID:              project.WorkspaceID,
			Name:                     project.Name,
			CreatedByUserID:          userID,
			CreatedByUserDisplayName: actor.DisplayName,
			At:                       project.CreatedAt,
		}); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Project created", zap.String("project_id", project.ID.String()))

	return project, nil
}
