package service

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/apperrors"
	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

type UserRepository interface {
	SelectUserByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.User, error)
}

type ProjectRepository interface {
	Pool() repository.DB

	InsertProject(ctx context.Context, ext repository.RepoExtension, project *model.Project) error
	InsertMember(ctx context.Context, ext repository.RepoExtension, projectID, userID uuid.UUID) error
	SelectProjectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Project, error)
	IsMember(ctx context.Context, ext repository.RepoExtension, projectID, userID uuid.UUID) (bool, error)
}

// OutboxWriter enqueues an event inside the caller's transaction.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx repository.RepoExtension, evt contracts.Event) (model.OutboxMessage, error)
}

// memberProject loads the project and checks that userID belongs to it.
func memberProject(ctx context.Context, ext repository.RepoExtension, projectRepo ProjectRepository, projectID, userID uuid.UUID) (*model.Project, error) {
	project, err := projectRepo.SelectProjectByID(ctx, ext, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := projectRepo.IsMember(ctx, ext, projectID, userID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperrors.ErrNotProjectMember
	}

	return project, nil
}
