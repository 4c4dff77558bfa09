package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskhub/internal/apperrors"
	"taskhub/internal/model"
)

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Pool() DB {
	return r.db
}

func (r *ProjectRepository) InsertProject(ctx context.Context, ext RepoExtension, project *model.Project) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO workspace.projects (id, workspace_id, name, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`

	return ext.QueryRow(ctx, query,
		project.ID,
		project.WorkspaceID,
		project.Name,
		project.CreatedBy,
	).Scan(&project.CreatedAt)
}

func (r *ProjectRepository) InsertMember(ctx context.Context, ext RepoExtension, projectID, userID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO workspace.project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING;
	`

	_, err := ext.Exec(ctx, query, projectID, userID)

	return err
}

func (r *ProjectRepository) SelectProjectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Project, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, workspace_id, name, created_by, created_at
		FROM workspace.projects
		WHERE id = $1;
	`

	var project model.Project

	if err := ext.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.WorkspaceID,
		&project.Name,
		&project.CreatedBy,
		&project.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}

		return nil, err
	}

	return &project, nil
}

// SelectMemberIDs lists the members of a project at the moment of the call.
func (r *ProjectRepository) SelectMemberIDs(ctx context.Context, ext RepoExtension, projectID uuid.UUID) ([]uuid.UUID, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT user_id
		FROM workspace.project_members
		WHERE project_id = $1
		ORDER BY joined_at;
	`

	rows, err := ext.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *ProjectRepository) IsMember(ctx context.Context, ext RepoExtension, projectID, userID uuid.UUID) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT EXISTS (
			SELECT 1 FROM workspace.project_members
			WHERE project_id = $1 AND user_id = $2
		);
	`

	var exists bool
	if err := ext.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
