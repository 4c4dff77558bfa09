package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskhub/internal/apperrors"
	"taskhub/internal/model"
)

type TodoRepository struct {
	db DB
}

func NewTodoRepository(db DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) InsertTodo(ctx context.Context, ext RepoExtension, todo *model.Todo) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO workspace.todos (id, project_id, text, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING completed, created_at, updated_at;
	`

	return ext.QueryRow(ctx, query,
		todo.ID,
		todo.ProjectID,
		todo.Text,
		todo.CreatedBy,
	).Scan(
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
}

func (r *TodoRepository) SelectTodoByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Todo, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, project_id, text, completed, completed_at, created_by, created_at, updated_at
		FROM workspace.todos
		WHERE id = $1;
	`

	var todo model.Todo

	if err := ext.QueryRow(ctx, query, id).Scan(
		&todo.ID,
		&todo.ProjectID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatedBy,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTodoNotFound
		}

		return nil, err
	}

	return &todo, nil
}

// UpdateTodoCompleted reports false when the todo was already completed.
func (r *TodoRepository) UpdateTodoCompleted(ctx context.Context, ext RepoExtension, id uuid.UUID, at time.Time) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE workspace.todos
		SET completed = true, completed_at = $2, updated_at = $2
		WHERE id = $1 AND completed = false;
	`

	tag, err := ext.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *TodoRepository) UpdateTodoText(ctx context.Context, ext RepoExtension, id uuid.UUID, text string, at time.Time) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE workspace.todos
		SET text = $2, updated_at = $3
		WHERE id = $1;
	`

	tag, err := ext.Exec(ctx, query, id, text, at)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}

	return nil
}

func (r *TodoRepository) DeleteTodo(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `DELETE FROM workspace.todos WHERE id = $1;`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}

	return nil
}
