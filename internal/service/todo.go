package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/pkg/postgres"
)

type TodoRepository interface {
	InsertTodo(ctx context.Context, ext repository.RepoExtension, todo *model.Todo) error
	SelectTodoByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Todo, error)
	UpdateTodoCompleted(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, at time.Time) (bool, error)
	UpdateTodoText(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, text string, at time.Time) error
	DeleteTodo(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

// TodoService is the command side for todos. Every mutation and its outbox
// row commit or roll back together.
type TodoService struct {
	log         *zap.Logger
	todoRepo    TodoRepository
	projectRepo ProjectRepository
	userRepo    UserRepository
	outbox      OutboxWriter
	now         func() time.Time
}

func NewTodoService(log *zap.Logger, todoRepo TodoRepository, projectRepo ProjectRepository, userRepo UserRepository, outbox OutboxWriter) *TodoService {
	return &TodoService{
		log:         log,
		todoRepo:    todoRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		outbox:      outbox,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *TodoService) CreateTodo(ctx context.Context, userID, projectID uuid.UUID, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyText
	}

	actor, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	todo := &model.Todo{
		ID:        uuid.New(),
		ProjectID: projectID,
		Text:      text,
		CreatedBy: userID,
	}

	err = postgres.WithTx(ctx, s.projectRepo.Pool(), func(tx pgx.Tx) error {
		project, err := memberProject(ctx, tx, s.projectRepo, projectID, userID)
		if err != nil {
			return err
		}

		if err := s.todoRepo.InsertTodo(ctx, tx, todo); err != nil {
			return fmt.Errorf("failed to insert todo: %w", err)
		}

		_, err = s.outbox.Enqueue(ctx, tx, &contracts.TodoCreatedEventV1{
			TodoID:                   todo.ID,
			ProjectID:                project.ID,
			WorkspaceID:              project.WorkspaceID,
			Text:                     todo.Text,
			CreatedByUserID:          userID,
			CreatedByUserDisplayName: actor.DisplayName,
			At:                       todo.CreatedAt,
		})

		return err
	})
	if err != nil {
		return nil, err
	}

	return todo, nil
}

// CompleteTodo is idempotent: completing a completed todo changes nothing
// and emits no event.
func (s *TodoService) CompleteTodo(ctx context.Context, userID, todoID uuid.UUID) (*model.Todo, error) {
	actor, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	var todo *model.Todo

	err = postgres.WithTx(ctx, s.projectRepo.Pool(), func(tx pgx.Tx) error {
		found, err := s.todoRepo.SelectTodoByID(ctx, tx, todoID)
		if err != nil {
			return err
		}

		todo = found

		project, err := memberProject(ctx, tx, s.projectRepo, todo.ProjectID, userID)
		if err != nil {
			return err
		}

		at := s.now()

		changed, err := s.todoRepo.UpdateTodoCompleted(ctx, tx, todoID, at)
		if err != nil {
			return fmt.Errorf("failed to complete todo: %w", err)
		}

		if !changed {
			return nil
		}

		todo.Completed = true
		todo.CompletedAt = &at
		todo.UpdatedAt = at

		_, err = s.outbox.Enqueue(ctx, tx, &contracts.TodoCompletedEventV1{
			TodoID:                     todo.ID,
			ProjectID:                  project.ID,
			WorkspaceID:                project.WorkspaceID,
			Text:                       todo.Text,
			CompletedByUserID:          userID,
			CompletedByUserDisplayName: actor.DisplayName,
			At:                         at,
		})

		return err
	})
	if err != nil {
		return nil, err
	}

	return todo, nil
}

func (s *TodoService) EditTodoText(ctx context.Context, userID, todoID uuid.UUID, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyText
	}

	actor, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	var todo *model.Todo

	err = postgres.WithTx(ctx, s.projectRepo.Pool(), func(tx pgx.Tx) error {
		found, err := s.todoRepo.SelectTodoByID(ctx, tx, todoID)
		if err != nil {
			return err
		}

		todo = found

		project, err := memberProject(ctx, tx, s.projectRepo, todo.ProjectID, userID)
		if err != nil {
			return err
		}

		if todo.Text == text {
			return nil
		}

		previous := todo.Text
		at := s.now()

		if err := s.todoRepo.UpdateTodoText(ctx, tx, todoID, text, at); err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}

		todo.Text = text
		todo.UpdatedAt = at

		_, err = s.outbox.Enqueue(ctx, tx, &contracts.TodoTextEditedEventV1{
			TodoID:                  todo.ID,
			ProjectID:               project.ID,
			WorkspaceID:             project.WorkspaceID,
			PreviousText:            previous,
			Text:                    text,
			EditedByUserID:          userID,
			EditedByUserDisplayName: actor.DisplayName,
			At:                      at,
		})

		return err
	})
	if err != nil {
		return nil, err
	}

	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, userID, todoID uuid.UUID) error {
	actor, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return err
	}

	return postgres.WithTx(ctx, s.projectRepo.Pool(), func(tx pgx.Tx) error {
		todo, err := s.todoRepo.SelectTodoByID(ctx, tx, todoID)
		if err != nil {
			return err
		}

		project, err := memberProject(ctx, tx, s.projectRepo, todo.ProjectID, userID)
		if err != nil {
			return err
		}

		if err := s.todoRepo.DeleteTodo(ctx, tx, todoID); err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}

		_, err = s.outbox.Enqueue(ctx, tx, &contracts.TodoDeletedEventV1{
			TodoID:                   todo.ID,
			ProjectID:                project.ID,
			WorkspaceID:              project.WorkspaceID,
			Text:                     todo.Text,
			DeletedByUserID:          userID,
			DeletedByUserDisplayName: actor.DisplayName,
			At:                       s.now(),
		})

		return err
	})
}
