package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"taskhub/internal/apperrors"
	"taskhub/internal/model"
)

var ErrUserAlreadyExists = errors.New("user already exists")

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) InsertUser(ctx context.Context, ext RepoExtension, user *model.User) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO identity.users (id, display_name, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING created_at;
	`

	err := ext.QueryRow(ctx, query, user.ID, user.DisplayName, user.AvatarURL).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrUserAlreadyExists
		}

		return err
	}

	return nil
}

func (r *UserRepository) SelectUserByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, display_name, avatar_url, created_at
		FROM identity.users
		WHERE id = $1;
	`

	var user model.User

	if err := ext.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}
