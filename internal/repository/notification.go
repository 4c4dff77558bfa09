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

type NotificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) InsertNotifications(ctx context.Context, ext RepoExtension, notifications []model.UserNotification) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO pipeline.user_notifications (
			id, workspace_id, project_id, user_id, notification_type, title, message,
			actor_user_id, actor_display_name, actor_avatar_url, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	for _, n := range notifications {
		if _, err := ext.Exec(ctx, query,
			n.ID,
			n.WorkspaceID,
			n.ProjectID,
			n.UserID,
			n.NotificationType,
			n.Title,
			n.Message,
			n.ActorUserID,
			n.ActorDisplayName,
			n.ActorAvatarURL,
			n.OccurredAt,
		); err != nil {
			return err
		}
	}

	return nil
}

func (r *NotificationRepository) SelectByUser(ctx context.Context, ext RepoExtension, userID uuid.UUID, params model.NotificationQueryParams) ([]model.UserNotification, int, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, workspace_id, project_id, user_id, notification_type, title, message,
		       actor_user_id, actor_display_name, actor_avatar_url, occurred_at,
		       is_dismissed, dismissed_at, COUNT(*) OVER() AS total
		FROM pipeline.user_notifications
		WHERE user_id = $1 AND ($2 OR NOT is_dismissed)
		ORDER BY occurred_at DESC, id
		LIMIT $3 OFFSET $4;
	`

	rows, err := ext.Query(ctx, query, userID, params.IncludeDismissed, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var (
		total         int
		notifications = make([]model.UserNotification, 0, params.Limit)
	)

	for rows.Next() {
		var n model.UserNotification
		if err := rows.Scan(
			&n.ID,
			&n.WorkspaceID,
			&n.ProjectID,
			&n.UserID,
			&n.NotificationType,
			&n.Title,
			&n.Message,
			&n.ActorUserID,
			&n.ActorDisplayName,
			&n.ActorAvatarURL,
			&n.OccurredAt,
			&n.IsDismissed,
			&n.DismissedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}

		notifications = append(notifications, n)
	}

	return notifications, total, rows.Err()
}

// Dismiss flags the notification as dismissed. A notification that is
// already dismissed keeps its original dismissed_at, and false is returned.
func (r *NotificationRepository) Dismiss(ctx context.Context, ext RepoExtension, userID, notificationID uuid.UUID, at time.Time) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE pipeline.user_notifications
		SET is_dismissed = true, dismissed_at = $3
		WHERE id = $1 AND user_id = $2 AND NOT is_dismissed;
	`

	tag, err := ext.Exec(ctx, query, notificationID, userID, at)
	if err != nil {
		return false, err
	}

	if tag.RowsAffected() == 1 {
		return true, nil
	}

	const existsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM pipeline.user_notifications WHERE id = $1 AND user_id = $2
		);
	`

	var exists bool
	if err := ext.QueryRow(ctx, existsQuery, notificationID, userID).Scan(&exists); err != nil {
		return false, err
	}

	if !exists {
		return false, apperrors.ErrNotificationNotFound
	}

	return false, nil
}

func (r *NotificationRepository) DismissAll(ctx context.Context, ext RepoExtension, userID uuid.UUID, at time.Time) (int64, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE pipeline.user_notifications
		SET is_dismissed = true, dismissed_at = $2
		WHERE user_id = $1 AND NOT is_dismissed;
	`

	tag, err := ext.Exec(ctx, query, userID, at)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) SelectByID(ctx context.Context, ext RepoExtension, userID, notificationID uuid.UUID) (*model.UserNotification, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, workspace_id, project_id, user_id, notification_type, title, message,
		       actor_user_id, actor_display_name, actor_avatar_url, occurred_at,
		       is_dismissed, dismissed_at
		FROM pipeline.user_notifications
		WHERE id = $1 AND user_id = $2;
	`

	rows, err := ext.Query(ctx, query, notificationID, userID)
	if err != nil {
		return nil, err
	}

	n, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.UserNotification])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}

		return nil, err
	}

	return n, nil
}
