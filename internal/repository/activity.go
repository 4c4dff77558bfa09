package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

type ActivityRepository struct {
	db DB
}

func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) InsertActivity(ctx context.Context, ext RepoExtension, activity model.ProjectActivity) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO pipeline.project_activities (
			id, project_id, activity_type, message, user_id, user_display_name, user_avatar_url, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := ext.Exec(ctx, query,
		activity.ID,
		activity.ProjectID,
		activity.ActivityType,
		activity.Message,
		activity.UserID,
		activity.UserDisplayName,
		activity.UserAvatarURL,
		activity.OccurredAt,
	)

	return err
}

// SelectByProject pages backwards through the feed, newest first.
func (r *ActivityRepository) SelectByProject(ctx context.Context, ext RepoExtension, projectID uuid.UUID, limit int, before *time.Time) ([]model.ProjectActivity, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, project_id, activity_type, message, user_id, user_display_name, user_avatar_url, occurred_at
		FROM pipeline.project_activities
		WHERE project_id = $1 AND ($2::timestamptz IS NULL OR occurred_at < $2)
		ORDER BY occurred_at DESC, id
		LIMIT $3;
	`

	rows, err := ext.Query(ctx, query, projectID, before, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	activities := make([]model.ProjectActivity, 0, limit)

	for rows.Next() {
		var a model.ProjectActivity
		if err := rows.Scan(
			&a.ID,
			&a.ProjectID,
			&a.ActivityType,
			&a.Message,
			&a.UserID,
			&a.UserDisplayName,
			&a.UserAvatarURL,
			&a.OccurredAt,
		); err != nil {
			return nil, err
		}

		activities = append(activities, a)
	}

	return activities, rows.Err()
}
