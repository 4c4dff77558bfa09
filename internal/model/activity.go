package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityTodoCreated    = "todo_created"
	ActivityTodoCompleted  = "todo_completed"
	ActivityTodoTextEdited = "todo_text_edited"
	ActivityTodoDeleted    = "todo_deleted"
	ActivityProjectCreated = "project_created"
)

// ProjectActivity
// @Description Entry of a project activity feed.
type ProjectActivity struct {
	ID              uuid.UUID  `db:"id"                json:"id"`
	ProjectID       uuid.UUID  `db:"project_id"        json:"projectId"`
	ActivityType    string     `db:"activity_type"     json:"activityType" example:"todo_completed"`
	Message         string     `db:"message"           json:"message"      example:"completed todo: Ship it"`
	UserID          *uuid.UUID `db:"user_id"           json:"userId,omitempty"`
	UserDisplayName *string    `db:"user_display_name" json:"userDisplayName,omitempty"`
	UserAvatarURL   *string    `db:"user_avatar_url"   json:"userAvatarUrl,omitempty"`
	OccurredAt      time.Time  `db:"occurred_at"       json:"occurredAt" format:"date-time" swaggertype:"string"`
} // @Name ProjectActivity

type ActivityQueryParams struct {
	Limit  int        `form:"limit,default=50" binding:"min=1,max=200"`
	Before *time.Time `form:"before"           time_format:"2006-01-02T15:04:05Z07:00"`
}
