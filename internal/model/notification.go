package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTodoCreated    = "todo_created"
	NotificationTodoCompleted  = "todo_completed"
	NotificationTodoTextEdited = "todo_text_edited"
	NotificationTodoDeleted    = "todo_deleted"
	NotificationProjectCreated = "project_created"
)

// UserNotification
// @Description Notification addressed to a single user.
type UserNotification struct {
	ID               uuid.UUID  `db:"id"                 json:"id"`
	WorkspaceID      uuid.UUID  `db:"workspace_id"       json:"workspaceId"`
	ProjectID        *uuid.UUID `db:"project_id"         json:"projectId,omitempty"`
	UserID           uuid.UUID  `db:"user_id"            json:"userId"`
	NotificationType string     `db:"notification_type"  json:"notificationType" example:"todo_completed"`
	Title            string     `db:"title"              json:"title"            example:"Todo Completed"`
	Message          string     `db:"message"            json:"message"          example:"Ship it"`
	ActorUserID      *uuid.UUID `db:"actor_user_id"      json:"actorUserId,omitempty"`
	ActorDisplayName *string    `db:"actor_display_name" json:"actorDisplayName,omitempty"`
	ActorAvatarURL   *string    `db:"actor_avatar_url"   json:"actorAvatarUrl,omitempty"`
	OccurredAt       time.Time  `db:"occurred_at"        json:"occurredAt"   format:"date-time" swaggertype:"string"`
	IsDismissed      bool       `db:"is_dismissed"       json:"isDismissed"`
	DismissedAt      *time.Time `db:"dismissed_at"       json:"dismissedAt,omitempty" format:"date-time" swaggertype:"string"`
} // @Name UserNotification

type NotificationQueryParams struct {
	Limit            int  `form:"limit,default=50"  binding:"min=1,max=200"`
	Offset           int  `form:"offset,default=0" binding:"min=0"`
	IncludeDismissed bool `form:"include_dismissed"`
}

type NotificationIDPathParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}
