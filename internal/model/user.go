package model

import (
	"time"

	"github.com/google/uuid"
)

// User
// @Description Identity record used to enrich projections.
type User struct {
	ID          uuid.UUID `db:"id"           json:"id"          example:"b4b03119-1290-44bc-b599-6a5e91d6611f"`
	DisplayName string    `db:"display_name" json:"displayName" example:"Alice"`
	AvatarURL   *string   `db:"avatar_url"   json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"   format:"date-time" swaggertype:"string"`
} // @Name User
