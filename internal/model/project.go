package model

import (
	"time"

	"github.com/google/uuid"
)

// Project
// @Description A project inside a workspace.
type Project struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id" json:"workspaceId"`
	Name        string    `db:"name"         json:"name"`
	CreatedBy   uuid.UUID `db:"created_by"   json:"createdBy"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt" format:"date-time" swaggertype:"string"`
} // @Name Project

// ProjectCreateRequest
// @Description Payload for creating a project.
type ProjectCreateRequest struct {
	WorkspaceID string      `binding:"required,uuid"     json:"workspaceId" example:"b4b03119-1290-44bc-b599-6a5e91d6611f"`
	Name        string      `binding:"required,max=200" json:"name"        example:"Launch"`
	MemberIDs   []uuid.UUID `json:"memberIds"`
} // @Name ProjectCreateRequest

type ProjectIDPathParam struct {
	ID string `uri:"project_id" binding:"required,uuid"`
}
