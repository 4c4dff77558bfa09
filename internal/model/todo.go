package model

import (
	"time"

	"github.com/google/uuid"
)

// Todo
// @Description A todo item of a project.
type Todo struct {
	ID          uuid.UUID  `db:"id"           json:"id"`
	ProjectID   uuid.UUID  `db:"project_id"   json:"projectId"`
	Text        string     `db:"text"         json:"text"`
	Completed   bool       `db:"completed"    json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty" format:"date-time" swaggertype:"string"`
	CreatedBy   uuid.UUID  `db:"created_by"   json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at"   json:"createdAt"             format:"date-time" swaggertype:"string"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updatedAt"             format:"date-time" swaggertype:"string"`
} // @Name Todo

// TodoTextRequest
// @Description Text of a todo, used both for create and edit.
type TodoTextRequest struct {
	Text string `binding:"required,max=2000" json:"text" example:"Ship it"`
} // @Name TodoTextRequest

type TodoIDPathParam struct {
	ID string `uri:"todo_id" binding:"required,uuid"`
}

// TodoDocument is the search-index representation of a todo. Deleted todos
// stay as tombstones so a late event cannot bring them back.
type TodoDocument struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	WorkspaceID   uuid.UUID  `json:"workspace_id"`
	Text          string     `json:"text"`
	TextUpdatedAt time.Time  `json:"text_updated_at"`
	Completed     bool       `json:"completed"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// TodoChange is what one todo event knows about the document. Nil fields
// are not touched.
type TodoChange struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	WorkspaceID uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   *time.Time
	Text        *string
	CompletedAt *time.Time
	DeletedAt   *time.Time
	At          time.Time
}

// Merge folds c into d. Merging the same set of changes in any order gives
// the same document: text follows the newest event, completion and deletion
// are sticky and keep their earliest time.
func (d TodoDocument) Merge(c TodoChange) TodoDocument {
	d.ID = c.ID

	if c.ProjectID != uuid.Nil {
		d.ProjectID = c.ProjectID
	}

	if c.WorkspaceID != uuid.Nil {
		d.WorkspaceID = c.WorkspaceID
	}

	if c.CreatedBy != uuid.Nil {
		d.CreatedBy = c.CreatedBy
	}

	if c.CreatedAt != nil {
		d.CreatedAt = *c.CreatedAt
	}

	if c.Text != nil && newerText(c.At, *c.Text, d.TextUpdatedAt, d.Text) {
		d.Text = *c.Text
		d.TextUpdatedAt = c.At
	}

	if c.CompletedAt != nil {
		d.Completed = true
		d.CompletedAt = earliest(d.CompletedAt, *c.CompletedAt)
	}

	if c.DeletedAt != nil {
		d.Deleted = true
		d.DeletedAt = earliest(d.DeletedAt, *c.DeletedAt)
	}

	if c.At.After(d.UpdatedAt) {
		d.UpdatedAt = c.At
	}

	return d
}

// newerText breaks timestamp ties on the text itself so that the winner does
// not depend on arrival order.
func newerText(at time.Time, text string, currentAt time.Time, current string) bool {
	if at.Equal(currentAt) {
		return text > current
	}

	return at.After(currentAt)
}

func earliest(current *time.Time, at time.Time) *time.Time {
	if current != nil && !at.Before(*current) {
		return current
	}

	return &at
}

// TodoSearchResult
// @Description Single hit of a todo search.
type TodoSearchResult struct {
	Todo      TodoDocument        `json:"todo"`
	Highlight map[string][]string `json:"highlight,omitempty"`
} // @Name TodoSearchResult
