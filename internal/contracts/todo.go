package contracts

import (
	"time"

	"github.com/google/uuid"
)

const (
	TodoCreatedType    = "TodoCreatedEventV1"
	TodoCompletedType  = "TodoCompletedEventV1"
	TodoTextEditedType = "TodoTextEditedEventV1"
	TodoDeletedType    = "TodoDeletedEventV1"
)

type TodoCreatedEventV1 struct {
	TodoID                   uuid.UUID `json:"todoId"`
	ProjectID                uuid.UUID `json:"projectId"`
	WorkspaceID              uuid.UUID `json:"workspaceId"`
	Text                     string    `json:"text"`
	CreatedByUserID          uuid.UUID `json:"createdByUserId"`
	CreatedByUserDisplayName string    `json:"createdByUserDisplayName"`
	At                       time.Time `json:"occurredAt"`
}

func (e *TodoCreatedEventV1) EventType() string      { return TodoCreatedType }
func (e *TodoCreatedEventV1) AggregateID() uuid.UUID { return e.TodoID }
func (e *TodoCreatedEventV1) Project() uuid.UUID     { return e.ProjectID }
func (e *TodoCreatedEventV1) Workspace() uuid.UUID   { return e.WorkspaceID }
func (e *TodoCreatedEventV1) OccurredAt() time.Time  { return e.At }
func (e *TodoCreatedEventV1) isEvent()               {}

func (e *TodoCreatedEventV1) Actor() (uuid.UUID, string) {
	return e.CreatedByUserID, e.CreatedByUserDisplayName
}

type TodoCompletedEventV1 struct {
	TodoID                     uuid.UUID `json:"todoId"`
	ProjectID                  uuid.UUID `json:"projectId"`
	WorkspaceID                uuid.UUID `json:"workspaceId"`
	Text                       string    `json:"text"`
	CompletedByUserID          uuid.UUID `json:"completedByUserId"`
	CompletedByUserDisplayName string    `json:"completedByUserDisplayName"`
	At                         time.Time `json:"occurredAt"`
}

func (e *TodoCompletedEventV1) EventType() string      { return TodoCompletedType }
func (e *TodoCompletedEventV1) AggregateID() uuid.UUID { return e.TodoID }
func (e *TodoCompletedEventV1) Project() uuid.UUID     { return e.ProjectID }
func (e *TodoCompletedEventV1) Workspace() uuid.UUID   { return e.WorkspaceID }
func (e *TodoCompletedEventV1) OccurredAt() time.Time  { return e.At }
func (e *TodoCompletedEventV1) isEvent()               {}

func (e *TodoCompletedEventV1) Actor() (uuid.UUID, string) {
	return e.CompletedByUserID, e.CompletedByUserDisplayName
}

type TodoTextEditedEventV1 struct {
	TodoID                  uuid.UUID `json:"todoId"`
	ProjectID               uuid.UUID `json:"projectId"`
	WorkspaceID             uuid.UUID `json:"workspaceId"`
	PreviousText            string    `json:"previousText"`
	Text                    string    `json:"text"`
	EditedByUserID          uuid.UUID `json:"editedByUserId"`
	EditedByUserDisplayName string    `json:"editedByUserDisplayName"`
	At                      time.Time `json:"occurredAt"`
}

func (e *TodoTextEditedEventV1) EventType() string      { return TodoTextEditedType }
func (e *TodoTextEditedEventV1) AggregateID() uuid.UUID { return e.TodoID }
func (e *TodoTextEditedEventV1) Project() uuid.UUID     { return e.ProjectID }
func (e *TodoTextEditedEventV1) Workspace() uuid.UUID   { return e.WorkspaceID }
func (e *TodoTextEditedEventV1) OccurredAt() time.Time  { return e.At }
func (e *TodoTextEditedEventV1) isEvent()               {}

func (e *TodoTextEditedEventV1) Actor() (uuid.UUID, string) {
	return e.EditedByUserID, e.EditedByUserDisplayName
}

type TodoDeletedEventV1 struct {
	TodoID                   uuid.UUID `json:"todoId"`
	ProjectID                uuid.UUID `json:"projectId"`
	WorkspaceID              uuid.UUID `json:"workspaceId"`
	Text                     string    `json:"text"`
	DeletedByUserID          uuid.UUID `json:"deletedByUserId"`
	DeletedByUserDisplayName string    `json:"deletedByUserDisplayName"`
	At                       time.Time `json:"occurredAt"`
}

func (e *TodoDeletedEventV1) EventType() string      { return TodoDeletedType }
func (e *TodoDeletedEventV1) AggregateID() uuid.UUID { return e.TodoID }
func (e *TodoDeletedEventV1) Project() uuid.UUID     { return e.ProjectID }
func (e *TodoDeletedEventV1) Workspace() uuid.UUID   { return e.WorkspaceID }
func (e *TodoDeletedEventV1) OccurredAt() time.Time  { return e.At }
func (e *TodoDeletedEventV1) isEvent()               {}

func (e *TodoDeletedEventV1) Actor() (uuid.UUID, string) {
	return e.DeletedByUserID, e.DeletedByUserDisplayName
}
