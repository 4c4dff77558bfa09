package contracts

import (
	"time"

	"github.com/google/uuid"
)

const ProjectCreatedType = "ProjectCreatedEventV1"

type ProjectCreatedEventV1 struct {
	ProjectID                uuid.UUID `json:"projectId"`
	WorkspaceID              uuid.UUID `json:"workspaceId"`
	Name                     string    `json:"name"`
	CreatedByUserID          uuid.UUID `json:"createdByUserId"`
	CreatedByUserDisplayName string    `json:"createdByUserDisplayName"`
	At                       time.Time `json:"occurredAt"`
}

func (e *ProjectCreatedEventV1) EventType() string      { return ProjectCreatedType }
func (e *ProjectCreatedEventV1) AggregateID() uuid.UUID { return e.ProjectID }
func (e *ProjectCreatedEventV1) Project() uuid.UUID     { return e.ProjectID }
func (e *ProjectCreatedEventV1) Workspace() uuid.UUID   { return e.WorkspaceID }
func (e *ProjectCreatedEventV1) OccurredAt() time.Time  { return e.At }
func (e *ProjectCreatedEventV1) isEvent()               {}

func (e *ProjectCreatedEventV1) Actor() (uuid.UUID, string) {
	return e.CreatedByUserID, e.CreatedByUserDisplayName
}
