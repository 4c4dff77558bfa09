// Package contracts holds the versioned payload schemas of the domain facts
// that travel through the outbox. Payloads are immutable once published: a
// breaking change means a new V2 type, never an edit of an existing one.
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownEventType = errors.New("unknown event type")

// Event is the closed set of facts the pipeline knows about. The unexported
// marker keeps implementations inside this package.
type Event interface {
	EventType() string
	AggregateID() uuid.UUID
	Project() uuid.UUID
	Workspace() uuid.UUID
	Actor() (id uuid.UUID, displayName string)
	OccurredAt() time.Time

	isEvent()
}

type decoder func(body []byte) (Event, error)

var registry = map[string]decoder{
	TodoCreatedType:    decodeAs[TodoCreatedEventV1],
	TodoCompletedType:  decodeAs[TodoCompletedEventV1],
	TodoTextEditedType: decodeAs[TodoTextEditedEventV1],
	TodoDeletedType:    decodeAs[TodoDeletedEventV1],
	ProjectCreatedType: decodeAs[ProjectCreatedEventV1],
}

// Decode turns a broker body into its typed event. Types that are not
// registered yield ErrUnknownEventType so consumers can skip them.
func Decode(eventType string, body []byte) (Event, error) {
	decode, ok := registry[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}

	evt, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
	}

	return evt, nil
}

// Known reports whether eventType is part of the registry.
func Known(eventType string) bool {
	_, ok := registry[eventType]
	return ok
}

// Types returns every registered event type, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

func decodeAs[T any, P interface {
	*T
	Event
}](body []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}

	return P(&v), nil
}
