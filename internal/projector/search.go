package projector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskhub/internal/contracts"
	"taskhub/internal/model"
	"taskhub/internal/msg/broker"
)

type TodoIndex interface {
	Apply(ctx context.Context, change model.TodoChange) error
}

// SearchIndexer mirrors todo events into the search index. Every event is
// reduced to a TodoChange and merged, so replays and out of order arrivals
// converge on the same document.
type SearchIndexer struct {
	l     *zap.Logger
	index TodoIndex
}

func NewSearchIndexer(l *zap.Logger, index TodoIndex) *SearchIndexer {
	return &SearchIndexer{
		l:     l,
		index: index,
	}
}

func (s *SearchIndexer) Handle(ctx context.Context, msg broker.Message) error {
	evt, _, ok, err := decode(s.l, msg)
	if err != nil || !ok {
		return err
	}

	change, ok := todoChange(evt)
	if !ok {
		return nil
	}

	if err := s.index.Apply(ctx, change); err != nil {
		return fmt.Errorf("failed to sync todo %s: %w", evt.AggregateID(), err)
	}

	return nil
}

func todoChange(evt contracts.Event) (model.TodoChange, bool) {
	change := model.TodoChange{
		ID:          evt.AggregateID(),
		ProjectID:   evt.Project(),
		WorkspaceID: evt.Workspace(),
		At:          evt.OccurredAt(),
	}

	switch e := evt.(type) {
	case *contracts.TodoCreatedEventV1:
		change.CreatedBy = e.CreatedByUserID
		change.CreatedAt = &e.At
		change.Text = &e.Text
	case *contracts.TodoCompletedEventV1:
		change.Text = &e.Text
		change.CompletedAt = &e.At
	case *contracts.TodoTextEditedEventV1:
		change.Text = &e.Text
	case *contracts.TodoDeletedEventV1:
		change.DeletedAt = &e.At
	default:
		return model.TodoChange{}, false
	}

	return change, true
}
