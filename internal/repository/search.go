package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"taskhub/internal/model"
)

const (
	todoIndexName    = "todos"
	maxApplyAttempts = 5
)

var (
	ErrIndexConflict   = errors.New("todo document kept changing, giving up")
	errVersionConflict = errors.New("version conflict")
)

type TodoSearchRepository struct {
	es *elasticsearch.Client
}

func NewTodoSearchRepository(es *elasticsearch.Client) *TodoSearchRepository {
	return &TodoSearchRepository{es: es}
}

func (r *TodoSearchRepository) EnsureIndex(ctx context.Context) (err error) {
	exists, err := r.es.Indices.Exists([]string{todoIndexName}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}

	defer func() {
		if cErr := exists.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status on exists: %s", exists.Status())
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id":           { "type": "keyword" },
				"project_id":   { "type": "keyword" },
				"workspace_id": { "type": "keyword" },
				"created_by":   { "type": "keyword" },
				"text":         { "type": "text", "analyzer": "standard" },
				"completed":    { "type": "boolean" },
				"created_at":   { "type": "date" },
				"updated_at":   { "type": "date" },
				"completed_at": { "type": "date" },
				"text_updated_at": { "type": "date" },
				"deleted":      { "type": "boolean" },
				"deleted_at":   { "type": "date" }
			}
		}
	}`

	res, err := r.es.Indices.Create(todoIndexName, r.es.Indices.Create.WithBody(strings.NewReader(mapping)), r.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("index creation failed: %s", res.String())
	}

	return nil
}

// Apply merges change into the stored document. The write is conditional on
// the sequence number that was read, so a concurrent writer makes it retry
// against the fresh document instead of overwriting it.
func (r *TodoSearchRepository) Apply(ctx context.Context, change model.TodoChange) error {
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		current, err := r.get(ctx, change.ID)
		if err != nil {
			return err
		}

		doc := current.doc.Merge(change)

		err = r.put(ctx, doc, current)
		if errors.Is(err, errVersionConflict) {
			continue
		}

		return err
	}

	return fmt.Errorf("todo %s: %w", change.ID, ErrIndexConflict)
}

type storedTodo struct {
	doc         model.TodoDocument
	found       bool
	seqNo       int
	primaryTerm int
}

func (r *TodoSearchRepository) get(ctx context.Context, id uuid.UUID) (stored storedTodo, err error) {
	res, err := r.es.Get(todoIndexName, id.String(), r.es.Get.WithContext(ctx))
	if err != nil {
		return stored, err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return stored, nil
	}

	if res.IsError() {
		return stored, fmt.Errorf("failed to get todo: %s", res.String())
	}

	var body struct {
		Found       bool               `json:"found"`
		SeqNo       int                `json:"_seq_no"`
		PrimaryTerm int                `json:"_primary_term"`
		Source      model.TodoDocument `json:"_source"`
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return stored, fmt.Errorf("failed to decode todo: %w", err)
	}

	return storedTodo{
		doc:         body.Source,
		found:       body.Found,
		seqNo:       body.SeqNo,
		primaryTerm: body.PrimaryTerm,
	}, nil
}

func (r *TodoSearchRepository) put(ctx context.Context, doc model.TodoDocument, current storedTodo) (err error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal todo document: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		r.es.Index.WithDocumentID(doc.ID.String()),
		r.es.Index.WithContext(ctx),
	}

	if current.found {
		opts = append(opts, r.es.Index.WithIfSeqNo(current.seqNo), r.es.Index.WithIfPrimaryTerm(current.primaryTerm))
	} else {
		opts = append(opts, r.es.Index.WithOpType("create"))
	}

	res, err := r.es.Index(todoIndexName, bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.StatusCode == http.StatusConflict {
		return errVersionConflict
	}

	if res.IsError() {
		return fmt.Errorf("failed to index todo: %s", res.String())
	}

	return nil
}

func (r *TodoSearchRepository) Search(ctx context.Context, projectID uuid.UUID, query string, size int) (results []model.TodoSearchResult, err error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match": map[string]any{"text": query}},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"project_id": projectID.String()}},
				},
			},
		},
		"highlight": map[string]any{
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
			"fields":    map[string]any{"text": struct{}{}},
		},
		"sort": []any{"_score", map[string]any{"created_at": map[string]string{"order": "desc"}}},
	}

	if size > 0 {
		body["size"] = size
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(todoIndexName),
		r.es.Search.WithBody(buf),
	)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source    model.TodoDocument  `json:"_source"`
				Highlight map[string][]string `json:"highlight,omitempty"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]model.TodoSearchResult, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		out = append(out, model.TodoSearchResult{
			Todo:      hit.Source,
			Highlight: hit.Highlight,
		})
	}

	return out, nil
}
