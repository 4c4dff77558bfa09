package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

// fakeTodoIndex serves the document get and index calls of one index with
// elasticsearch's optimistic concurrency rules.
type fakeTodoIndex struct {
	mu          sync.Mutex
	source      []byte
	seqNo       int
	conflictsTo int
	writes      []indexWrite
}

type indexWrite struct {
	opType string
	ifSeq  string
}

func (f *fakeTodoIndex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		if f.source == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"found":false}`)

			return
		}

		_, _ = io.WriteString(w, `{"found":true,"_seq_no":`+strconv.Itoa(f.seqNo)+`,"_primary_term":1,"_source":`+string(f.source)+`}`)
	case http.MethodPut, http.MethodPost:
		q := r.URL.Query()
		f.writes = append(f.writes, indexWrite{opType: q.Get("op_type"), ifSeq: q.Get("if_seq_no")})

		if f.conflictsTo > 0 {
			f.conflictsTo--
			// someone else wrote in between
			f.seqNo++
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":{"type":"version_conflict_engine_exception"}}`)

			return
		}

		if ifSeq := q.Get("if_seq_no"); ifSeq != "" && ifSeq != strconv.Itoa(f.seqNo) {
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":{"type":"version_conflict_engine_exception"}}`)

			return
		}

		body, _ := io.ReadAll(r.Body)
		f.source = body
		f.seqNo++

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeTodoIndex) stored(t *testing.T) model.TodoDocument {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	var doc model.TodoDocument
	require.NoError(t, json.Unmarshal(f.source, &doc))

	return doc
}

func newSearchRepo(t *testing.T, index *fakeTodoIndex) *TodoSearchRepository {
	t.Helper()

	srv := httptest.NewServer(index)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewTodoSearchRepository(es)
}

func TestTodoSearchRepository_ApplyCreatesThenMergesConditionally(t *testing.T) {
	index := &fakeTodoIndex{}
	repo := newSearchRepo(t, index)
	ctx := context.Background()

	id := uuid.New()
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	completed := created.Add(time.Minute)
	text := "Ship it"

	require.NoError(t, repo.Apply(ctx, model.TodoChange{ID: id, Text: &text, CreatedAt: &created, At: created}))
	require.NoError(t, repo.Apply(ctx, model.TodoChange{ID: id, CompletedAt: &completed, At: completed}))

	doc := index.stored(t)
	assert.Equal(t, "Ship it", doc.Text)
	assert.True(t, doc.Completed)
	assert.True(t, doc.UpdatedAt.Equal(completed))

	require.Len(t, index.writes, 2)
	assert.Equal(t, "create", index.writes[0].opType)
	assert.Equal(t, "1", index.writes[1].ifSeq)
}

func TestTodoSearchRepository_ApplyRetriesOnConflict(t *testing.T) {
	text := "Ship it"
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	source, err := json.Marshal(model.TodoDocument{ID: id, Text: text, TextUpdatedAt: at})
	require.NoError(t, err)

	index := &fakeTodoIndex{source: source, seqNo: 4, conflictsTo: 1}
	repo := newSearchRepo(t, index)

	deletedAt := at.Add(time.Hour)
	require.NoError(t, repo.Apply(context.Background(), model.TodoChange{ID: id, DeletedAt: &deletedAt, At: deletedAt}))

	require.Len(t, index.writes, 2)
	assert.Equal(t, "4", index.writes[0].ifSeq)
	assert.Equal(t, "5", index.writes[1].ifSeq, "the retry writes against the fresh sequence number")
	assert.True(t, index.stored(t).Deleted)
	assert.Equal(t, text, index.stored(t).Text)
}

func TestTodoSearchRepository_ApplyGivesUp(t *testing.T) {
	index := &fakeTodoIndex{source: []byte(`{}`), conflictsTo: maxApplyAttempts}
	repo := newSearchRepo(t, index)

	err := repo.Apply(context.Background(), model.TodoChange{ID: uuid.New(), At: time.Now()})
	assert.ErrorIs(t, err, ErrIndexConflict)
}
