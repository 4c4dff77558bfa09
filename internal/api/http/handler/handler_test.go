package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(model.UserUIDKey, userID.String())
		}

		c.Next()
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

type fakeTodos struct {
	err      error
	gotText  string
	gotTodo  uuid.UUID
	gotProj  uuid.UUID
	returned *model.Todo
}

func (f *fakeTodos) CreateTodo(_ context.Context, _, projectID uuid.UUID, text string) (*model.Todo, error) {
	f.gotProj, f.gotText = projectID, text
	return f.returned, f.err
}

func (f *fakeTodos) CompleteTodo(_ context.Context, _, todoID uuid.UUID) (*model.Todo, error) {
	f.gotTodo = todoID
	return f.returned, f.err
}

func (f *fakeTodos) EditTodoText(_ context.Context, _, todoID uuid.UUID, text string) (*model.Todo, error) {
	f.gotTodo, f.gotText = todoID, text
	return f.returned, f.err
}

func (f *fakeTodos) DeleteTodo(_ context.Context, _, todoID uuid.UUID) error {
	f.gotTodo = todoID
	return f.err
}

func todoRouter(userID uuid.UUID, svc TodoService) *gin.Engine {
	h := NewTodoHandler(svc)

	r := gin.New()
	r.Use(withUser(userID))
	r.POST("/projects/:project_id/todos", h.CreateTodo)
	r.POST("/todos/:todo_id/complete", h.CompleteTodo)
	r.PATCH("/todos/:todo_id", h.EditTodoText)
	r.DELETE("/todos/:todo_id", h.DeleteTodo)

	return r
}

func TestTodoHandler_CreateTodo(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name   string
		user   uuid.UUID
		path   string
		body   any
		svcErr error
		status int
	}{
		{
			name:   "created",
			user:   uuid.New(),
			path:   "/projects/" + projectID.String() + "/todos",
			body:   model.TodoTextRequest{Text: "Ship it"},
			status: http.StatusCreated,
		},
		{
			name:   "anonymous",
			path:   "/projects/" + projectID.String() + "/todos",
			body:   model.TodoTextRequest{Text: "Ship it"},
			status: http.StatusUnauthorized,
		},
		{
			name:   "bad project id",
			user:   uuid.New(),
			path:   "/projects/not-a-uuid/todos",
			body:   model.TodoTextRequest{Text: "Ship it"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing text",
			user:   uuid.New(),
			path:   "/projects/" + projectID.String() + "/todos",
			body:   map[string]string{},
			status: http.StatusBadRequest,
		},
		{
			name:   "not a member",
			user:   uuid.New(),
			path:   "/projects/" + projectID.String() + "/todos",
			body:   model.TodoTextRequest{Text: "Ship it"},
			svcErr: apperrors.ErrNotProjectMember,
			status: http.StatusForbidden,
		},
		{
			name:   "project missing",
			user:   uuid.New(),
			path:   "/projects/" + projectID.String() + "/todos",
			body:   model.TodoTextRequest{Text: "Ship it"},
			svcErr: apperrors.ErrProjectNotFound,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTodos{err: tt.svcErr, returned: &model.Todo{ID: uuid.New(), ProjectID: projectID, Text: "Ship it"}}

			rec := do(t, todoRouter(tt.user, svc), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusCreated {
				assert.Equal(t, projectID, svc.gotProj)
				assert.Equal(t, "Ship it", svc.gotText)
			}
		})
	}
}

func TestTodoHandler_CompleteEditDelete(t *testing.T) {
	todoID := uuid.New()
	svc := &fakeTodos{returned: &model.Todo{ID: todoID, Completed: true}}
	r := todoRouter(uuid.New(), svc)

	rec := do(t, r, http.MethodPost, "/todos/"+todoID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, todoID, svc.gotTodo)

	var resp struct {
		Status string     `json:"status"`
		Data   model.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.True(t, resp.Data.Completed)

	rec = do(t, r, http.MethodPatch, "/todos/"+todoID.String(), model.TodoTextRequest{Text: "Ship it twice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ship it twice", svc.gotText)

	rec = do(t, r, http.MethodDelete, "/todos/"+todoID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.err = apperrors.ErrTodoNotFound
	rec = do(t, r, http.MethodDelete, "/todos/"+todoID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.err = errors.New("boom")
	rec = do(t, r, http.MethodPost, "/todos/"+todoID.String()+"/complete", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeNotifications struct {
	list      []model.UserNotification
	total     int
	dismissed *model.UserNotification
	err       error
	params    model.NotificationQueryParams
}

func (f *fakeNotifications) ListNotifications(_ context.Context, _ uuid.UUID, params model.NotificationQueryParams) ([]model.UserNotification, int, error) {
	f.params = params
	return f.list, f.total, f.err
}

func (f *fakeNotifications) DismissNotification(_ context.Context, _, _ uuid.UUID) (*model.UserNotification, error) {
	return f.dismissed, f.err
}

func (f *fakeNotifications) DismissAll(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(f.list)), f.err
}

func notificationRouter(userID uuid.UUID, svc NotificationService) *gin.Engine {
	h := NewNotificationHandler(svc)

	r := gin.New()
	r.Use(withUser(userID))
	r.GET("/notifications", h.ListNotifications)
	r.POST("/notifications/dismiss-all", h.DismissAll)
	r.POST("/notifications/:id/dismiss", h.DismissNotification)

	return r
}

func TestNotificationHandler_List(t *testing.T) {
	userID := uuid.New()
	svc := &fakeNotifications{
		list: []model.UserNotification{
			{ID: uuid.New(), UserID: userID, Title: "Todo Completed", OccurredAt: time.Now().UTC()},
		},
		total: 7,
	}

	rec := do(t, notificationRouter(userID, svc), http.MethodGet, "/notifications?limit=1&offset=2&include_dismissed=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, svc.params.Limit)
	assert.Equal(t, 2, svc.params.Offset)
	assert.True(t, svc.params.IncludeDismissed)

	var resp struct {
		Data     []model.UserNotification `json:"data"`
		Metadata PaginationMetadata       `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 7, resp.Metadata.TotalCount)
}

func TestNotificationHandler_ListDefaultsAndValidation(t *testing.T) {
	svc := &fakeNotifications{}
	r := notificationRouter(uuid.New(), svc)

	rec := do(t, r, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, svc.params.Limit)

	rec = do(t, r, http.MethodGet, "/notifications?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandler_Dismiss(t *testing.T) {
	now := time.Now().UTC()
	svc := &fakeNotifications{dismissed: &model.UserNotification{ID: uuid.New(), IsDismissed: true, DismissedAt: &now}}
	r := notificationRouter(uuid.New(), svc)

	rec := do(t, r, http.MethodPost, "/notifications/"+svc.dismissed.ID.String()+"/dismiss", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/notifications/nope/dismiss", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = apperrors.ErrNotificationNotFound
	rec = do(t, r, http.MethodPost, "/notifications/"+uuid.NewString()+"/dismiss", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) IsOK(context.Context) (bool, error) { return f.err == nil, f.err }

func TestHealthHandler(t *testing.T) {
	r := gin.New()

	ok := NewHealthHandler(zap.NewNop(), fakePinger{})
	down := NewHealthHandler(zap.NewNop(), fakePinger{err: errors.New("connection refused")})

	r.GET("/ping", ok.Ping)
	r.GET("/ok", ok.Health)
	r.GET("/down", down.Health)
	r.GET("/protected", withUser(uuid.New()), ok.ProtectedPing)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/down", nil).Code)

	rec := do(t, r, http.MethodGet, "/protected", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong + ")
}
