package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskhub/internal/config"
)

type stub struct{}

func (stub) Ping(c *gin.Context)                { c.Status(http.StatusOK) }
func (stub) ProtectedPing(c *gin.Context)       { c.Status(http.StatusOK) }
func (stub) Health(c *gin.Context)              { c.Status(http.StatusOK) }
func (stub) ListNotifications(c *gin.Context)   { c.Status(http.StatusOK) }
func (stub) DismissNotification(c *gin.Context) { c.Status(http.StatusOK) }
func (stub) DismissAll(c *gin.Context)          { c.Status(http.StatusOK) }
func (stub) CreateProject(c *gin.Context)       { c.Status(http.StatusCreated) }
func (stub) ListActivity(c *gin.Context)        { c.Status(http.StatusOK) }
func (stub) CreateTodo(c *gin.Context)          { c.Status(http.StatusCreated) }
func (stub) CompleteTodo(c *gin.Context)        { c.Status(http.StatusOK) }
func (stub) EditTodoText(c *gin.Context)        { c.Status(http.StatusOK) }
func (stub) DeleteTodo(c *gin.Context)          { c.Status(http.StatusOK) }
func (stub) SearchTodos(c *gin.Context)         { c.Status(http.StatusOK) }
func (stub) Connect(c *gin.Context)             { c.Status(http.StatusOK) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTPServer.BasePath = "/api"

	return cfg
}

func serve(r http.Handler, method, path string) int {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	return rec.Code
}

func TestSetupRouter(t *testing.T) {
	s := stub{}
	r := SetupRouter(zap.NewNop(), testConfig(), nil, Handlers{
		Health:       s,
		Notification: s,
		Project:      s,
		Todo:         s,
		Search:       s,
		Realtime:     s,
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/health/ping"))
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/nothing"))
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPut, "/api/health/ping"))

	// everything below the health group needs a token
	for _, path := range []string{
		"/api/notifications",
		"/api/projects/00000000-0000-0000-0000-000000000001/activity",
		"/api/projects/00000000-0000-0000-0000-000000000001/todos/search",
		"/api/ws",
	} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path), path)
	}
}

func TestSetupRouter_WithoutSearch(t *testing.T) {
	s := stub{}
	r := SetupRouter(zap.NewNop(), testConfig(), nil, Handlers{
		Health:       s,
		Notification: s,
		Project:      s,
		Todo:         s,
		Realtime:     s,
	})

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/projects/00000000-0000-0000-0000-000000000001/todos/search"))
}
