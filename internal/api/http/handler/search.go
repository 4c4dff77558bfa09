package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
)

type SearchService interface {
	SearchTodos(ctx context.Context, userID, projectID uuid.UUID, query string, size int) ([]model.TodoSearchResult, error)
}

type SearchHandler struct {
	BaseHandler
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{
		svc: svc,
	}
}

type searchQuery struct {
	Query string `form:"q"`
	Size  int    `form:"size" binding:"min=0,max=100"`
}

// SearchTodos
// @Summary Full-text search over the todos of a project.
// @Tags Search
// @Security AccessToken
// @Produce json
// @Param project_id path string true "Project UUID"
// @Param q query string true "Query"
// @Param size query int false "Max hits" default(20)
// @Success 200 {object} ResponseWithData{data=[]model.TodoSearchResult} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid request"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Router /projects/{project_id}/todos/search [get]
func (h *SearchHandler) SearchTodos(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	projectID, ok := bindProjectID(c)
	if !ok {
		return
	}

	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.svc.SearchTodos(ctx, userID, projectID, q.Query, q.Size)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   results,
	})
}
