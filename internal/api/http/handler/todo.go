package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
)

type TodoService interface {
	CreateTodo(ctx context.Context, userID, projectID uuid.UUID, text string) (*model.Todo, error)
	CompleteTodo(ctx context.Context, userID, todoID uuid.UUID) (*model.Todo, error)
	EditTodoText(ctx context.Context, userID, todoID uuid.UUID, text string) (*model.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID uuid.UUID) error
}

type TodoHandler struct {
	BaseHandler
	svc TodoService
}

func NewTodoHandler(svc TodoService) *TodoHandler {
	return &TodoHandler{
		svc: svc,
	}
}

// CreateTodo
// @Summary Create a todo.
// @Tags Todos
// @Security AccessToken
// @Accept json
// @Produce json
// @Param project_id path string true "Project UUID"
// @Param input body model.TodoTextRequest true "Todo text"
// @Success 201 {object} ResponseWithData{data=model.Todo} "Created"
// @Failure 400 {object} ResponseWithMessage "Invalid request"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Failure 404 {object} ResponseWithMessage "Project not found"
// @Router /projects/{project_id}/todos [post]
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	projectID, ok := bindProjectID(c)
	if !ok {
		return
	}

	var req model.TodoTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	todo, err := h.svc.CreateTodo(ctx, userID, projectID, req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   todo,
	})
}

// CompleteTodo
// @Summary Mark a todo completed.
// @Description Completing an already completed todo changes nothing.
// @Tags Todos
// @Security AccessToken
// @Produce json
// @Param todo_id path string true "Todo UUID"
// @Success 200 {object} ResponseWithData{data=model.Todo} "Success"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Failure 404 {object} ResponseWithMessage "Todo not found"
// @Router /todos/{todo_id}/complete [post]
func (h *TodoHandler) CompleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	todoID, ok := bindTodoID(c)
	if !ok {
		return
	}

	todo, err := h.svc.CompleteTodo(ctx, userID, todoID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   todo,
	})
}

// EditTodoText
// @Summary Change the text of a todo.
// @Tags Todos
// @Security AccessToken
// @Accept json
// @Produce json
// @Param todo_id path string true "Todo UUID"
// @Param input body model.TodoTextRequest true "New text"
// @Success 200 {object} ResponseWithData{data=model.Todo} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid request"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Failure 404 {object} ResponseWithMessage "Todo not found"
// @Router /todos/{todo_id} [patch]
func (h *TodoHandler) EditTodoText(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	todoID, ok := bindTodoID(c)
	if !ok {
		return
	}

	var req model.TodoTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	todo, err := h.svc.EditTodoText(ctx, userID, todoID, req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   todo,
	})
}

// DeleteTodo
// @Summary Delete a todo.
// @Tags Todos
// @Security AccessToken
// @Produce json
// @Param todo_id path string true "Todo UUID"
// @Success 200 {object} ResponseWithMessage "Deleted"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Failure 404 {object} ResponseWithMessage "Todo not found"
// @Router /todos/{todo_id} [delete]
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	todoID, ok := bindTodoID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteTodo(ctx, userID, todoID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "todo deleted",
	})
}

func bindTodoID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.TodoIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return uuid.Nil, false
	}

	todoID, err := uuid.Parse(uri.ID)
	if err != nil {
		badRequest(c, err)
		return uuid.Nil, false
	}

	return todoID, true
}
