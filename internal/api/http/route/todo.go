package route

import (
	"github.com/gin-gonic/gin"
)

type TodoHandler interface {
	CreateTodo(c *gin.Context)
	CompleteTodo(c *gin.Context)
	EditTodoText(c *gin.Context)
	DeleteTodo(c *gin.Context)
}

func RegisterTodoRoutes(g *gin.RouterGroup, h TodoHandler) {
	g.POST("/:todo_id/complete", h.CompleteTodo)
	g.PATCH("/:todo_id", h.EditTodoText)
	g.DELETE("/:todo_id", h.DeleteTodo)
}
