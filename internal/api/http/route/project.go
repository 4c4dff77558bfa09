package route

import (
	"github.com/gin-gonic/gin"
)

type ProjectHandler interface {
	CreateProject(c *gin.Context)
	ListActivity(c *gin.Context)
}

type SearchHandler interface {
	SearchTodos(c *gin.Context)
}

func RegisterProjectRoutes(g *gin.RouterGroup, h ProjectHandler, todoHdl TodoHandler, searchHdl SearchHandler) {
	g.POST("", h.CreateProject)
	g.GET("/:project_id/activity", h.ListActivity)
	g.POST("/:project_id/todos", todoHdl.CreateTodo)

	if searchHdl != nil {
		g.GET("/:project_id/todos/search", searchHdl.SearchTodos)
	}
}
