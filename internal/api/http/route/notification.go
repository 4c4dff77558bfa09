package route

import (
	"github.com/gin-gonic/gin"
)

type NotificationHandler interface {
	ListNotifications(c *gin.Context)
	DismissNotification(c *gin.Context)
	DismissAll(c *gin.Context)
}

func RegisterNotificationRoutes(g *gin.RouterGroup, h NotificationHandler) {
	g.GET("", h.ListNotifications)
	g.POST("/dismiss-all", h.DismissAll)
	g.POST("/:id/dismiss", h.DismissNotification)
}
