package route

import (
	"github.com/gin-gonic/gin"
)

type RealtimeHandler interface {
	Connect(c *gin.Context)
}

func RegisterRealtime(g *gin.RouterGroup, h RealtimeHandler) {
	g.GET("", h.Connect)
}
