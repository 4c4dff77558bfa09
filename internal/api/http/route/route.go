package route

import (
	"crypto/ecdsa"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/api/http/handler"
	"taskhub/internal/api/http/middleware"
	"taskhub/internal/config"
)

// Handlers groups everything SetupRouter mounts. Search is nil when
// elasticsearch is disabled.
type Handlers struct {
	Health       HealthHandler
	Notification NotificationHandler
	Project      ProjectHandler
	Todo         TodoHandler
	Search       SearchHandler
	Realtime     RealtimeHandler
}

func SetupRouter(
	log *zap.Logger,
	cfg *config.Config,
	publicKey *ecdsa.PublicKey,
	hdl Handlers,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.New()
	router.Use(gin.Recovery())

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request))
	router.Use(middleware.CORS(cfg.CORS))

	jwtAuthMiddleware := middleware.JWTAuth(publicKey)

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	basePath := router.Group(cfg.BasePath)

	docsPath := basePath.Group("/docs")
	RegisterDock(docsPath)

	healthPath := basePath.Group("/health")
	RegisterHealth(healthPath, hdl.Health, jwtAuthMiddleware)

	notificationPath := basePath.Group("/notifications", jwtAuthMiddleware)
	RegisterNotificationRoutes(notificationPath, hdl.Notification)

	projectPath := basePath.Group("/projects", jwtAuthMiddleware)
	RegisterProjectRoutes(projectPath, hdl.Project, hdl.Todo, hdl.Search)

	todoPath := basePath.Group("/todos", jwtAuthMiddleware)
	RegisterTodoRoutes(todoPath, hdl.Todo)

	wsPath := basePath.Group("/ws", jwtAuthMiddleware)
	RegisterRealtime(wsPath, hdl.Realtime)

	return router
}
