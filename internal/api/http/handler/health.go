package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthService interface {
	IsOK(ctx context.Context) (bool, error)
}

type HealthHandler struct {
	BaseHandler

	log *zap.Logger
	svc HealthService
}

func NewHealthHandler(log *zap.Logger, svc HealthService) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// Ping
// @Summary Service liveness.
// @Description Returns "pong".
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Router /health/ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "pong",
	})
}

// ProtectedPing
// @Summary Liveness behind JWT.
// @Description Returns "pong" plus the uuid of the caller.
// @Tags Health
// @Produce json
// @Security AccessToken
// @Success 200 {object} ResponseWithMessage "Success + id"
// @Failure 401 {object} ResponseWithMessage "Invalid or missing token"
// @Router /health/protected/ping [get]
func (h *HealthHandler) ProtectedPing(c *gin.Context) {
	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("pong + %s", userID.String()),
	})
}

// Health
// @Summary Readiness.
// @Description Checks the database connection.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 503 {object} ResponseWithMessage "Database unavailable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.svc.IsOK(ctx); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))

		c.JSON(http.StatusServiceUnavailable, ResponseWithMessage{
			Status:  StatusNotAvailable,
			Message: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusOK,
		Message: "database is reachable",
	})
}
