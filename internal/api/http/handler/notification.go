package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, params model.NotificationQueryParams) ([]model.UserNotification, int, error)
	DismissNotification(ctx context.Context, userID, notificationID uuid.UUID) (*model.UserNotification, error)
	DismissAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationHandler struct {
	BaseHandler
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// ListNotifications
// @Summary List own notifications.
// @Description Newest first. Dismissed notifications are hidden unless include_dismissed is set.
// @Tags Notifications
// @Security AccessToken
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Param include_dismissed query bool false "Include dismissed"
// @Success 200 {object} ResponseWithMetaAndData{data=[]model.UserNotification,_metadata=PaginationMetadata} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid query"
// @Failure 401 {object} ResponseWithMessage "Not authorized"
// @Failure 500 {object} ResponseWithMessage "Internal error"
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	var params model.NotificationQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	notifications, total, err := h.svc.ListNotifications(ctx, userID, params)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMetaAndData{
		Status: StatusSuccess,
		Data:   notifications,
		Metadata: PaginationMetadata{
			Offset:     params.Offset,
			Limit:      params.Limit,
			TotalCount: total,
		},
	})
}

// DismissNotification
// @Summary Dismiss a notification.
// @Description Dismissing twice keeps the first dismissal time.
// @Tags Notifications
// @Security AccessToken
// @Produce json
// @Param id path string true "Notification UUID"
// @Success 200 {object} ResponseWithData{data=model.UserNotification} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 401 {object} ResponseWithMessage "Not authorized"
// @Failure 404 {object} ResponseWithMessage "Notification not found"
// @Router /notifications/{id}/dismiss [post]
func (h *NotificationHandler) DismissNotification(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	var uri model.NotificationIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	notificationID, err := uuid.Parse(uri.ID)
	if err != nil {
		badRequest(c, err)
		return
	}

	notification, err := h.svc.DismissNotification(ctx, userID, notificationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   notification,
	})
}

// DismissAll
// @Summary Dismiss every active notification.
// @Tags Notifications
// @Security AccessToken
// @Produce json
// @Success 200 {object} ResponseWithData{data=int} "Number of dismissed notifications"
// @Failure 401 {object} ResponseWithMessage "Not authorized"
// @Router /notifications/dismiss-all [post]
func (h *NotificationHandler) DismissAll(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	n, err := h.svc.DismissAll(ctx, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   n,
	})
}
