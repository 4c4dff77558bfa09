package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/apperrors"
	"taskhub/internal/model"
)

const (
	StatusErr           = "error"
	StatusSuccess       = "success"
	StatusNotAvailable  = "not available"
	StatusNotPermitted  = "not permitted"
	StatusForbidden     = "forbidden"
	StatusOK            = "ok"
	StatusInvalidInput  = "invalid_input"
	StatusInternalError = "internal_error"
)

type BaseHandler struct{}

func (h *BaseHandler) GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDValue, exists := c.Get(model.UserUIDKey)
	if !exists {
		return uuid.Nil, apperrors.ErrContextValueDoesNotExist
	}

	userID, ok := userIDValue.(string)
	if !ok {
		return uuid.Nil, apperrors.ErrContextValueInvalidType
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, apperrors.ErrContextValueInvalidType
	}

	return uid, nil
}

// MustUserID writes 401 and returns false when the request carries no usable user id.
func (h *BaseHandler) MustUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: "user not authorized",
		})

		return uuid.Nil, false
	}

	return userID, true
}

// ResponseWithData
// @Description Common success/error response carrying arbitrary data.
type ResponseWithData struct {
	Status string `json:"status"` // Request outcome
	Data   any    `json:"data"`   // Payload
} // @Name _ResponseWithData

// ResponseWithMetaAndData
// @Description Common response with data plus pagination or other metadata.
type ResponseWithMetaAndData struct {
	Status   string `json:"status"`    // Request outcome
	Data     any    `json:"data"`      // Payload
	Metadata any    `json:"_metadata"` // Metadata
} // @Name _ResponseWithMetaAndData

// ResponseWithMessage
// @Description Common response carrying only a human readable message.
type ResponseWithMessage struct {
	Status  string `json:"status"`  // Request outcome
	Message string `json:"message"` // Human readable message
} // @Name _ResponseWithMessage

// PaginationMetadata
// @Description Offset/limit pagination.
type PaginationMetadata struct {
	Offset     int `example:"0"   json:"offset"`
	Limit      int `example:"50"  json:"limit"`
	TotalCount int `example:"200" json:"totalCount"`
} // @Name _PaginationMetadata

func NoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "method not allowed on this endpoint",
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "page not found",
	})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotProjectMember):
		c.JSON(http.StatusForbidden, ResponseWithMessage{
			Status:  StatusForbidden,
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrProjectNotFound),
		errors.Is(err, apperrors.ErrTodoNotFound),
		errors.Is(err, apperrors.ErrNotificationNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrEmptyText):
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusInvalidInput,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusInternalError,
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ResponseWithMessage{
		Status:  StatusInvalidInput,
		Message: err.Error(),
	})
}
