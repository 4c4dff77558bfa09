package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
)

type ProjectService interface {
	CreateProject(ctx context.Context, userID uuid.UUID, req model.ProjectCreateRequest) (*model.Project, error)
}

type ActivityService interface {
	ListActivity(ctx context.Context, userID, projectID uuid.UUID, params model.ActivityQueryParams) ([]model.ProjectActivity, error)
}

type ProjectHandler struct {
	BaseHandler
	projectSvc  ProjectService
	activitySvc ActivityService
}

func NewProjectHandler(projectSvc ProjectService, activitySvc ActivityService) *ProjectHandler {
	return &ProjectHandler{
		projectSvc:  projectSvc,
		activitySvc: activitySvc,
	}
}

// CreateProject
// @Summary Create a project.
// @Description The caller and every listed member join the project.
// @Tags Projects
// @Security AccessToken
// @Accept json
// @Produce json
// @Param input body model.ProjectCreateRequest true "Project"
// @Success 201 {object} ResponseWithData{data=model.Project} "Created"
// @Failure 400 {object} ResponseWithMessage "Invalid body"
// @Failure 401 {object} ResponseWithMessage "Not authorized"
// @Failure 500 {object} ResponseWithMessage "Internal error"
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	var req model.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.projectSvc.CreateProject(ctx, userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   project,
	})
}

// ListActivity
// @Summary Project activity feed.
// @Description Newest first, paged by the before cursor.
// @Tags Projects
// @Security AccessToken
// @Produce json
// @Param project_id path string true "Project UUID"
// @Param limit query int false "Page size" default(50)
// @Param before query string false "RFC3339 cursor"
// @Success 200 {object} ResponseWithData{data=[]model.ProjectActivity} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid request"
// @Failure 403 {object} ResponseWithMessage "Not a member"
// @Failure 404 {object} ResponseWithMessage "Project not found"
// @Router /projects/{project_id}/activity [get]
func (h *ProjectHandler) ListActivity(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.MustUserID(c)
	if !ok {
		return
	}

	projectID, ok := bindProjectID(c)
	if !ok {
		return
	}

	var params model.ActivityQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	activities, err := h.activitySvc.ListActivity(ctx, userID, projectID, params)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   activities,
	})
}

func bindProjectID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.ProjectIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return uuid.Nil, false
	}

	projectID, err := uuid.Parse(uri.ID)
	if err != nil {
		badRequest(c, err)
		return uuid.Nil, false
	}

	return projectID, true
}
