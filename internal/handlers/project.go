package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/services"
)

// ProjectHandler coordinates project administration HTTP handlers.
type ProjectHandler struct {
	projectService  *services.ProjectService
	activityService *services.ActivityService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, activityService *services.ActivityService) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		activityService: activityService,
	}
}

// projectRequest is the shared create/update payload. Start and end are
// raw date strings validated by the service.
type projectRequest struct {
	Name             string   `json:"name" binding:"required"`
	CustomerID       uint64   `json:"customer_id" binding:"required"`
	Color            string   `json:"color"`
	Number           string   `json:"number"`
	Comment          string   `json:"comment"`
	Start            string   `json:"start"`
	End              string   `json:"end"`
	GlobalActivities *bool    `json:"global_activities"`
	Visible          *bool    `json:"visible"`
	TeamIDs          []uint64 `json:"team_ids"`
	ActivityIDs      []uint64 `json:"activity_ids"`
}

func (r projectRequest) toInput() services.ProjectInput {
	globalActivities := true
	if r.GlobalActivities != nil {
		globalActivities = *r.GlobalActivities
	}
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return services.ProjectInput{
		Name:             r.Name,
		CustomerID:       r.CustomerID,
		Color:            r.Color,
		Number:           r.Number,
		Comment:          r.Comment,
		Start:            r.Start,
		End:              r.End,
		GlobalActivities: globalActivities,
		Visible:          visible,
		TeamIDs:          r.TeamIDs,
		ActivityIDs:      r.ActivityIDs,
	}
}

// ListProjects returns the projects the caller may see.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListProjectsForViewer(viewer, visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns one project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ListProjectActivities returns the activities valid for booking on one
// project.
func (h *ProjectHandler) ListProjectActivities(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	activities, err := h.activityService.ListActivitiesForProject(id, visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTOs(activities))
}

// CreateProject creates a project with its team and allowed-activities
// sets. Admin only.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject edits a project and replaces its link sets. Admin only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project. Admin only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}
