package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/services"
)

// ActivityHandler coordinates activity administration HTTP handlers.
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// activityRequest is the shared create/update payload. A null project_id
// makes the activity global.
type activityRequest struct {
	Name      string   `json:"name" binding:"required"`
	Color     string   `json:"color"`
	Number    string   `json:"number"`
	Comment   string   `json:"comment"`
	ProjectID *uint64  `json:"project_id"`
	Visible   *bool    `json:"visible"`
	TeamIDs   []uint64 `json:"team_ids"`
}

func (r activityRequest) toInput() services.ActivityInput {
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return services.ActivityInput{
		Name:      r.Name,
		Color:     r.Color,
		Number:    r.Number,
		Comment:   r.Comment,
		ProjectID: r.ProjectID,
		Visible:   visible,
		TeamIDs:   r.TeamIDs,
	}
}

// ListActivities returns the activities the caller may see.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	activities, err := h.activityService.ListActivitiesForViewer(viewer, visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTOs(activities))
}

// GetActivity returns one activity.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTO(*activity))
}

// CreateActivity creates an activity with its team scoping set. Admin
// only.
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.CreateActivity(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToActivityDTO(*activity))
}

// UpdateActivity edits an activity and replaces its team set. Admin
// only.
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.UpdateActivity(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTO(*activity))
}

// DeleteActivity removes an activity. Admin only.
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.activityService.DeleteActivity(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Activity deleted successfully",
	})
}
