package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/services"
)

// TeamHandler coordinates team administration HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// teamRequest is the shared create/update payload.
type teamRequest struct {
	Name    string `json:"name" binding:"required"`
	Color   string `json:"color"`
	Members []struct {
		UserID   uint64 `json:"user_id" binding:"required"`
		TeamLead bool   `json:"teamlead"`
	} `json:"members"`
}

func (r teamRequest) toInput() services.TeamInput {
	input := services.TeamInput{
		Name:  r.Name,
		Color: r.Color,
	}
	for _, m := range r.Members {
		input.Members = append(input.Members, services.TeamMemberInput{
			UserID:   m.UserID,
			TeamLead: m.TeamLead,
		})
	}
	return input
}

// ListTeams returns every team for admins and led teams for team leads.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teams, err := h.teamService.ListTeamsForViewer(viewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams))
}

// GetTeam returns one team with its members.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// CreateTeam creates a team with its membership set. Admin only.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// UpdateTeam edits a team and replaces its membership set. Admin only.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.UpdateTeam(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// DeleteTeam removes a team together with its scoping links. Admin only.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}
