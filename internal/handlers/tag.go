package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/services"
)

// TagHandler coordinates tag administration HTTP handlers.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// tagRequest is the shared create/update payload.
type tagRequest struct {
	Name    string `json:"name" binding:"required"`
	Color   string `json:"color"`
	Visible *bool  `json:"visible"`
}

func (r tagRequest) toInput() services.TagInput {
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return services.TagInput{
		Name:    r.Name,
		Color:   r.Color,
		Visible: visible,
	}
}

// ListTags returns tags; tags are not team scoped.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

// GetTag returns one tag.
func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	tag, err := h.tagService.GetTag(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// CreateTag creates a tag. Admin only.
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.CreateTag(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// UpdateTag edits a tag. Admin only.
func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.UpdateTag(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// DeleteTag removes a tag and its timesheet links. Admin only.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tag deleted successfully",
	})
}
