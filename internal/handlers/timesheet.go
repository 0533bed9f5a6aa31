package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/services"
	"github.com/mkessler/timetrack/internal/utils"
	"github.com/mkessler/timetrack/internal/validation"
)

// TimesheetHandler coordinates timesheet HTTP handlers.
type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
	}
}

// timesheetRequest is the shared create/update payload. Start and end
// are raw date strings validated by the service; an empty end starts a
// running entry.
type timesheetRequest struct {
	Start      string   `json:"start" binding:"required"`
	End        string   `json:"end"`
	ProjectID  uint64   `json:"project_id" binding:"required"`
	ActivityID uint64   `json:"activity_id" binding:"required"`
	Comment    string   `json:"comment"`
	TagIDs     []uint64 `json:"tag_ids"`
}

func (r timesheetRequest) toInput() services.TimesheetInput {
	return services.TimesheetInput{
		Start:      r.Start,
		End:        r.End,
		ProjectID:  r.ProjectID,
		ActivityID: r.ActivityID,
		Comment:    r.Comment,
		TagIDs:     r.TagIDs,
	}
}

// parseFilter reads the listing filter from query parameters. User
// narrowing beyond the caller's scope is applied by the service.
func parseFilter(c *gin.Context) (repository.TimesheetFilter, bool) {
	var filter repository.TimesheetFilter

	for _, raw := range c.QueryArray("user") {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user filter")
			return filter, false
		}
		filter.UserIDs = append(filter.UserIDs, id)
	}

	for name, target := range map[string]**uint64{
		"project":  &filter.ProjectID,
		"activity": &filter.ActivityID,
		"customer": &filter.CustomerID,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid %s filter", name))
			return filter, false
		}
		*target = &id
	}

	if raw := c.Query("from"); raw != "" {
		from, ok := validation.ParseDateTime(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid from filter")
			return filter, false
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, ok := validation.ParseDateTime(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid to filter")
			return filter, false
		}
		filter.To = &to
	}
	filter.RunningOnly = c.Query("running") == "1"

	return filter, true
}

// ListTimesheets returns a page of entries the caller may see.
func (h *TimesheetHandler) ListTimesheets(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Page, filter.PageSize = parsePagination(c)

	sheets, total, err := h.timesheetService.ListTimesheetsForViewer(viewer, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetListResponse(sheets, filter.Page, filter.PageSize, total))
}

// GetTimesheet returns one entry. The row is already loaded and checked
// by RequireTimesheetAccess.
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	ts, ok := timesheetFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(ts))
}

// CreateTimesheet records a new entry for the caller. Any running
// entries of the caller are force-stopped in the same transaction.
func (h *TimesheetHandler) CreateTimesheet(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req timesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ts, err := h.timesheetService.CreateTimesheet(userID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetDTO(*ts))
}

// UpdateTimesheet edits an entry. Access is checked by
// RequireTimesheetAccess.
func (h *TimesheetHandler) UpdateTimesheet(c *gin.Context) {
	ts, ok := timesheetFromContext(c)
	if !ok {
		return
	}

	var req timesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.timesheetService.UpdateTimesheet(ts.ID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*updated))
}

// DeleteTimesheet removes an entry. Access is checked by
// RequireTimesheetAccess.
func (h *TimesheetHandler) DeleteTimesheet(c *gin.Context) {
	ts, ok := timesheetFromContext(c)
	if !ok {
		return
	}

	if err := h.timesheetService.DeleteTimesheet(ts.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Timesheet deleted successfully",
	})
}

// StopTimesheet closes a running entry at the current minute.
func (h *TimesheetHandler) StopTimesheet(c *gin.Context) {
	ts, ok := timesheetFromContext(c)
	if !ok {
		return
	}

	stopped, err := h.timesheetService.StopTimesheet(ts.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*stopped))
}

// RestartTimesheet starts a fresh running entry for the caller copying
// project, activity, comment and tags of the given entry.
func (h *TimesheetHandler) RestartTimesheet(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	ts, ok := timesheetFromContext(c)
	if !ok {
		return
	}

	restarted, err := h.timesheetService.RestartTimesheet(ts.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetDTO(*restarted))
}

// GetActiveTimesheet returns the caller's running entry, 404 when there
// is none.
func (h *TimesheetHandler) GetActiveTimesheet(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	ts, err := h.timesheetService.GetActiveTimesheet(userID)
	if err != nil {
		if err == services.ErrTimesheetNotRunning {
			apierrors.NotFound(c, "No running timesheet")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*ts))
}

// ExportTimesheets streams the filtered entries as CSV, unpaginated.
func (h *TimesheetHandler) ExportTimesheets(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	sheets, _, err := h.timesheetService.ListTimesheetsForViewer(viewer, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="timesheets.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "user_id", "project", "activity", "start", "end", "duration", "comment", "tags"})
	for _, ts := range sheets {
		_ = w.Write(csvRecord(ts))
	}
	w.Flush()
}

func csvRecord(ts models.Timesheet) []string {
	end := ""
	if ts.End != nil {
		end = ts.End.Format("2006-01-02 15:04")
	}
	duration := ""
	if ts.Duration != nil {
		duration = utils.FormatDuration(*ts.Duration)
	}
	tags := make([]string, len(ts.Tags))
	for i, tag := range ts.Tags {
		tags[i] = tag.Name
	}
	return []string{
		strconv.FormatUint(ts.ID, 10),
		strconv.FormatUint(ts.UserID, 10),
		ts.Project.Name,
		ts.Activity.Name,
		ts.Start.Format("2006-01-02 15:04"),
		end,
		duration,
		ts.Comment,
		strings.Join(tags, ","),
	}
}

func timesheetFromContext(c *gin.Context) (models.Timesheet, bool) {
	value, exists := c.Get("timesheet")
	if !exists {
		apierrors.InternalError(c, "Timesheet not found in context")
		return models.Timesheet{}, false
	}
	ts, ok := value.(models.Timesheet)
	if !ok {
		apierrors.InternalError(c, "Invalid timesheet data")
		return models.Timesheet{}, false
	}
	return ts, true
}
