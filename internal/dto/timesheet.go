package dto

import (
	"time"

	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/utils"
)

// TimesheetDTO represents a timesheet entry in API responses. Duration
// is minutes, DurationText the same value rendered as HH:MM; both are
// null while the entry is running.
type TimesheetDTO struct {
	ID           uint64       `json:"id"`
	UserID       uint64       `json:"user_id"`
	ProjectID    uint64       `json:"project_id"`
	ActivityID   uint64       `json:"activity_id"`
	Start        time.Time    `json:"start"`
	End          *time.Time   `json:"end"`
	Duration     *int         `json:"duration"`
	DurationText *string      `json:"duration_text"`
	Comment      string       `json:"comment"`
	ModifiedAt   time.Time    `json:"modified_at"`
	User         *UserDTO     `json:"user,omitempty"`
	Project      *ProjectDTO  `json:"project,omitempty"`
	Activity     *ActivityDTO `json:"activity,omitempty"`
	Tags         []TagDTO     `json:"tags,omitempty"`
}

// TimesheetListResponse represents a paginated list of timesheet entries
type TimesheetListResponse struct {
	Timesheets []TimesheetDTO `json:"timesheets"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// ToTimesheetDTO converts a Timesheet model to TimesheetDTO
func ToTimesheetDTO(ts models.Timesheet) TimesheetDTO {
	dto := TimesheetDTO{
		ID:         ts.ID,
		UserID:     ts.UserID,
		ProjectID:  ts.ProjectID,
		ActivityID: ts.ActivityID,
		Start:      ts.Start,
		End:        ts.End,
		Duration:   ts.Duration,
		Comment:    ts.Comment,
		ModifiedAt: ts.ModifiedAt,
	}

	if ts.Duration != nil {
		text := utils.FormatDuration(*ts.Duration)
		dto.DurationText = &text
	}

	// Include relations if preloaded
	if ts.User.ID != 0 {
		user := ToUserDTO(ts.User)
		dto.User = &user
	}
	if ts.Project.ID != 0 {
		project := ToProjectDTO(ts.Project)
		dto.Project = &project
	}
	if ts.Activity.ID != 0 {
		activity := ToActivityDTO(ts.Activity)
		dto.Activity = &activity
	}
	if len(ts.Tags) > 0 {
		dto.Tags = ToTagDTOs(ts.Tags)
	}

	return dto
}

// ToTimesheetListResponse converts a slice of timesheets to TimesheetListResponse
func ToTimesheetListResponse(timesheets []models.Timesheet, page, pageSize int, totalCount int64) TimesheetListResponse {
	items := make([]TimesheetDTO, len(timesheets))
	for i, ts := range timesheets {
		items[i] = ToTimesheetDTO(ts)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TimesheetListResponse{
		Timesheets: items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
