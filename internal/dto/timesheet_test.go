package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/mkessler/timetrack/internal/models"
)

func TestToTimesheetListResponse_TotalPages(t *testing.T) {
	response := ToTimesheetListResponse([]models.Timesheet{}, 1, 25, 51)
	require.Equal(t, 3, response.TotalPages)

	response = ToTimesheetListResponse([]models.Timesheet{}, 1, 25, 50)
	require.Equal(t, 2, response.TotalPages)

	// Unpaginated callers pass zero; no division happens.
	response = ToTimesheetListResponse([]models.Timesheet{}, 0, 0, 50)
	require.Equal(t, 0, response.TotalPages)
}
