package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/database"
	"github.com/mkessler/timetrack/internal/models"
)

// RequireTimesheetAccess checks if the user may act on a timesheet entry.
// Admins reach every entry, team leads their own and their team members'
// entries, users only their own.
func RequireTimesheetAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get timesheet ID from URL parameter
		idStr := c.Param("id")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid timesheet ID",
			})
			c.Abort()
			return
		}

		viewer, ok := GetViewer(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var ts models.Timesheet
		if err := database.GetDB().
			Preload("Project").
			Preload("Activity").
			Preload("Tags").
			First(&ts, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Timesheet not found",
			})
			c.Abort()
			return
		}

		if ts.UserID != viewer.UserID && !viewer.IsAdmin() {
			if !viewer.IsTeamLead() || !leadsOwner(viewer.UserID, ts.UserID) {
				// Return 404 instead of 403 to avoid leaking entry existence
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Timesheet not found",
				})
				c.Abort()
				return
			}
		}

		c.Set("timesheet", ts)
		c.Next()
	}
}

// leadsOwner reports whether the owner shares a team the leader leads.
func leadsOwner(leaderID, ownerID uint64) bool {
	var count int64
	err := database.GetDB().
		Table("team_members").
		Joins("JOIN team_members leads ON leads.team_id = team_members.team_id").
		Where("leads.user_id = ? AND leads.team_lead = ?", leaderID, true).
		Where("team_members.user_id = ?", ownerID).
		Count(&count).Error
	return err == nil && count > 0
}
