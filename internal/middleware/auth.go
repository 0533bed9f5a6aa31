package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/constants"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/policy"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)
		roleID := session.Get(constants.ContextKeyRoleID)

		if userID == nil || roleID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyRoleID, roleID)
		c.Next()
	}
}

// RequireTeamLead rejects callers below the team lead role. Admins pass.
func RequireTeamLead() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !viewer.IsTeamLead() {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers below the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !viewer.IsAdmin() {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	return uint64FromContext(c, constants.ContextKeyUserID)
}

// GetRoleID retrieves the current role ID from context
func GetRoleID(c *gin.Context) (uint64, bool) {
	return uint64FromContext(c, constants.ContextKeyRoleID)
}

// GetViewer builds the policy viewer for the current request
func GetViewer(c *gin.Context) (policy.Viewer, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return policy.Viewer{}, false
	}
	roleID, ok := GetRoleID(c)
	if !ok {
		return policy.Viewer{}, false
	}
	return policy.Viewer{UserID: userID, RoleID: roleID}, true
}

func uint64FromContext(c *gin.Context, key string) (uint64, bool) {
	value, exists := c.Get(key)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
