// Package handlers wires the HTTP surface to the domain services. Every
// handler parses and binds input, delegates to a service and renders the
// result as a DTO; row-level access checks live in the middleware and
// the services.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/constants"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/services"
)

// parseIDParam reads a numeric :id path parameter.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}

// parsePagination reads page/page_size query parameters, clamped to the
// configured bounds.
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if pageSize < constants.MinPageSize {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}

// visibleOnly reads the visible query flag; listing defaults to visible
// rows unless all=1 widens it.
func visibleOnly(c *gin.Context) bool {
	return c.Query("all") != "1"
}

// respondServiceError maps service errors onto HTTP responses shared by
// the CRUD handlers.
func respondServiceError(c *gin.Context, err error) {
	var verrs *apierrors.ValidationErrors
	if errors.As(err, &verrs) {
		apierrors.ValidationFailed(c, verrs)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrTimesheetNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTimesheetNotRunning):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
