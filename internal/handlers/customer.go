package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/dto"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/services"
)

// CustomerHandler coordinates customer administration HTTP handlers.
type CustomerHandler struct {
	customerService *services.CustomerService
	projectService  *services.ProjectService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService *services.CustomerService, projectService *services.ProjectService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		projectService:  projectService,
	}
}

// customerRequest is the shared create/update payload.
type customerRequest struct {
	Name    string   `json:"name" binding:"required"`
	Color   string   `json:"color"`
	Number  string   `json:"number"`
	Comment string   `json:"comment"`
	Visible *bool    `json:"visible"`
	TeamIDs []uint64 `json:"team_ids"`
}

func (r customerRequest) toInput() services.CustomerInput {
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return services.CustomerInput{
		Name:    r.Name,
		Color:   r.Color,
		Number:  r.Number,
		Comment: r.Comment,
		Visible: visible,
		TeamIDs: r.TeamIDs,
	}
}

// ListCustomers returns the customers the caller may see: rows with no
// team links plus the rows reachable through the caller's memberships
// (or every linked row for admins).
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	viewer, exists := middleware.GetViewer(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	customers, err := h.customerService.ListCustomersForViewer(viewer, visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTOs(customers))
}

// GetCustomer returns one customer.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

// ListCustomerProjects returns the projects of one customer.
func (h *CustomerHandler) ListCustomerProjects(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.customerService.GetCustomer(id); err != nil {
		respondServiceError(c, err)
		return
	}

	projects, err := h.projectService.ListProjectsByCustomer(id, visibleOnly(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// CreateCustomer creates a customer with its team scoping set. Admin
// only.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.CreateCustomer(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomerDTO(*customer))
}

// UpdateCustomer edits a customer and replaces its team set. Admin only.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

// DeleteCustomer removes a customer. Admin only.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer deleted successfully",
	})
}
