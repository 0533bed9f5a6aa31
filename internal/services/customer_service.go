package services

import (
	"errors"
	"fmt"

	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/validation"
	"gorm.io/gorm"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerService handles customer administration.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput carries the raw form fields for a customer.
type CustomerInput struct {
	Name    string
	Color   string
	Number  string
	Comment string
	Visible bool
	TeamIDs []uint64
}

// CreateCustomer validates the form, inserts the customer and stores
// the team scoping set.
func (s *CustomerService) CreateCustomer(input CustomerInput) (*models.Customer, error) {
	name, color, number, comment, verrs := s.validateInput(input)
	if verrs.Any() {
		return nil, verrs
	}

	customer := &models.Customer{
		Name:    name,
		Color:   color,
		Number:  number,
		Comment: comment,
		Visible: input.Visible,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.UpdateTeams(customer.ID, input.TeamIDs); err != nil {
		return nil, err
	}

	return s.getCustomer(customer.ID)
}

// UpdateCustomer applies the create validation and replaces the team
// set. The caller is expected to have scoped the row already.
func (s *CustomerService) UpdateCustomer(id uint64, input CustomerInput) (*models.Customer, error) {
	customer, err := s.getCustomer(id)
	if err != nil {
		return nil, err
	}

	name, color, number, comment, verrs := s.validateInput(input)
	if verrs.Any() {
		return nil, verrs
	}

	customer.Name = name
	customer.Color = color
	customer.Number = number
	customer.Comment = comment
	customer.Visible = input.Visible
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.UpdateTeams(customer.ID, input.TeamIDs); err != nil {
		return nil, err
	}

	return s.getCustomer(customer.ID)
}

// DeleteCustomer removes a customer with its team links.
func (s *CustomerService) DeleteCustomer(id uint64) error {
	if _, err := s.getCustomer(id); err != nil {
		return err
	}
	return s.customerRepo.Delete(id)
}

// GetCustomer returns a customer by id. Visibility does not restrict
// direct access.
func (s *CustomerService) GetCustomer(id uint64) (*models.Customer, error) {
	return s.getCustomer(id)
}

// ListCustomersForViewer composes the effective listing: rows without
// team links plus either all linked rows (admin) or the rows reachable
// through the viewer's memberships.
func (s *CustomerService) ListCustomersForViewer(viewer policy.Viewer, visibleOnly bool) ([]models.Customer, error) {
	unscoped, err := s.customerRepo.FindAllNotInTeam(visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscoped customers: %w", err)
	}

	var scoped []models.Customer
	if viewer.IsAdmin() {
		scoped, err = s.customerRepo.FindAllHaveTeams(visibleOnly)
	} else {
		scoped, err = s.customerRepo.FindAllByUserID(viewer.UserID, visibleOnly)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list team customers: %w", err)
	}

	return append(unscoped, scoped...), nil
}

func (s *CustomerService) validateInput(input CustomerInput) (name, color, number, comment string, verrs *apierrors.ValidationErrors) {
	name = validation.Sanitize(input.Name)
	color = validation.SanitizeColor(input.Color)
	number = validation.Sanitize(input.Number)
	comment = validation.Sanitize(input.Comment)

	verrs = apierrors.NewValidationErrors()
	if !validation.ValidateName(name, false) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateColor(color, true) {
		verrs.Add("color", "is not a valid hex color")
	}
	if !validation.ValidateNumber(number, true) {
		verrs.Add("number", "must be at most 10 characters")
	}
	return name, color, number, comment, verrs
}

func (s *CustomerService) getCustomer(id uint64) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}
