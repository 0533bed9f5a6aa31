package services

import (
	"errors"
	"fmt"
	"time"

	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/validation"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project administration.
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	customerRepo repository.CustomerRepository
	activityRepo repository.ActivityRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, customerRepo repository.CustomerRepository, activityRepo repository.ActivityRepository) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		customerRepo: customerRepo,
		activityRepo: activityRepo,
	}
}

// ProjectInput carries the raw form fields for a project. Start and End
// are raw date strings; ActivityIDs is the allowed-activities selection
// consulted when GlobalActivities is off.
type ProjectInput struct {
	Name             string
	CustomerID       uint64
	Color            string
	Number           string
	Comment          string
	Start            string
	End              string
	GlobalActivities bool
	Visible          bool
	TeamIDs          []uint64
	ActivityIDs      []uint64
}

// CreateProject validates the form, inserts the project and stores the
// team and allowed-activities sets.
func (s *ProjectService) CreateProject(input ProjectInput) (*models.Project, error) {
	fields, verrs, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}
	if verrs.Any() {
		return nil, verrs
	}

	project := &models.Project{
		Name:             fields.name,
		CustomerID:       input.CustomerID,
		Color:            fields.color,
		Number:           fields.number,
		Comment:          fields.comment,
		Start:            fields.start,
		End:              fields.end,
		GlobalActivities: input.GlobalActivities,
		Visible:          input.Visible,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, err
	}

	if err := s.persistLinks(project, input); err != nil {
		return nil, err
	}

	return s.getProject(project.ID)
}

// UpdateProject applies the create validation and replaces the team and
// allowed-activities sets. The caller is expected to have scoped the
// row already.
func (s *ProjectService) UpdateProject(id uint64, input ProjectInput) (*models.Project, error) {
	project, err := s.getProject(id)
	if err != nil {
		return nil, err
	}

	fields, verrs, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}
	if verrs.Any() {
		return nil, verrs
	}

	project.Name = fields.name
	project.CustomerID = input.CustomerID
	project.Color = fields.color
	project.Number = fields.number
	project.Comment = fields.comment
	project.Start = fields.start
	project.End = fields.end
	project.GlobalActivities = input.GlobalActivities
	project.Visible = input.Visible
	if err := s.projectRepo.Update(project); err != nil {
		return nil, err
	}

	if err := s.persistLinks(project, input); err != nil {
		return nil, err
	}

	return s.getProject(project.ID)
}

// DeleteProject removes a project with its links.
func (s *ProjectService) DeleteProject(id uint64) error {
	if _, err := s.getProject(id); err != nil {
		return err
	}
	return s.projectRepo.Delete(id)
}

// GetProject returns a project by id.
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	return s.getProject(id)
}

// ListProjectsForViewer composes the effective listing with the union
// rule shared by all team-scoped entities.
func (s *ProjectService) ListProjectsForViewer(viewer policy.Viewer, visibleOnly bool) ([]models.Project, error) {
	unscoped, err := s.projectRepo.FindAllNotInTeam(visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscoped projects: %w", err)
	}

	var scoped []models.Project
	if viewer.IsAdmin() {
		scoped, err = s.projectRepo.FindAllHaveTeams(visibleOnly)
	} else {
		scoped, err = s.projectRepo.FindAllByUserID(viewer.UserID, visibleOnly)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list team projects: %w", err)
	}

	return append(unscoped, scoped...), nil
}

// ListProjectsByCustomer lists the projects of one customer.
func (s *ProjectService) ListProjectsByCustomer(customerID uint64, visibleOnly bool) ([]models.Project, error) {
	projects, err := s.projectRepo.FindAllByCustomerID(customerID, visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer projects: %w", err)
	}
	return projects, nil
}

type projectFields struct {
	name    string
	color   string
	number  string
	comment string
	start   *time.Time
	end     *time.Time
}

func (s *ProjectService) validateInput(input ProjectInput) (projectFields, *apierrors.ValidationErrors, error) {
	fields := projectFields{
		name:    validation.Sanitize(input.Name),
		color:   validation.SanitizeColor(input.Color),
		number:  validation.Sanitize(input.Number),
		comment: validation.Sanitize(input.Comment),
	}

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateName(fields.name, false) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateColor(fields.color, true) {
		verrs.Add("color", "is not a valid hex color")
	}
	if !validation.ValidateNumber(fields.number, true) {
		verrs.Add("number", "must be at most 10 characters")
	}
	if input.Start != "" {
		if start, ok := validation.ParseDateTime(input.Start); ok {
			fields.start = &start
		} else {
			verrs.Add("start", "is not a valid date")
		}
	}
	if input.End != "" {
		if end, ok := validation.ParseDateTime(input.End); ok {
			fields.end = &end
		} else {
			verrs.Add("end", "is not a valid date")
		}
	}

	if _, err := s.customerRepo.FindByID(input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs.Add("customer", "does not exist")
		} else {
			return fields, nil, fmt.Errorf("failed to check customer: %w", err)
		}
	}

	return fields, verrs, nil
}

// persistLinks stores the team set and the allowed-activities set.
// Global activities are dropped from the allowed set when the project
// restricts activities: the set authorizes project-bound activities
// only, global ones are governed by the GlobalActivities flag.
func (s *ProjectService) persistLinks(project *models.Project, input ProjectInput) error {
	if err := s.projectRepo.UpdateTeams(project.ID, input.TeamIDs); err != nil {
		return err
	}

	activityIDs := input.ActivityIDs
	if !project.GlobalActivities && len(activityIDs) > 0 {
		globalActivities, err := s.activityRepo.FindAllGlobal(false)
		if err != nil {
			return fmt.Errorf("failed to load global activities: %w", err)
		}
		global := make(map[uint64]struct{}, len(globalActivities))
		for _, a := range globalActivities {
			global[a.ID] = struct{}{}
		}
		filtered := make([]uint64, 0, len(activityIDs))
		for _, id := range activityIDs {
			if _, isGlobal := global[id]; !isGlobal {
				filtered = append(filtered, id)
			}
		}
		activityIDs = filtered
	}

	return s.projectRepo.UpdateActivities(project.ID, activityIDs)
}

func (s *ProjectService) getProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
