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

var ErrActivityNotFound = errors.New("activity not found")

// ActivityService handles activity administration.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	projectRepo  repository.ProjectRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository, projectRepo repository.ProjectRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		projectRepo:  projectRepo,
	}
}

// ActivityInput carries the raw form fields for an activity. ProjectID
// nil creates a global activity.
type ActivityInput struct {
	Name      string
	Color     string
	Number    string
	Comment   string
	ProjectID *uint64
	Visible   bool
	TeamIDs   []uint64
}

// CreateActivity validates the form, checks the project reference and
// inserts the activity with its team scoping set.
func (s *ActivityService) CreateActivity(input ActivityInput) (*models.Activity, error) {
	name, color, number, comment, verrs := s.validateInput(input)
	if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verrs.Add("project", "does not exist")
			} else {
				return nil, fmt.Errorf("failed to check project: %w", err)
			}
		}
	}
	if verrs.Any() {
		return nil, verrs
	}

	activity := &models.Activity{
		Name:      name,
		Color:     color,
		Number:    number,
		Comment:   comment,
		ProjectID: input.ProjectID,
		Visible:   input.Visible,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		return nil, err
	}

	if err := s.activityRepo.UpdateTeams(activity.ID, input.TeamIDs); err != nil {
		return nil, err
	}

	return s.getActivity(activity.ID)
}

// UpdateActivity applies the create validation and replaces the team
// set. The caller is expected to have scoped the row already.
func (s *ActivityService) UpdateActivity(id uint64, input ActivityInput) (*models.Activity, error) {
	activity, err := s.getActivity(id)
	if err != nil {
		return nil, err
	}

	name, color, number, comment, verrs := s.validateInput(input)
	if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verrs.Add("project", "does not exist")
			} else {
				return nil, fmt.Errorf("failed to check project: %w", err)
			}
		}
	}
	if verrs.Any() {
		return nil, verrs
	}

	activity.Name = name
	activity.Color = color
	activity.Number = number
	activity.Comment = comment
	activity.ProjectID = input.ProjectID
	activity.Visible = input.Visible
	if err := s.activityRepo.Update(activity); err != nil {
		return nil, err
	}

	if err := s.activityRepo.UpdateTeams(activity.ID, input.TeamIDs); err != nil {
		return nil, err
	}

	return s.getActivity(activity.ID)
}

// DeleteActivity removes an activity with its links.
func (s *ActivityService) DeleteActivity(id uint64) error {
	if _, err := s.getActivity(id); err != nil {
		return err
	}
	return s.activityRepo.Delete(id)
}

// GetActivity returns an activity by id.
func (s *ActivityService) GetActivity(id uint64) (*models.Activity, error) {
	return s.getActivity(id)
}

// ListActivitiesForViewer composes the effective listing with the
// union rule shared by all team-scoped entities.
func (s *ActivityService) ListActivitiesForViewer(viewer policy.Viewer, visibleOnly bool) ([]models.Activity, error) {
	unscoped, err := s.activityRepo.FindAllNotInTeam(visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscoped activities: %w", err)
	}

	var scoped []models.Activity
	if viewer.IsAdmin() {
		scoped, err = s.activityRepo.FindAllHaveTeams(visibleOnly)
	} else {
		scoped, err = s.activityRepo.FindAllByUserID(viewer.UserID, visibleOnly)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list team activities: %w", err)
	}

	return append(unscoped, scoped...), nil
}

// ListActivitiesForProject lists the activities valid for booking on a
// project: the explicitly allowed set when the project restricts
// activities, otherwise the project's own plus global ones.
func (s *ActivityService) ListActivitiesForProject(projectID uint64, visibleOnly bool) ([]models.Activity, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if project.GlobalActivities {
		return s.activityRepo.FindAllByProjectID(projectID, true, visibleOnly)
	}

	allowed, err := s.projectRepo.FindAllowedActivityIDs(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed activities: %w", err)
	}
	if len(allowed) == 0 {
		return []models.Activity{}, nil
	}

	activities, err := s.activityRepo.FindAll(visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	allowedSet := make(map[uint64]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}
	result := make([]models.Activity, 0, len(allowed))
	for _, a := range activities {
		if _, ok := allowedSet[a.ID]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *ActivityService) validateInput(input ActivityInput) (name, color, number, comment string, verrs *apierrors.ValidationErrors) {
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

func (s *ActivityService) getActivity(id uint64) (*models.Activity, error) {
	activity, err := s.activityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	return activity, nil
}
