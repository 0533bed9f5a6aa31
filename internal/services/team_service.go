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

var ErrTeamNotFound = errors.New("team not found")

// TeamService handles team administration.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{teamRepo: teamRepo}
}

// TeamMemberInput is one membership row in a team form.
type TeamMemberInput struct {
	UserID   uint64
	TeamLead bool
}

// TeamInput carries the raw form fields for a team.
type TeamInput struct {
	Name    string
	Color   string
	Members []TeamMemberInput
}

// CreateTeam validates the form, pre-checks the unique name and inserts
// the team with its full membership set.
func (s *TeamService) CreateTeam(input TeamInput) (*models.Team, error) {
	name := validation.Sanitize(input.Name)
	color := validation.SanitizeColor(input.Color)

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateName(name, false) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateColor(color, true) {
		verrs.Add("color", "is not a valid hex color")
	}
	if !verrs.Has("name") {
		if err := s.checkNameFree(name, 0); err != nil {
			if errors.Is(err, errTaken) {
				verrs.Add("name", "is already in use")
			} else {
				return nil, err
			}
		}
	}

	if verrs.Any() {
		return nil, verrs
	}

	team := &models.Team{Name: name, Color: color}
	if err := s.teamRepo.Create(team); err != nil {
		return nil, err
	}

	if err := s.teamRepo.UpdateMembers(team.ID, membersFromInput(team.ID, input.Members)); err != nil {
		return nil, err
	}

	return s.getTeam(team.ID)
}

// UpdateTeam applies the create validation and replaces the membership
// set. The caller is expected to have scoped the row already.
func (s *TeamService) UpdateTeam(id uint64, input TeamInput) (*models.Team, error) {
	team, err := s.getTeam(id)
	if err != nil {
		return nil, err
	}

	name := validation.Sanitize(input.Name)
	color := validation.SanitizeColor(input.Color)

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateName(name, false) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateColor(color, true) {
		verrs.Add("color", "is not a valid hex color")
	}
	if !verrs.Has("name") {
		if err := s.checkNameFree(name, team.ID); err != nil {
			if errors.Is(err, errTaken) {
				verrs.Add("name", "is already in use")
			} else {
				return nil, err
			}
		}
	}

	if verrs.Any() {
		return nil, verrs
	}

	team.Name = name
	team.Color = color
	if err := s.teamRepo.Update(team); err != nil {
		return nil, err
	}

	if err := s.teamRepo.UpdateMembers(team.ID, membersFromInput(team.ID, input.Members)); err != nil {
		return nil, err
	}

	return s.getTeam(team.ID)
}

// DeleteTeam removes a team with its links.
func (s *TeamService) DeleteTeam(id uint64) error {
	if _, err := s.getTeam(id); err != nil {
		return err
	}
	return s.teamRepo.Delete(id)
}

// GetTeam returns a team with members preloaded.
func (s *TeamService) GetTeam(id uint64) (*models.Team, error) {
	return s.getTeam(id)
}

// ListTeamsForViewer lists every team for admins and led teams for
// team leads.
func (s *TeamService) ListTeamsForViewer(viewer policy.Viewer) ([]models.Team, error) {
	if viewer.IsAdmin() {
		teams, err := s.teamRepo.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		return teams, nil
	}

	teams, err := s.teamRepo.FindAllByLeaderID(viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list led teams: %w", err)
	}
	return teams, nil
}

func (s *TeamService) getTeam(id uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func (s *TeamService) checkNameFree(name string, selfID uint64) error {
	existing, err := s.teamRepo.FindByName(name)
	if err == nil {
		if existing.ID != selfID {
			return errTaken
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check team name: %w", err)
}

func membersFromInput(teamID uint64, inputs []TeamMemberInput) []models.TeamMember {
	members := make([]models.TeamMember, 0, len(inputs))
	seen := make(map[uint64]struct{}, len(inputs))
	for _, m := range inputs {
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		members = append(members, models.TeamMember{
			TeamID:   teamID,
			UserID:   m.UserID,
			TeamLead: m.TeamLead,
		})
	}
	return members
}
