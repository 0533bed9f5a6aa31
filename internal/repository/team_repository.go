package repository

import (
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return apierrors.Persistence("insert team", r.db.Create(team).Error)
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.Preload("Members").Preload("Members.User").First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByName finds a team by its unique name
func (r *GormTeamRepository) FindByName(name string) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindAll lists every team with members preloaded
func (r *GormTeamRepository) FindAll() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Preload("Members").Preload("Members.User").Order("name").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// FindAllByLeaderID lists teams the user leads
func (r *GormTeamRepository) FindAllByLeaderID(userID uint64) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.Preload("Members").Preload("Members.User").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND team_members.team_lead = ?", userID, true).
		Order("teams.name").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return apierrors.Persistence("update team", r.db.Save(team).Error)
}

// Delete removes a team together with its membership and scoping links
func (r *GormTeamRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.CustomerTeam{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.ProjectTeam{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.ActivityTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, id).Error
	})
	return apierrors.Persistence("delete team", err)
}

// UpdateMembers replaces the full membership set of a team. Existing
// links are dropped and the new set inserted in one transaction.
func (r *GormTeamRepository) UpdateMembers(teamID uint64, members []models.TeamMember) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		for i := range members {
			members[i].TeamID = teamID
		}
		return tx.Create(&members).Error
	})
	return apierrors.Persistence("update team members", err)
}
