package repository

import (
	"github.com/mkessler/timetrack/internal/database"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db    *gorm.DB
	scope teamScope
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{
		db:    db,
		scope: teamScope{table: "projects", joinTable: "project_teams", fk: "project_id"},
	}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return apierrors.Persistence("insert project", r.db.Create(project).Error)
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.Preload("Customer").Preload("Teams").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll lists every project
func (r *GormProjectRepository) FindAll(visibleOnly bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Preload("Customer").
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindAllByCustomerID lists projects of one customer
func (r *GormProjectRepository) FindAllByCustomerID(customerID uint64, visibleOnly bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("customer_id = ?", customerID).
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindAllNotInTeam lists projects with zero team links
func (r *GormProjectRepository) FindAllNotInTeam(visibleOnly bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.scope.notInTeam(r.db.Model(&models.Project{})).
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindAllHaveTeams lists projects with at least one team link (admin view)
func (r *GormProjectRepository) FindAllHaveTeams(visibleOnly bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.scope.haveTeams(r.db.Model(&models.Project{})).
		Scopes(database.Visible(visibleOnly)).
		Order("projects.name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindAllByUserID lists projects reachable through the user's team
// memberships
func (r *GormProjectRepository) FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.scope.byUserID(r.db.Model(&models.Project{}), userID).
		Scopes(database.Visible(visibleOnly)).
		Order("projects.name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return apierrors.Persistence("update project", r.db.Save(project).Error)
}

// Delete removes a project, its team links and its allowed-activities set
func (r *GormProjectRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTeam{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	return apierrors.Persistence("delete project", err)
}

// UpdateTeams replaces the full team link set of a project
func (r *GormProjectRepository) UpdateTeams(projectID uint64, teamIDs []uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTeam{}).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		links := make([]models.ProjectTeam, len(teamIDs))
		for i, teamID := range teamIDs {
			links[i] = models.ProjectTeam{ProjectID: projectID, TeamID: teamID}
		}
		return tx.Create(&links).Error
	})
	return apierrors.Persistence("update project teams", err)
}

// UpdateActivities replaces the allowed-activities set of a project
func (r *GormProjectRepository) UpdateActivities(projectID uint64, activityIDs []uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectActivity{}).Error; err != nil {
			return err
		}
		if len(activityIDs) == 0 {
			return nil
		}
		links := make([]models.ProjectActivity, len(activityIDs))
		for i, activityID := range activityIDs {
			links[i] = models.ProjectActivity{ProjectID: projectID, ActivityID: activityID}
		}
		return tx.Create(&links).Error
	})
	return apierrors.Persistence("update project activities", err)
}

// FindAllowedActivityIDs returns the allowed-activities set
func (r *GormProjectRepository) FindAllowedActivityIDs(projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.ProjectActivity{}).
		Where("project_id = ?", projectID).
		Pluck("activity_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
