package repository

import (
	"github.com/mkessler/timetrack/internal/database"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db    *gorm.DB
	scope teamScope
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{
		db:    db,
		scope: teamScope{table: "activities", joinTable: "activity_teams", fk: "activity_id"},
	}
}

// Create creates a new activity
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return apierrors.Persistence("insert activity", r.db.Create(activity).Error)
}

// FindByID finds an activity by ID
func (r *GormActivityRepository) FindByID(id uint64) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.Preload("Teams").First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// FindAll lists every activity
func (r *GormActivityRepository) FindAll(visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.Scopes(database.Visible(visibleOnly)).Order("name").Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindAllGlobal lists activities bound to no project
func (r *GormActivityRepository) FindAllGlobal(visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.Where("project_id IS NULL").
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindAllByProjectID lists activities bound to a project, optionally
// including global ones
func (r *GormActivityRepository) FindAllByProjectID(projectID uint64, includeGlobal, visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	query := r.db.Scopes(database.Visible(visibleOnly)).Order("name")
	if includeGlobal {
		query = query.Where("project_id = ? OR project_id IS NULL", projectID)
	} else {
		query = query.Where("project_id = ?", projectID)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// FindAllNotInTeam lists activities with zero team links
func (r *GormActivityRepository) FindAllNotInTeam(visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.scope.notInTeam(r.db.Model(&models.Activity{})).
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindAllHaveTeams lists activities with at least one team link (admin view)
func (r *GormActivityRepository) FindAllHaveTeams(visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.scope.haveTeams(r.db.Model(&models.Activity{})).
		Scopes(database.Visible(visibleOnly)).
		Order("activities.name").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindAllByUserID lists activities reachable through the user's team
// memberships
func (r *GormActivityRepository) FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.scope.byUserID(r.db.Model(&models.Activity{}), userID).
		Scopes(database.Visible(visibleOnly)).
		Order("activities.name").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// Update updates an activity
func (r *GormActivityRepository) Update(activity *models.Activity) error {
	return apierrors.Persistence("update activity", r.db.Save(activity).Error)
}

// Delete removes an activity, its team links and its allowed-set links
func (r *GormActivityRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&models.ActivityTeam{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.ProjectActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Activity{}, id).Error
	})
	return apierrors.Persistence("delete activity", err)
}

// UpdateTeams replaces the full team link set of an activity
func (r *GormActivityRepository) UpdateTeams(activityID uint64, teamIDs []uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activityID).Delete(&models.ActivityTeam{}).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		links := make([]models.ActivityTeam, len(teamIDs))
		for i, teamID := range teamIDs {
			links[i] = models.ActivityTeam{ActivityID: activityID, TeamID: teamID}
		}
		return tx.Create(&links).Error
	})
	return apierrors.Persistence("update activity teams", err)
}
