package repository

import (
	"time"

	"github.com/mkessler/timetrack/internal/database"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/utils"
	"gorm.io/gorm"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// Create inserts a timesheet row without side effects
func (r *GormTimesheetRepository) Create(ts *models.Timesheet) error {
	return apierrors.Persistence("insert timesheet", r.db.Create(ts).Error)
}

// CreateStoppingRunning force-stops every running timesheet of the same
// user, then inserts the new row. The whole sequence runs in one
// transaction so two concurrent creates cannot both observe zero
// running rows and leave two of them open.
func (r *GormTimesheetRepository) CreateStoppingRunning(ts *models.Timesheet) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var running []models.Timesheet
		if err := tx.Where("user_id = ? AND end_time IS NULL", ts.UserID).Find(&running).Error; err != nil {
			return err
		}

		for i := range running {
			end := forcedStop(running[i].Start, ts.Start)
			duration := utils.MinutesBetween(running[i].Start, end)
			running[i].End = &end
			running[i].Duration = &duration
			if err := tx.Save(&running[i]).Error; err != nil {
				return err
			}
		}

		return tx.Create(ts).Error
	})
	return apierrors.Persistence("insert timesheet", err)
}

// forcedStop picks the end instant for a running row that is being
// closed because a new session starts. A session from an earlier
// calendar day is closed at 23:59 of its own start date; one from the
// same day is closed exactly at the new session's start.
func forcedStop(runningStart, newStart time.Time) time.Time {
	if utils.BeforeDay(runningStart, newStart) {
		return utils.EndOfDay(runningStart)
	}
	return newStart
}

// FindByID finds a timesheet by ID with optional preloading
func (r *GormTimesheetRepository) FindByID(id uint64, preload ...string) (*models.Timesheet, error) {
	var ts models.Timesheet
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&ts, id).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

// FindRunningByUserID lists the user's running timesheets
func (r *GormTimesheetRepository) FindRunningByUserID(userID uint64) ([]models.Timesheet, error) {
	var sheets []models.Timesheet
	err := r.db.Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time DESC").
		Find(&sheets).Error
	if err != nil {
		return nil, err
	}
	return sheets, nil
}

// List retrieves timesheets with filtering and pagination
func (r *GormTimesheetRepository) List(filter TimesheetFilter) ([]models.Timesheet, int64, error) {
	query := r.db.Model(&models.Timesheet{})

	if len(filter.UserIDs) > 0 {
		query = query.Where("timesheets.user_id IN ?", filter.UserIDs)
	}
	if filter.ProjectID != nil {
		query = query.Where("timesheets.project_id = ?", *filter.ProjectID)
	}
	if filter.ActivityID != nil {
		query = query.Where("timesheets.activity_id = ?", *filter.ActivityID)
	}
	if filter.CustomerID != nil {
		query = query.
			Joins("JOIN projects ON projects.id = timesheets.project_id").
			Where("projects.customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("timesheets.start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timesheets.start_time < ?", *filter.To)
	}
	if filter.RunningOnly {
		query = query.Where("timesheets.end_time IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("timesheets.start_time DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	var sheets []models.Timesheet
	if err := listQuery.
		Preload("Project").
		Preload("Activity").
		Preload("Tags").
		Find(&sheets).Error; err != nil {
		return nil, 0, err
	}

	return sheets, total, nil
}

// Update updates a timesheet
func (r *GormTimesheetRepository) Update(ts *models.Timesheet) error {
	return apierrors.Persistence("update timesheet", r.db.Save(ts).Error)
}

// Delete hard-deletes a timesheet and its tag links
func (r *GormTimesheetRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", id).Delete(&models.TimesheetTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Timesheet{}, id).Error
	})
	return apierrors.Persistence("delete timesheet", err)
}

// UpdateTags replaces the full tag set of a timesheet
func (r *GormTimesheetRepository) UpdateTags(timesheetID uint64, tagIDs []uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", timesheetID).Delete(&models.TimesheetTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		links := make([]models.TimesheetTag, len(tagIDs))
		for i, tagID := range tagIDs {
			links[i] = models.TimesheetTag{TimesheetID: timesheetID, TagID: tagID}
		}
		return tx.Create(&links).Error
	})
	return apierrors.Persistence("update timesheet tags", err)
}
