package repository

import (
	"github.com/mkessler/timetrack/internal/database"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return apierrors.Persistence("insert tag", r.db.Create(tag).Error)
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag by its unique name
func (r *GormTagRepository) FindByName(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindAll lists every tag
func (r *GormTagRepository) FindAll(visibleOnly bool) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Scopes(database.Visible(visibleOnly)).Order("name").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// FindAllByIDs lists the tags matching the given ids. An empty id set
// yields an empty result without touching the database.
func (r *GormTagRepository) FindAllByIDs(ids []uint64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := r.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Update updates a tag
func (r *GormTagRepository) Update(tag *models.Tag) error {
	return apierrors.Persistence("update tag", r.db.Save(tag).Error)
}

// Delete removes a tag and its timesheet links
func (r *GormTagRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.TimesheetTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	return apierrors.Persistence("delete tag", err)
}
