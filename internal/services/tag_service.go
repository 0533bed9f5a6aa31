package services

import (
	"errors"
	"fmt"

	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/validation"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService handles tag administration.
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// TagInput carries the raw form fields for a tag.
type TagInput struct {
	Name    string
	Color   string
	Visible bool
}

// CreateTag validates the form, pre-checks the unique name and inserts
// the tag.
func (s *TagService) CreateTag(input TagInput) (*models.Tag, error) {
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

	tag := &models.Tag{Name: name, Color: color, Visible: input.Visible}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// UpdateTag applies the create validation. The caller is expected to
// have scoped the row already.
func (s *TagService) UpdateTag(id uint64, input TagInput) (*models.Tag, error) {
	tag, err := s.getTag(id)
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
		if err := s.checkNameFree(name, tag.ID); err != nil {
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

	tag.Name = name
	tag.Color = color
	tag.Visible = input.Visible
	if err := s.tagRepo.Update(tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// DeleteTag removes a tag and its timesheet links.
func (s *TagService) DeleteTag(id uint64) error {
	if _, err := s.getTag(id); err != nil {
		return err
	}
	return s.tagRepo.Delete(id)
}

// GetTag returns a tag by id.
func (s *TagService) GetTag(id uint64) (*models.Tag, error) {
	return s.getTag(id)
}

// ListTags lists tags, optionally restricted to visible ones. Tags are
// not team scoped.
func (s *TagService) ListTags(visibleOnly bool) ([]models.Tag, error) {
	tags, err := s.tagRepo.FindAll(visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) getTag(id uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) checkNameFree(name string, selfID uint64) error {
	existing, err := s.tagRepo.FindByName(name)
	if err == nil {
		if existing.ID != selfID {
			return errTaken
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check tag name: %w", err)
}
