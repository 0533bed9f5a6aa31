package services

import (
	"errors"
	"fmt"

	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/utils"
	"github.com/mkessler/timetrack/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserConfig carries the configurable validation thresholds for user
// accounts.
type UserConfig struct {
	LoginMinLength    int
	PasswordMinLength int
}

// UserService handles user administration.
type UserService struct {
	userRepo repository.UserRepository
	cfg      UserConfig
	clock    utils.Clock
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, cfg UserConfig, clock utils.Clock) *UserService {
	return &UserService{
		userRepo: userRepo,
		cfg:      cfg,
		clock:    clock,
	}
}

// CreateUserInput carries the raw form fields for a new account.
type CreateUserInput struct {
	Username string
	Name     string
	Email    string
	Password string
	RoleID   uint64
	Enabled  bool
}

// CreateUser validates every field, folds uniqueness pre-checks into
// the field errors and inserts the account. Nothing is written when any
// field fails.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := validation.SanitizeUsername(input.Username)
	name := validation.Sanitize(input.Name)
	email := validation.SanitizeEmail(input.Email)

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateUsername(username, s.cfg.LoginMinLength) {
		verrs.Add("username", fmt.Sprintf("must be between %d and 180 characters", s.cfg.LoginMinLength))
	}
	if !validation.ValidateName(name, true) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateEmail(email, false) {
		verrs.Add("email", "is not a valid email address")
	}
	if !validation.ValidatePassword(input.Password, s.cfg.PasswordMinLength) {
		verrs.Add("password", fmt.Sprintf("must be at least %d characters and contain upper case, lower case, a digit and a special character", s.cfg.PasswordMinLength))
	}
	if !validation.ValidateRole(input.RoleID) {
		verrs.Add("role", "is not a valid role")
	}

	if !verrs.Has("username") {
		if err := s.checkUsernameFree(username, 0); err != nil {
			if errors.Is(err, errTaken) {
				verrs.Add("username", "is already in use")
			} else {
				return nil, err
			}
		}
	}
	if !verrs.Has("email") {
		if err := s.checkEmailFree(email, 0); err != nil {
			if errors.Is(err, errTaken) {
				verrs.Add("email", "is already in use")
			} else {
				return nil, err
			}
		}
	}

	if verrs.Any() {
		return nil, verrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:         username,
		Name:             name,
		Email:            email,
		PasswordHash:     string(hashed),
		Enabled:          input.Enabled,
		RegistrationDate: s.clock.Now(),
		RoleID:           input.RoleID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserInput carries the raw form fields for editing an account.
// Password empty means unchanged.
type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
	RoleID   uint64
	Enabled  bool
}

// UpdateUser applies the same validation as CreateUser to the editable
// fields. The caller is expected to have scoped the row already.
func (s *UserService) UpdateUser(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := validation.Sanitize(input.Name)
	email := validation.SanitizeEmail(input.Email)

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateName(name, true) {
		verrs.Add("name", "must be between 5 and 180 characters")
	}
	if !validation.ValidateEmail(email, false) {
		verrs.Add("email", "is not a valid email address")
	}
	if input.Password != "" && !validation.ValidatePassword(input.Password, s.cfg.PasswordMinLength) {
		verrs.Add("password", fmt.Sprintf("must be at least %d characters and contain upper case, lower case, a digit and a special character", s.cfg.PasswordMinLength))
	}
	if !validation.ValidateRole(input.RoleID) {
		verrs.Add("role", "is not a valid role")
	}

	if !verrs.Has("email") {
		if err := s.checkEmailFree(email, user.ID); err != nil {
			if errors.Is(err, errTaken) {
				verrs.Add("email", "is already in use")
			} else {
				return nil, err
			}
		}
	}

	if verrs.Any() {
		return nil, verrs
	}

	user.Name = name
	user.Email = email
	user.RoleID = input.RoleID
	user.Enabled = input.Enabled
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserForViewer returns the user row only when the viewer's role
// grants access to it: admins reach anyone, team leads reach members of
// teams they lead, everyone reaches themselves.
func (s *UserService) GetUserForViewer(id uint64, viewer policy.Viewer) (*models.User, error) {
	if id == viewer.UserID || viewer.IsAdmin() {
		return s.getUser(id)
	}

	if viewer.Scope() == policy.ScopeTeams {
		user, err := s.userRepo.FindOneByIDAndTeamLeaderID(id, viewer.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		return user, nil
	}

	return nil, ErrUserNotFound
}

// ListUsersForViewer lists the accounts the viewer's scope reaches.
func (s *UserService) ListUsersForViewer(viewer policy.Viewer) ([]models.User, error) {
	switch viewer.Scope() {
	case policy.ScopeAll:
		users, err := s.userRepo.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		return users, nil
	case policy.ScopeTeams:
		users, err := s.userRepo.FindAllByTeamLeaderID(viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list team users: %w", err)
		}
		return users, nil
	default:
		user, err := s.getUser(viewer.UserID)
		if err != nil {
			return nil, err
		}
		return []models.User{*user}, nil
	}
}

func (s *UserService) getUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// errTaken signals a uniqueness pre-check hit.
var errTaken = errors.New("value already taken")

func (s *UserService) checkUsernameFree(username string, selfID uint64) error {
	existing, err := s.userRepo.FindByUsername(username)
	if err == nil {
		if existing.ID != selfID {
			return errTaken
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check username: %w", err)
}

func (s *UserService) checkEmailFree(email string, selfID uint64) error {
	existing, err := s.userRepo.FindByEmail(email)
	if err == nil {
		if existing.ID != selfID {
			return errTaken
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check email: %w", err)
}
