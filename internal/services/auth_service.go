package services

import (
	"errors"
	"fmt"
	"time"

	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/utils"
	"github.com/mkessler/timetrack/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrResetRequestTooSoon  = errors.New("a reset request was made recently, try again later")
	ErrResetTokenInvalid    = errors.New("invalid password reset token")
	ErrResetTokenExpired    = errors.New("password reset token has expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthConfig carries the account-policy values the auth flows need.
type AuthConfig struct {
	PasswordMinLength         int
	PasswordResetHours        int
	PasswordResetRetryMinutes int
}

// AuthService handles login and the password-reset flow.
type AuthService struct {
	userRepo repository.UserRepository
	cfg      AuthConfig
	clock    utils.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig, clock utils.Clock) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		clock:    clock,
	}
}

// Login verifies credentials, refuses disabled accounts and records the
// login time.
func (s *AuthService) Login(username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(validation.SanitizeUsername(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// RequestPasswordReset opens a reset window for the account and returns
// the token. Mail delivery is the caller's concern. Repeated requests
// inside the retry window are refused.
func (s *AuthService) RequestPasswordReset(email string) (string, error) {
	user, err := s.userRepo.FindByEmail(validation.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	now := s.clock.Now()
	if user.RequestDate != nil {
		retryAt := user.RequestDate.Add(time.Duration(s.cfg.PasswordResetRetryMinutes) * time.Minute)
		if now.Before(retryAt) {
			return "", ErrResetRequestTooSoon
		}
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	user.RequestToken = &token
	user.RequestDate = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ResetPassword sets a new password for the account holding the token,
// provided the token is still inside its lifetime and the new password
// passes the password policy.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	user, err := s.userRepo.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	now := s.clock.Now()
	if user.RequestDate == nil || now.After(user.RequestDate.Add(time.Duration(s.cfg.PasswordResetHours)*time.Hour)) {
		return ErrResetTokenExpired
	}

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidatePassword(newPassword, s.cfg.PasswordMinLength) {
		verrs.Add("password", fmt.Sprintf("must be at least %d characters and contain upper case, lower case, a digit and a special character", s.cfg.PasswordMinLength))
	}
	if verrs.Any() {
		return verrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashed)
	user.RequestToken = nil
	user.RequestDate = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
