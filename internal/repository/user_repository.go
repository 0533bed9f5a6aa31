package repository

import (
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return apierrors.Persistence("insert user", r.db.Create(user).Error)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email address
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken finds a user by password-reset token
func (r *GormUserRepository) FindByResetToken(token string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("request_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll lists every user
func (r *GormUserRepository) FindAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindAllByTeamLeaderID lists users that share a team the leader leads.
// The leader themselves is included through their own membership row.
func (r *GormUserRepository) FindAllByTeamLeaderID(leaderID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.Distinct("users.*").
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Joins("JOIN team_members leads ON leads.team_id = team_members.team_id").
		Where("leads.user_id = ? AND leads.team_lead = ?", leaderID, true).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindOneByIDAndTeamLeaderID finds a user only if reachable through a
// team the leader leads.
func (r *GormUserRepository) FindOneByIDAndTeamLeaderID(id, leaderID uint64) (*models.User, error) {
	var user models.User
	err := r.db.
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Joins("JOIN team_members leads ON leads.team_id = team_members.team_id").
		Where("users.id = ? AND leads.user_id = ? AND leads.team_lead = ?", id, leaderID, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return apierrors.Persistence("update user", r.db.Save(user).Error)
}
