package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTestEnv(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
	)
	require.NoError(t, err)

	clock := &utils.FixedClock{Time: time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)}
	service := NewUserService(repository.NewUserRepository(db), UserConfig{
		LoginMinLength:    5,
		PasswordMinLength: 8,
	}, clock)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, service
}

func TestUserService_CreateUser(t *testing.T) {
	_, service := setupUserTestEnv(t)

	user, err := service.CreateUser(CreateUserInput{
		Username: "johnd",
		Name:     "John Doe",
		Email:    "john.doe@example.com",
		Password: "Sup3rSecret!",
		RoleID:   models.RoleUser,
		Enabled:  true,
	})
	require.NoError(t, err)
	require.Equal(t, "johnd", user.Username)
	require.NotEqual(t, "Sup3rSecret!", user.PasswordHash)
	require.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local), user.RegistrationDate)
}

func TestUserService_CreateUserShortUsername(t *testing.T) {
	db, service := setupUserTestEnv(t)

	// Four characters against a five minimum: rejected, nothing stored.
	_, err := service.CreateUser(CreateUserInput{
		Username: "john",
		Email:    "john@example.com",
		Password: "Sup3rSecret!",
		RoleID:   models.RoleUser,
		Enabled:  true,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("username"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUserService_CreateUserCollectsAllErrors(t *testing.T) {
	_, service := setupUserTestEnv(t)

	_, err := service.CreateUser(CreateUserInput{
		Username: "ab",
		Email:    "not-an-email",
		Password: "weak",
		RoleID:   9,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("username"))
	require.True(t, verrs.Has("email"))
	require.True(t, verrs.Has("password"))
	require.True(t, verrs.Has("role"))
}

func TestUserService_CreateUserDuplicateUsername(t *testing.T) {
	_, service := setupUserTestEnv(t)

	input := CreateUserInput{
		Username: "johnd",
		Email:    "john@example.com",
		Password: "Sup3rSecret!",
		RoleID:   models.RoleUser,
		Enabled:  true,
	}
	_, err := service.CreateUser(input)
	require.NoError(t, err)

	input.Email = "john2@example.com"
	_, err = service.CreateUser(input)
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("username"))
}

func TestUserService_UpdateUserKeepsPassword(t *testing.T) {
	_, service := setupUserTestEnv(t)

	user, err := service.CreateUser(CreateUserInput{
		Username: "johnd",
		Email:    "john@example.com",
		Password: "Sup3rSecret!",
		RoleID:   models.RoleUser,
		Enabled:  true,
	})
	require.NoError(t, err)
	originalHash := user.PasswordHash

	updated, err := service.UpdateUser(user.ID, UpdateUserInput{
		Name:    "John Doe",
		Email:   "john@example.com",
		RoleID:  models.RoleTeamLead,
		Enabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, originalHash, updated.PasswordHash)
	require.Equal(t, models.RoleTeamLead, updated.RoleID)
}

func TestUserService_GetUserForViewer(t *testing.T) {
	db, service := setupUserTestEnv(t)

	lead, err := service.CreateUser(CreateUserInput{
		Username: "leader", Email: "leader@example.com", Password: "Sup3rSecret!", RoleID: models.RoleTeamLead, Enabled: true,
	})
	require.NoError(t, err)
	member, err := service.CreateUser(CreateUserInput{
		Username: "member", Email: "member@example.com", Password: "Sup3rSecret!", RoleID: models.RoleUser, Enabled: true,
	})
	require.NoError(t, err)
	outsider, err := service.CreateUser(CreateUserInput{
		Username: "outsider", Email: "outsider@example.com", Password: "Sup3rSecret!", RoleID: models.RoleUser, Enabled: true,
	})
	require.NoError(t, err)

	team := models.Team{Name: "Led demo team"}
	require.NoError(t, db.Create(&team).Error)
	require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: lead.ID, TeamLead: true}).Error)
	require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID}).Error)

	viewer := policy.Viewer{UserID: lead.ID, RoleID: models.RoleTeamLead}

	got, err := service.GetUserForViewer(member.ID, viewer)
	require.NoError(t, err)
	require.Equal(t, member.ID, got.ID)

	_, err = service.GetUserForViewer(outsider.ID, viewer)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Plain users only reach themselves.
	self := policy.Viewer{UserID: outsider.ID, RoleID: models.RoleUser}
	_, err = service.GetUserForViewer(member.ID, self)
	require.ErrorIs(t, err, ErrUserNotFound)
	got, err = service.GetUserForViewer(outsider.ID, self)
	require.NoError(t, err)
	require.Equal(t, outsider.ID, got.ID)
}
