package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/mkessler/timetrack/internal/constants"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type timesheetTestEnv struct {
	db      *gorm.DB
	clock   *utils.FixedClock
	service *TimesheetService

	user     models.User
	project  models.Project
	activity models.Activity
}

func setupTimesheetTestEnv(t *testing.T) *timesheetTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_loc=auto"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Customer{},
		&models.CustomerTeam{},
		&models.Project{},
		&models.ProjectTeam{},
		&models.ProjectActivity{},
		&models.Activity{},
		&models.ActivityTeam{},
		&models.Tag{},
		&models.Timesheet{},
		&models.TimesheetTag{},
	)
	require.NoError(t, err)

	clock := &utils.FixedClock{Time: time.Date(2024, 1, 2, 15, 0, 0, 0, time.Local)}
	service := NewTimesheetService(
		repository.NewTimesheetRepository(db),
		repository.NewProjectRepository(db),
		repository.NewActivityRepository(db),
		repository.NewTagRepository(db),
		repository.NewUserRepository(db),
		clock,
	)

	env := &timesheetTestEnv{db: db, clock: clock, service: service}

	env.user = models.User{Username: "worker", Email: "worker@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, db.Create(&env.user).Error)

	customer := models.Customer{Name: "Test customer", Visible: true}
	require.NoError(t, db.Create(&customer).Error)

	env.project = models.Project{CustomerID: customer.ID, Name: "Test project", GlobalActivities: true, Visible: true}
	require.NoError(t, db.Create(&env.project).Error)

	env.activity = models.Activity{Name: "Test activity", Visible: true}
	require.NoError(t, db.Create(&env.activity).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return env
}

func TestTimesheetService_CreateForceStopsRunning(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	running, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)
	require.True(t, running.Running())
	require.Nil(t, running.Duration)

	created, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 14:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)
	require.True(t, created.Running())

	// The earlier entry was stopped at the new entry's start: 4 hours.
	stopped, err := env.service.GetTimesheet(running.ID)
	require.NoError(t, err)
	require.False(t, stopped.Running())
	require.NotNil(t, stopped.Duration)
	require.Equal(t, 240, *stopped.Duration)
	require.Equal(t, created.Start, *stopped.End)
}

func TestTimesheetService_CreateForceStopClampsEarlierDay(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	running, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-01 22:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	_, err = env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 09:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	// A running entry from an earlier day is closed at 23:59 of its own
	// start date, never at the new start.
	stopped, err := env.service.GetTimesheet(running.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.End)
	require.Equal(t, time.Date(2024, 1, 1, 23, 59, 0, 0, time.Local), *stopped.End)
	require.Equal(t, 119, *stopped.Duration)
}

func TestTimesheetService_StopSameDay(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	running, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 13:30",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	env.clock.Time = time.Date(2024, 1, 2, 15, 30, 45, 0, time.Local)
	stopped, err := env.service.StopTimesheet(running.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.End)
	require.Equal(t, time.Date(2024, 1, 2, 15, 30, 0, 0, time.Local), *stopped.End)
	require.Equal(t, 120, *stopped.Duration)
}

func TestTimesheetService_StopClampsToStartDate(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	running, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 09:09",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	// Stopping on a later day closes at 23:59 of the start date.
	env.clock.Time = time.Date(2024, 1, 3, 8, 0, 0, 0, time.Local)
	stopped, err := env.service.StopTimesheet(running.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.End)
	require.Equal(t, time.Date(2024, 1, 2, 23, 59, 0, 0, time.Local), *stopped.End)
	require.Equal(t, 890, *stopped.Duration)
}

func TestTimesheetService_StopNotRunning(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	ts, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		End:        "2024-01-02 11:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)
	require.False(t, ts.Running())

	_, err = env.service.StopTimesheet(ts.ID)
	require.ErrorIs(t, err, ErrTimesheetNotRunning)
}

func TestTimesheetService_RestartKeepsSingleRunning(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	tag := models.Tag{Name: "Billable work", Visible: true}
	require.NoError(t, env.db.Create(&tag).Error)

	source, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 08:00",
		End:        "2024-01-02 09:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		Comment:    "morning session",
		TagIDs:     []uint64{tag.ID},
	})
	require.NoError(t, err)

	other, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 14:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)
	require.True(t, other.Running())

	env.clock.Time = time.Date(2024, 1, 2, 16, 0, 30, 0, time.Local)
	restarted, err := env.service.RestartTimesheet(source.ID, env.user.ID)
	require.NoError(t, err)
	require.True(t, restarted.Running())
	require.Equal(t, time.Date(2024, 1, 2, 16, 0, 0, 0, time.Local), restarted.Start)
	require.Equal(t, "morning session", restarted.Comment)
	require.Len(t, restarted.Tags, 1)
	require.Equal(t, tag.ID, restarted.Tags[0].ID)

	// The restart force-stopped the other running entry.
	var running []models.Timesheet
	require.NoError(t, env.db.Where("user_id = ? AND end_time IS NULL", env.user.ID).Find(&running).Error)
	require.Len(t, running, 1)
	require.Equal(t, restarted.ID, running[0].ID)
}

func TestTimesheetService_ActivityBoundToOtherProject(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	customer := models.Customer{Name: "Other customer", Visible: true}
	require.NoError(t, env.db.Create(&customer).Error)
	otherProject := models.Project{CustomerID: customer.ID, Name: "Other project", GlobalActivities: true, Visible: true}
	require.NoError(t, env.db.Create(&otherProject).Error)
	bound := models.Activity{Name: "Bound activity", ProjectID: &otherProject.ID, Visible: true}
	require.NoError(t, env.db.Create(&bound).Error)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: bound.ID,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("activity"))

	// Nothing was inserted.
	var count int64
	require.NoError(t, env.db.Model(&models.Timesheet{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestTimesheetService_GlobalActivityNeedsProjectFlag(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	require.NoError(t, env.db.Model(&models.Project{}).
		Where("id = ?", env.project.ID).
		Update("global_activities", false).Error)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("activity"))
}

func TestTimesheetService_RestrictedProjectAllowedSet(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	bound := models.Activity{Name: "Bound activity", ProjectID: &env.project.ID, Visible: true}
	require.NoError(t, env.db.Create(&bound).Error)
	other := models.Activity{Name: "Unlisted activity", ProjectID: &env.project.ID, Visible: true}
	require.NoError(t, env.db.Create(&other).Error)

	require.NoError(t, env.db.Model(&models.Project{}).
		Where("id = ?", env.project.ID).
		Update("global_activities", false).Error)
	require.NoError(t, env.db.Create(&models.ProjectActivity{ProjectID: env.project.ID, ActivityID: bound.ID}).Error)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: bound.ID,
	})
	require.NoError(t, err)

	_, err = env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 11:00",
		ProjectID:  env.project.ID,
		ActivityID: other.ID,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("activity"))
}

func TestTimesheetService_EndBeforeStart(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 12:00",
		End:        "2024-01-02 11:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("end"))
}

func TestTimesheetService_ListScoping(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	other := models.User{Username: "other", Email: "other@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, env.db.Create(&other).Error)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 08:00",
		End:        "2024-01-02 09:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)
	_, err = env.service.CreateTimesheet(other.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		End:        "2024-01-02 11:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	// A plain user only sees their own entries even when asking for more.
	viewer := policy.Viewer{UserID: env.user.ID, RoleID: models.RoleUser}
	sheets, total, err := env.service.ListTimesheetsForViewer(viewer, repository.TimesheetFilter{
		UserIDs: []uint64{env.user.ID, other.ID},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, sheets, 1)
	require.Equal(t, env.user.ID, sheets[0].UserID)

	// An admin sees everything.
	admin := policy.Viewer{UserID: other.ID, RoleID: models.RoleAdmin}
	_, total, err = env.service.ListTimesheetsForViewer(admin, repository.TimesheetFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestTimesheetService_TeamLeadScoping(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	lead := models.User{Username: "leader", Email: "leader@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleTeamLead}
	require.NoError(t, env.db.Create(&lead).Error)
	outsider := models.User{Username: "outsider", Email: "outsider@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, env.db.Create(&outsider).Error)

	team := models.Team{Name: "Led demo team"}
	require.NoError(t, env.db.Create(&team).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{TeamID: team.ID, UserID: lead.ID, TeamLead: true}).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{TeamID: team.ID, UserID: env.user.ID}).Error)

	for _, userID := range []uint64{env.user.ID, outsider.ID} {
		_, err := env.service.CreateTimesheet(userID, TimesheetInput{
			Start:      "2024-01-02 08:00",
			End:        "2024-01-02 09:00",
			ProjectID:  env.project.ID,
			ActivityID: env.activity.ID,
		})
		require.NoError(t, err)
	}

	viewer := policy.Viewer{UserID: lead.ID, RoleID: models.RoleTeamLead}
	sheets, total, err := env.service.ListTimesheetsForViewer(viewer, repository.TimesheetFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, env.user.ID, sheets[0].UserID)

	// Asking for a user outside the led teams yields nothing.
	_, total, err = env.service.ListTimesheetsForViewer(viewer, repository.TimesheetFilter{
		UserIDs: []uint64{outsider.ID},
	})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestTimesheetService_GetActive(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	_, err := env.service.GetActiveTimesheet(env.user.ID)
	require.ErrorIs(t, err, ErrTimesheetNotRunning)

	running, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
	})
	require.NoError(t, err)

	active, err := env.service.GetActiveTimesheet(env.user.ID)
	require.NoError(t, err)
	require.Equal(t, running.ID, active.ID)
}

func TestTimesheetService_CreateDedupesTagIDs(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	tag := models.Tag{Name: "Billable work", Visible: true}
	require.NoError(t, env.db.Create(&tag).Error)

	created, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		TagIDs:     []uint64{tag.ID, tag.ID},
	})
	require.NoError(t, err)
	require.Len(t, created.Tags, 1)

	var links []models.TimesheetTag
	require.NoError(t, env.db.Where("timesheet_id = ?", created.ID).Find(&links).Error)
	require.Len(t, links, 1)
}

func TestTimesheetService_CommentTooLong(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	_, err := env.service.CreateTimesheet(env.user.ID, TimesheetInput{
		Start:      "2024-01-02 10:00",
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		Comment:    strings.Repeat("x", constants.CommentMaxLength+1),
	})

	var verrs *apierrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("comment"))

	var count int64
	require.NoError(t, env.db.Model(&models.Timesheet{}).Count(&count).Error)
	require.Zero(t, count)
}
