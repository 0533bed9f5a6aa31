package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type timesheetRepoEnv struct {
	db   *gorm.DB
	repo TimesheetRepository

	user     models.User
	project  models.Project
	activity models.Activity
}

func setupTimesheetRepoEnv(t *testing.T) *timesheetRepoEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_loc=auto"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.Activity{},
		&models.Tag{},
		&models.Timesheet{},
		&models.TimesheetTag{},
	)
	require.NoError(t, err)

	env := &timesheetRepoEnv{db: db, repo: NewTimesheetRepository(db)}

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

func (env *timesheetRepoEnv) createEntry(t *testing.T, userID uint64, start time.Time, end *time.Time) models.Timesheet {
	t.Helper()
	ts := models.Timesheet{
		UserID:     userID,
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		Start:      start,
		End:        end,
	}
	require.NoError(t, env.repo.Create(&ts))
	return ts
}

func TestTimesheetRepository_CreateStoppingRunning(t *testing.T) {
	env := setupTimesheetRepoEnv(t)

	running := env.createEntry(t, env.user.ID, time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local), nil)

	ts := models.Timesheet{
		UserID:     env.user.ID,
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		Start:      time.Date(2024, 1, 2, 14, 0, 0, 0, time.Local),
	}
	require.NoError(t, env.repo.CreateStoppingRunning(&ts))

	stopped, err := env.repo.FindByID(running.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.End)
	require.Equal(t, ts.Start, *stopped.End)
	require.NotNil(t, stopped.Duration)
	require.Equal(t, 240, *stopped.Duration)

	// Another user's running entry is untouched.
	other := models.User{Username: "other", Email: "other@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, env.db.Create(&other).Error)
	otherRunning := env.createEntry(t, other.ID, time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local), nil)

	next := models.Timesheet{
		UserID:     env.user.ID,
		ProjectID:  env.project.ID,
		ActivityID: env.activity.ID,
		Start:      time.Date(2024, 1, 2, 16, 0, 0, 0, time.Local),
	}
	require.NoError(t, env.repo.CreateStoppingRunning(&next))

	untouched, err := env.repo.FindByID(otherRunning.ID)
	require.NoError(t, err)
	require.Nil(t, untouched.End)
}

func TestTimesheetRepository_ListFilters(t *testing.T) {
	env := setupTimesheetRepoEnv(t)

	end1 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	env.createEntry(t, env.user.ID, time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local), &end1)
	env.createEntry(t, env.user.ID, time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local), nil)

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)
	sheets, total, err := env.repo.List(TimesheetFilter{
		UserIDs: []uint64{env.user.ID},
		From:    &from,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, sheets, 1)

	sheets, total, err = env.repo.List(TimesheetFilter{RunningOnly: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.True(t, sheets[0].Running())

	customerID := env.project.CustomerID
	_, total, err = env.repo.List(TimesheetFilter{CustomerID: &customerID})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	// Pagination slices without changing the total.
	sheets, total, err = env.repo.List(TimesheetFilter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, sheets, 1)
}

func TestTimesheetRepository_UpdateTagsReplacesSet(t *testing.T) {
	env := setupTimesheetRepoEnv(t)

	ts := env.createEntry(t, env.user.ID, time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local), nil)
	tagA := models.Tag{Name: "Billable work", Visible: true}
	require.NoError(t, env.db.Create(&tagA).Error)
	tagB := models.Tag{Name: "Remote session", Visible: true}
	require.NoError(t, env.db.Create(&tagB).Error)

	require.NoError(t, env.repo.UpdateTags(ts.ID, []uint64{tagA.ID}))
	require.NoError(t, env.repo.UpdateTags(ts.ID, []uint64{tagB.ID}))

	var links []models.TimesheetTag
	require.NoError(t, env.db.Where("timesheet_id = ?", ts.ID).Find(&links).Error)
	require.Len(t, links, 1)
	require.Equal(t, tagB.ID, links[0].TagID)
}

// TestTimesheetRepository_UpdateTagsTransaction checks the statement
// shape against a mocked connection: the delete and the insert must run
// inside one transaction.
func TestTimesheetRepository_UpdateTagsTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	repo := NewTimesheetRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `timesheet_tags`").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `timesheet_tags`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateTags(7, []uint64{1, 2}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimesheetRepository_DeleteRemovesTagLinks(t *testing.T) {
	env := setupTimesheetRepoEnv(t)

	ts := env.createEntry(t, env.user.ID, time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local), nil)
	tag := models.Tag{Name: "Billable work", Visible: true}
	require.NoError(t, env.db.Create(&tag).Error)
	require.NoError(t, env.repo.UpdateTags(ts.ID, []uint64{tag.ID}))

	require.NoError(t, env.repo.Delete(ts.ID))

	_, err := env.repo.FindByID(ts.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var links []models.TimesheetTag
	require.NoError(t, env.db.Where("timesheet_id = ?", ts.ID).Find(&links).Error)
	require.Empty(t, links)
}
