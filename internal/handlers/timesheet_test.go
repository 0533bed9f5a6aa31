package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/mkessler/timetrack/internal/constants"
	"github.com/mkessler/timetrack/internal/database"
	"github.com/mkessler/timetrack/internal/dto"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/services"
	"github.com/mkessler/timetrack/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type timesheetTestEnv struct {
	db     *gorm.DB
	clock  *utils.FixedClock
	router *gin.Engine

	user     models.User
	admin    models.User
	project  models.Project
	activity models.Activity
}

func setupTimesheetTestEnv(t *testing.T) *timesheetTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Customer{},
		&models.Project{},
		&models.ProjectActivity{},
		&models.Activity{},
		&models.Tag{},
		&models.Timesheet{},
		&models.TimesheetTag{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	clock := &utils.FixedClock{Time: time.Date(2024, 1, 2, 15, 0, 0, 0, time.Local)}
	service := services.NewTimesheetService(
		repository.NewTimesheetRepository(db),
		repository.NewProjectRepository(db),
		repository.NewActivityRepository(db),
		repository.NewTagRepository(db),
		repository.NewUserRepository(db),
		clock,
	)
	handler := NewTimesheetHandler(service)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Test-only login endpoint to obtain a session cookie.
	r.POST("/test/login/:user/:role", func(c *gin.Context) {
		session := sessions.Default(c)
		var userID, roleID uint64
		fmt.Sscan(c.Param("user"), &userID)
		fmt.Sscan(c.Param("role"), &roleID)
		session.Set(constants.ContextKeyUserID, userID)
		session.Set(constants.ContextKeyRoleID, roleID)
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	timesheets := r.Group("/api/timesheets")
	timesheets.Use(middleware.RequireAuth())
	{
		timesheets.GET("", handler.ListTimesheets)
		timesheets.GET("/export", handler.ExportTimesheets)
		timesheets.GET("/active", handler.GetActiveTimesheet)
		timesheets.POST("", handler.CreateTimesheet)
		timesheets.GET("/:id", middleware.RequireTimesheetAccess(), handler.GetTimesheet)
		timesheets.PUT("/:id", middleware.RequireTimesheetAccess(), handler.UpdateTimesheet)
		timesheets.DELETE("/:id", middleware.RequireTimesheetAccess(), handler.DeleteTimesheet)
		timesheets.PATCH("/:id/stop", middleware.RequireTimesheetAccess(), handler.StopTimesheet)
		timesheets.POST("/:id/restart", middleware.RequireTimesheetAccess(), handler.RestartTimesheet)
	}

	env := &timesheetTestEnv{db: db, clock: clock, router: r}

	env.user = models.User{Username: "worker", Email: "worker@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, db.Create(&env.user).Error)
	env.admin = models.User{Username: "boss", Email: "boss@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleAdmin}
	require.NoError(t, db.Create(&env.admin).Error)

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

// login returns the session cookies for the given account.
func (env *timesheetTestEnv) login(t *testing.T, user models.User) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/test/login/%d/%d", user.ID, user.RoleID), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (env *timesheetTestEnv) request(t *testing.T, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestTimesheetHandler_CreateAndStop(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "2024-01-02 13:00",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
		"comment":     "afternoon session",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Nil(t, created.End)
	require.Nil(t, created.Duration)
	require.Equal(t, env.user.ID, created.UserID)

	w = env.request(t, http.MethodPatch, fmt.Sprintf("/api/timesheets/%d/stop", created.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var stopped dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stopped))
	require.NotNil(t, stopped.End)
	require.NotNil(t, stopped.Duration)
	require.Equal(t, 120, *stopped.Duration)
	require.NotNil(t, stopped.DurationText)
	require.Equal(t, "02:00", *stopped.DurationText)
}

func TestTimesheetHandler_RequiresAuth(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/timesheets", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimesheetHandler_ValidationErrors(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "not-a-date",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "start")
}

func TestTimesheetHandler_OwnerScoping(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	ownerCookies := env.login(t, env.user)

	w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "2024-01-02 10:00",
		"end":         "2024-01-02 11:00",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
	}, ownerCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Another plain user gets a 404, not a 403.
	other := models.User{Username: "other", Email: "other@example.com", PasswordHash: "x", Enabled: true, RoleID: models.RoleUser}
	require.NoError(t, env.db.Create(&other).Error)
	otherCookies := env.login(t, other)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/timesheets/%d", created.ID), nil, otherCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	// An admin reaches the entry.
	adminCookies := env.login(t, env.admin)
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/timesheets/%d", created.ID), nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTimesheetHandler_RestartCopiesEntry(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "2024-01-02 08:00",
		"end":         "2024-01-02 09:00",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
		"comment":     "morning session",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var source dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &source))

	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/timesheets/%d/restart", source.ID), nil, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var restarted dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &restarted))
	require.Nil(t, restarted.End)
	require.Equal(t, source.ProjectID, restarted.ProjectID)
	require.Equal(t, source.ActivityID, restarted.ActivityID)
	require.Equal(t, "morning session", restarted.Comment)
}

func TestTimesheetHandler_ListPagination(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	for hour := 8; hour < 12; hour++ {
		w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
			"start":       fmt.Sprintf("2024-01-02 %02d:00", hour),
			"end":         fmt.Sprintf("2024-01-02 %02d:30", hour),
			"project_id":  env.project.ID,
			"activity_id": env.activity.ID,
		}, cookies)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, http.MethodGet, "/api/timesheets?page=1&page_size=3", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TimesheetListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, int64(4), response.TotalCount)
	require.Equal(t, 2, response.TotalPages)
	require.Len(t, response.Timesheets, 3)
}

func TestTimesheetHandler_ExportCSV(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	w := env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "2024-01-02 08:00",
		"end":         "2024-01-02 09:30",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/timesheets/export", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "Test project")
	require.Contains(t, w.Body.String(), "01:30")
}

func TestTimesheetHandler_ActiveEntry(t *testing.T) {
	env := setupTimesheetTestEnv(t)
	cookies := env.login(t, env.user)

	w := env.request(t, http.MethodGet, "/api/timesheets/active", nil, cookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodPost, "/api/timesheets", map[string]any{
		"start":       "2024-01-02 14:00",
		"project_id":  env.project.ID,
		"activity_id": env.activity.ID,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/timesheets/active", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var active dto.TimesheetDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	require.Nil(t, active.End)
}
