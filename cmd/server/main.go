package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/mkessler/timetrack/internal/config"
	"github.com/mkessler/timetrack/internal/constants"
	"github.com/mkessler/timetrack/internal/database"
	"github.com/mkessler/timetrack/internal/handlers"
	"github.com/mkessler/timetrack/internal/middleware"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/services"
	"github.com/mkessler/timetrack/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.CSRF(middleware.CSRFConfig{AllowedOrigins: cfg.AllowedOrigins}))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	tagRepo := repository.NewTagRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	// Initialize services
	clock := utils.SystemClock{}
	authService := services.NewAuthService(userRepo, services.AuthConfig{
		PasswordMinLength:         cfg.PasswordMinLength,
		PasswordResetHours:        cfg.PasswordResetHours,
		PasswordResetRetryMinutes: cfg.PasswordResetRetryMinutes,
	}, clock)
	userService := services.NewUserService(userRepo, services.UserConfig{
		LoginMinLength:    cfg.LoginMinLength,
		PasswordMinLength: cfg.PasswordMinLength,
	}, clock)
	teamService := services.NewTeamService(teamRepo)
	customerService := services.NewCustomerService(customerRepo)
	projectService := services.NewProjectService(projectRepo, customerRepo, activityRepo)
	activityService := services.NewActivityService(activityRepo, projectRepo)
	tagService := services.NewTagService(tagRepo)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo, activityRepo, tagRepo, userRepo, clock)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	customerHandler := handlers.NewCustomerHandler(customerService, projectService)
	projectHandler := handlers.NewProjectHandler(projectService, activityService)
	activityHandler := handlers.NewActivityHandler(activityService)
	tagHandler := handlers.NewTagHandler(tagService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Timetrack API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/password-forgotten", authHandler.PasswordForgotten)
			auth.POST("/password-reset", authHandler.PasswordReset)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User routes (protected; writes are admin only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", middleware.RequireAdmin(), userHandler.CreateUser)
			users.PUT("/:id", middleware.RequireAdmin(), userHandler.UpdateUser)
		}

		// Team routes (protected; listing needs team lead, writes admin)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth())
		{
			teams.GET("", middleware.RequireTeamLead(), teamHandler.ListTeams)
			teams.GET("/:id", middleware.RequireTeamLead(), teamHandler.GetTeam)
			teams.POST("", middleware.RequireAdmin(), teamHandler.CreateTeam)
			teams.PUT("/:id", middleware.RequireAdmin(), teamHandler.UpdateTeam)
			teams.DELETE("/:id", middleware.RequireAdmin(), teamHandler.DeleteTeam)
		}

		// Customer routes (protected; writes are admin only)
		customers := api.Group("/customers")
		customers.Use(middleware.RequireAuth())
		{
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.GET("/:id/projects", customerHandler.ListCustomerProjects)
			customers.POST("", middleware.RequireAdmin(), customerHandler.CreateCustomer)
			customers.PUT("/:id", middleware.RequireAdmin(), customerHandler.UpdateCustomer)
			customers.DELETE("/:id", middleware.RequireAdmin(), customerHandler.DeleteCustomer)
		}

		// Project routes (protected; writes are admin only)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/activities", projectHandler.ListProjectActivities)
			projects.POST("", middleware.RequireAdmin(), projectHandler.CreateProject)
			projects.PUT("/:id", middleware.RequireAdmin(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireAdmin(), projectHandler.DeleteProject)
		}

		// Activity routes (protected; writes are admin only)
		activities := api.Group("/activities")
		activities.Use(middleware.RequireAuth())
		{
			activities.GET("", activityHandler.ListActivities)
			activities.GET("/:id", activityHandler.GetActivity)
			activities.POST("", middleware.RequireAdmin(), activityHandler.CreateActivity)
			activities.PUT("/:id", middleware.RequireAdmin(), activityHandler.UpdateActivity)
			activities.DELETE("/:id", middleware.RequireAdmin(), activityHandler.DeleteActivity)
		}

		// Tag routes (protected; writes are admin only)
		tags := api.Group("/tags")
		tags.Use(middleware.RequireAuth())
		{
			tags.GET("", tagHandler.ListTags)
			tags.GET("/:id", tagHandler.GetTag)
			tags.POST("", middleware.RequireAdmin(), tagHandler.CreateTag)
			tags.PUT("/:id", middleware.RequireAdmin(), tagHandler.UpdateTag)
			tags.DELETE("/:id", middleware.RequireAdmin(), tagHandler.DeleteTag)
		}

		// Timesheet routes (protected)
		timesheets := api.Group("/timesheets")
		timesheets.Use(middleware.RequireAuth())
		{
			timesheets.GET("", timesheetHandler.ListTimesheets)
			timesheets.GET("/export", timesheetHandler.ExportTimesheets)
			timesheets.GET("/active", timesheetHandler.GetActiveTimesheet)
			timesheets.POST("", timesheetHandler.CreateTimesheet)
			timesheets.GET("/:id", middleware.RequireTimesheetAccess(), timesheetHandler.GetTimesheet)
			timesheets.PUT("/:id", middleware.RequireTimesheetAccess(), timesheetHandler.UpdateTimesheet)
			timesheets.DELETE("/:id", middleware.RequireTimesheetAccess(), timesheetHandler.DeleteTimesheet)
			timesheets.PATCH("/:id/stop", middleware.RequireTimesheetAccess(), timesheetHandler.StopTimesheet)
			timesheets.POST("/:id/restart", middleware.RequireTimesheetAccess(), timesheetHandler.RestartTimesheet)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
