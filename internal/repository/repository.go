package repository

import (
	"time"

	"github.com/mkessler/timetrack/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(email string) (*models.User, error)

	// FindByResetToken finds a user by password-reset token
	FindByResetToken(token string) (*models.User, error)

	// FindAll lists every user
	FindAll() ([]models.User, error)

	// FindAllByTeamLeaderID lists users sharing a team the leader leads
	FindAllByTeamLeaderID(leaderID uint64) ([]models.User, error)

	// FindOneByIDAndTeamLeaderID finds a user only if reachable through
	// a team the leader leads
	FindOneByIDAndTeamLeaderID(id, leaderID uint64) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindByName finds a team by its unique name
	FindByName(name string) (*models.Team, error)

	// FindAll lists every team with members preloaded
	FindAll() ([]models.Team, error)

	// FindAllByLeaderID lists teams the user leads
	FindAllByLeaderID(userID uint64) ([]models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete removes a team together with its membership and scoping links
	Delete(id uint64) error

	// UpdateMembers replaces the full membership set of a team
	UpdateMembers(teamID uint64, members []models.TeamMember) error
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(customer *models.Customer) error
	FindByID(id uint64) (*models.Customer, error)
	FindAll(visibleOnly bool) ([]models.Customer, error)

	// FindAllNotInTeam lists customers with zero team links
	FindAllNotInTeam(visibleOnly bool) ([]models.Customer, error)

	// FindAllHaveTeams lists customers with at least one team link,
	// deduplicated (admin view)
	FindAllHaveTeams(visibleOnly bool) ([]models.Customer, error)

	// FindAllByUserID lists customers reachable through the user's team
	// memberships, deduplicated
	FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Customer, error)

	Update(customer *models.Customer) error
	Delete(id uint64) error

	// UpdateTeams replaces the full team link set of a customer
	UpdateTeams(customerID uint64, teamIDs []uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)
	FindAll(visibleOnly bool) ([]models.Project, error)
	FindAllByCustomerID(customerID uint64, visibleOnly bool) ([]models.Project, error)
	FindAllNotInTeam(visibleOnly bool) ([]models.Project, error)
	FindAllHaveTeams(visibleOnly bool) ([]models.Project, error)
	FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uint64) error

	// UpdateTeams replaces the full team link set of a project
	UpdateTeams(projectID uint64, teamIDs []uint64) error

	// UpdateActivities replaces the allowed-activities set of a project
	UpdateActivities(projectID uint64, activityIDs []uint64) error

	// FindAllowedActivityIDs returns the allowed-activities set
	FindAllowedActivityIDs(projectID uint64) ([]uint64, error)
}

// ActivityRepository defines the interface for activity data access
type ActivityRepository interface {
	Create(activity *models.Activity) error
	FindByID(id uint64) (*models.Activity, error)
	FindAll(visibleOnly bool) ([]models.Activity, error)

	// FindAllGlobal lists activities bound to no project
	FindAllGlobal(visibleOnly bool) ([]models.Activity, error)

	// FindAllByProjectID lists activities bound to a project, optionally
	// including global ones
	FindAllByProjectID(projectID uint64, includeGlobal, visibleOnly bool) ([]models.Activity, error)

	FindAllNotInTeam(visibleOnly bool) ([]models.Activity, error)
	FindAllHaveTeams(visibleOnly bool) ([]models.Activity, error)
	FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Activity, error)
	Update(activity *models.Activity) error
	Delete(id uint64) error

	// UpdateTeams replaces the full team link set of an activity
	UpdateTeams(activityID uint64, teamIDs []uint64) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(tag *models.Tag) error
	FindByID(id uint64) (*models.Tag, error)
	FindByName(name string) (*models.Tag, error)
	FindAll(visibleOnly bool) ([]models.Tag, error)
	FindAllByIDs(ids []uint64) ([]models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint64) error
}

// TimesheetFilter holds filtering options for listing timesheets
type TimesheetFilter struct {
	UserIDs     []uint64
	ProjectID   *uint64
	ActivityID  *uint64
	CustomerID  *uint64
	From        *time.Time
	To          *time.Time
	RunningOnly bool
	Page        int
	PageSize    int
}

// TimesheetRepository defines the interface for timesheet data access
type TimesheetRepository interface {
	// Create inserts a timesheet row without side effects
	Create(ts *models.Timesheet) error

	// CreateStoppingRunning force-stops every running timesheet of the
	// same user, then inserts the new row, in a single transaction.
	CreateStoppingRunning(ts *models.Timesheet) error

	// FindByID finds a timesheet by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Timesheet, error)

	// FindRunningByUserID lists the user's running timesheets
	FindRunningByUserID(userID uint64) ([]models.Timesheet, error)

	// List retrieves timesheets with filtering and pagination. An empty
	// UserIDs set means no user restriction.
	List(filter TimesheetFilter) ([]models.Timesheet, int64, error)

	// Update updates a timesheet
	Update(ts *models.Timesheet) error

	// Delete hard-deletes a timesheet and its tag links
	Delete(id uint64) error

	// UpdateTags replaces the full tag set of a timesheet
	UpdateTags(timesheetID uint64, tagIDs []uint64) error
}
