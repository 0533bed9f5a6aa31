package models

import "time"

type Project struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	CustomerID uint64     `gorm:"not null;index" json:"customer_id"`
	Name       string     `gorm:"type:varchar(180);not null" json:"name"`
	Color      string     `gorm:"type:varchar(7)" json:"color"`
	Number     string     `gorm:"type:varchar(10)" json:"number"`
	Comment    string     `gorm:"type:text" json:"comment"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`

	// GlobalActivities controls whether activities without a project may be
	// booked on this project. When false, only the explicitly allowed
	// activities (project_activities) are valid.
	GlobalActivities bool      `gorm:"not null;default:true" json:"global_activities"`
	Visible          bool      `gorm:"not null;default:true" json:"visible"`
	CreatedAt        time.Time `json:"created_at"`

	// Relations
	Customer   Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Activities []Activity `gorm:"many2many:project_activities;" json:"activities,omitempty"`
	Teams      []Team     `gorm:"many2many:project_teams;" json:"teams,omitempty"`
}

// ProjectTeam scopes a project to a team.
type ProjectTeam struct {
	ProjectID uint64 `gorm:"primarykey" json:"project_id"`
	TeamID    uint64 `gorm:"primarykey" json:"team_id"`
}

// ProjectActivity is the allowed-activities set consulted when the
// project's GlobalActivities flag is off.
type ProjectActivity struct {
	ProjectID  uint64 `gorm:"primarykey" json:"project_id"`
	ActivityID uint64 `gorm:"primarykey" json:"activity_id"`
}
