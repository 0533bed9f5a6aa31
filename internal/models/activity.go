package models

import "time"

// Activity is a bookable kind of work. ProjectID nil marks a global
// activity usable by any project that allows global activities.
type Activity struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID *uint64   `gorm:"index" json:"project_id"`
	Name      string    `gorm:"type:varchar(180);not null" json:"name"`
	Color     string    `gorm:"type:varchar(7)" json:"color"`
	Number    string    `gorm:"type:varchar(10)" json:"number"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Visible   bool      `gorm:"not null;default:true" json:"visible"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Teams   []Team   `gorm:"many2many:activity_teams;" json:"teams,omitempty"`
}

// Global reports whether the activity is bound to no project.
func (a *Activity) Global() bool {
	return a.ProjectID == nil
}

// ActivityTeam scopes an activity to a team.
type ActivityTeam struct {
	ActivityID uint64 `gorm:"primarykey" json:"activity_id"`
	TeamID     uint64 `gorm:"primarykey" json:"team_id"`
}
