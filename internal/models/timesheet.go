package models

import "time"

// Timesheet is one logged work session. End nil means the session is
// still running; Duration is nil exactly while End is nil and otherwise
// holds End-Start in whole minutes.
type Timesheet struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;index" json:"user_id"`
	ProjectID  uint64     `gorm:"not null;index" json:"project_id"`
	ActivityID uint64     `gorm:"not null;index" json:"activity_id"`
	Start      time.Time  `gorm:"column:start_time;not null;index" json:"start"`
	End        *time.Time `gorm:"column:end_time;index" json:"end"`
	Duration   *int       `json:"duration"`
	Comment    string     `gorm:"type:text" json:"comment"`
	ModifiedAt time.Time  `gorm:"autoUpdateTime" json:"modified_at"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project  Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	Tags     []Tag    `gorm:"many2many:timesheet_tags;" json:"tags,omitempty"`
}

// Running reports whether the session has not been stopped yet.
func (t *Timesheet) Running() bool {
	return t.End == nil
}

// TimesheetTag attaches a tag to a timesheet entry.
type TimesheetTag struct {
	TimesheetID uint64 `gorm:"primarykey" json:"timesheet_id"`
	TagID       uint64 `gorm:"primarykey" json:"tag_id"`
}
