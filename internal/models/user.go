package models

import "time"

type User struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	Username         string     `gorm:"type:varchar(180);uniqueIndex;not null" json:"username"`
	Name             string     `gorm:"type:varchar(180)" json:"name"`
	Email            string     `gorm:"type:varchar(180);uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null" json:"-"`
	Enabled          bool       `gorm:"not null;default:true" json:"enabled"`
	RegistrationDate time.Time  `json:"registration_date"`
	RoleID           uint64     `gorm:"not null;default:1" json:"role_id"`
	LastLogin        *time.Time `json:"last_login"`

	// Password-reset state; both nil outside an open reset window.
	RequestToken *string    `gorm:"type:varchar(64);index" json:"-"`
	RequestDate  *time.Time `json:"-"`

	// Relations
	Role        Role         `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"-"`
	Timesheets  []Timesheet  `gorm:"foreignKey:UserID" json:"-"`
}
