package models

type Team struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(180);uniqueIndex;not null" json:"name"`
	Color string `gorm:"type:varchar(7)" json:"color"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember links a user to a team. TeamLead is a per-membership flag,
// not a role: a user with RoleUser can still lead a team.
type TeamMember struct {
	TeamID   uint64 `gorm:"primarykey" json:"team_id"`
	UserID   uint64 `gorm:"primarykey" json:"user_id"`
	TeamLead bool   `gorm:"not null;default:false" json:"teamlead"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
