package models

import "time"

type Customer struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(180);not null" json:"name"`
	Color     string    `gorm:"type:varchar(7)" json:"color"`
	Number    string    `gorm:"type:varchar(10)" json:"number"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Visible   bool      `gorm:"not null;default:true" json:"visible"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Projects []Project `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
	Teams    []Team    `gorm:"many2many:customer_teams;" json:"teams,omitempty"`
}

// CustomerTeam scopes a customer to a team. A customer with no rows here
// is visible to everyone.
type CustomerTeam struct {
	CustomerID uint64 `gorm:"primarykey" json:"customer_id"`
	TeamID     uint64 `gorm:"primarykey" json:"team_id"`
}
