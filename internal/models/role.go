package models

// Role is a fixed reference row. The three rows are seeded at migration
// time and never change at runtime.
type Role struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

const (
	RoleUser     uint64 = 1
	RoleTeamLead uint64 = 2
	RoleAdmin    uint64 = 3
)

// SeedRoles is the reference set inserted by database.Migrate.
var SeedRoles = []Role{
	{ID: RoleUser, Name: "user"},
	{ID: RoleTeamLead, Name: "teamlead"},
	{ID: RoleAdmin, Name: "admin"},
}
