package dto

import (
	"time"

	"github.com/mkessler/timetrack/internal/models"
)

// UserDTO represents a user in API responses. The password hash and the
// reset-token state never leave the server.
type UserDTO struct {
	ID               uint64     `json:"id"`
	Username         string     `json:"username"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Enabled          bool       `json:"enabled"`
	RoleID           uint64     `json:"role_id"`
	RegistrationDate time.Time  `json:"registration_date"`
	LastLogin        *time.Time `json:"last_login"`
}

// TeamMemberDTO represents one membership row of a team.
type TeamMemberDTO struct {
	User     UserDTO `json:"user"`
	TeamLead bool    `json:"teamlead"`
}

// TeamDTO represents a team in API responses.
type TeamDTO struct {
	ID      uint64          `json:"id"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Members []TeamMemberDTO `json:"members,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:               user.ID,
		Username:         user.Username,
		Name:             user.Name,
		Email:            user.Email,
		Enabled:          user.Enabled,
		RoleID:           user.RoleID,
		RegistrationDate: user.RegistrationDate,
		LastLogin:        user.LastLogin,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	dto := TeamDTO{
		ID:    team.ID,
		Name:  team.Name,
		Color: team.Color,
	}

	// Include members if preloaded
	if len(team.Members) > 0 {
		dto.Members = make([]TeamMemberDTO, len(team.Members))
		for i, member := range team.Members {
			dto.Members[i] = TeamMemberDTO{
				User:     ToUserDTO(member.User),
				TeamLead: member.TeamLead,
			}
		}
	}

	return dto
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, team := range teams {
		dtos[i] = ToTeamDTO(team)
	}
	return dtos
}
