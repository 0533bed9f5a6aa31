// Package policy maps the caller's role onto a data access scope. The
// scope decides which repository query variant a handler composes: the
// effective listing for a viewer is always the rows with no team links
// plus either all team-linked rows (admin) or the rows reachable
// through the viewer's team memberships.
package policy

import "github.com/mkessler/timetrack/internal/models"

// AccessScope is the capability a role grants over scoped data.
type AccessScope int

const (
	// ScopeOwn limits queries to the viewer's own rows.
	ScopeOwn AccessScope = iota
	// ScopeTeams widens queries to rows reachable via team membership.
	ScopeTeams
	// ScopeAll grants unscoped queries.
	ScopeAll
)

// Viewer identifies the authenticated caller for scoping decisions.
type Viewer struct {
	UserID uint64
	RoleID uint64
}

// Scope returns the access scope the viewer's role grants.
func (v Viewer) Scope() AccessScope {
	switch v.RoleID {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleTeamLead:
		return ScopeTeams
	default:
		return ScopeOwn
	}
}

// IsAdmin reports whether the viewer holds the admin role.
func (v Viewer) IsAdmin() bool {
	return v.RoleID == models.RoleAdmin
}

// IsTeamLead reports whether the viewer holds at least the team lead
// role. Admins pass this check as well.
func (v Viewer) IsTeamLead() bool {
	return v.RoleID == models.RoleTeamLead || v.RoleID == models.RoleAdmin
}
