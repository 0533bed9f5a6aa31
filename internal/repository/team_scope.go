package repository

import "gorm.io/gorm"

// teamScope builds the three scoping query variants shared by every
// entity linked to teams through a join table. Rows without links are
// globally visible; linked rows are reachable either wholesale (admin)
// or through the viewer's memberships.
type teamScope struct {
	table     string // entity table, e.g. "customers"
	joinTable string // link table, e.g. "customer_teams"
	fk        string // entity column in the link table, e.g. "customer_id"
}

// notInTeam restricts to rows with zero team links.
func (s teamScope) notInTeam(db *gorm.DB) *gorm.DB {
	return db.Where("NOT EXISTS (SELECT 1 FROM " + s.joinTable +
		" WHERE " + s.joinTable + "." + s.fk + " = " + s.table + ".id)")
}

// haveTeams restricts to rows with at least one team link, deduplicated.
func (s teamScope) haveTeams(db *gorm.DB) *gorm.DB {
	return db.Distinct(s.table + ".*").
		Joins("JOIN " + s.joinTable + " ON " + s.joinTable + "." + s.fk + " = " + s.table + ".id")
}

// byUserID restricts to rows reachable through the user's team
// memberships, deduplicated.
func (s teamScope) byUserID(db *gorm.DB, userID uint64) *gorm.DB {
	return db.Distinct(s.table+".*").
		Joins("JOIN "+s.joinTable+" ON "+s.joinTable+"."+s.fk+" = "+s.table+".id").
		Joins("JOIN team_members ON team_members.team_id = "+s.joinTable+".team_id").
		Where("team_members.user_id = ?", userID)
}
