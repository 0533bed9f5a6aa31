package database

import "gorm.io/gorm"

// Visible restricts a listing to rows with visible=1. Direct lookups by
// id never apply this scope: visibility only filters selection lists.
func Visible(visibleOnly bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !visibleOnly {
			return db
		}
		return db.Where("visible = ?", true)
	}
}

// Paginate applies offset/limit to a listing query.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
