package constants

// Session and context keys
const (
	SessionCookieName = "timetrack_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRoleID  = "role_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Field length bounds shared by the validators
const (
	NameMinLength    = 5
	NameMaxLength    = 180
	EmailMinLength   = 5
	EmailMaxLength   = 180
	ColorMaxLength   = 7
	NumberMaxLength  = 10
	CommentMaxLength = 500
)
