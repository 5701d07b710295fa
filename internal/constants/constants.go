package constants

// Session / context keys
const (
	ContextKeyUserID  = "user_id"
	SessionCookieName = "workspace_session"
)

// Auth
const (
	MinPasswordLength = 8
)

// Invite codes
const (
	InviteCodeLength = 6
)

// Task ordering. New tasks are appended with a gap so manual reordering can
// insert between neighbours without rewriting the whole column.
const (
	PositionStep = 1000
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
