package constants

// Context and session keys
const (
	ContextKeyUserID        = "user_id"
	ContextKeyProject       = "project"
	ContextKeyProjectMember = "project_member"
	ContextKeyTask          = "task"
	SessionKeyBoardID       = "board_id"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MinProjectNameLength is the shortest accepted project name.
const MinProjectNameLength = 4

// InviteCodeLength is the length of generated invitation codes.
const InviteCodeLength = 10

// DefaultInviteDurationSeconds is how long an invitation code stays valid
// when the caller does not specify a duration (10 minutes).
const DefaultInviteDurationSeconds = 600
