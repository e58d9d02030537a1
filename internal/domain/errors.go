package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidKind   = errors.New("invalid event kind")
	ErrInvalidBugID  = errors.New("bug id must be a positive number")
	ErrEmptyTitle    = errors.New("bug title must not be empty")
	ErrEmptyAssignee = errors.New("assignee must not be empty for a reassignment event")
)
