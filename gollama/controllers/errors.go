package controllers

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidLogin    = errors.New("Invalid credentials")
	ErrBadFormat       = errors.New("Format not supported yet")
	ErrNoChatIDs       = errors.New("No chat IDs provided")
)

// ValidationError carries field-level messages for the REST surface.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
