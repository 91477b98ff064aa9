package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotStarted is returned when a quiz operation needs a running timer.
	ErrSessionNotStarted = errors.New("quiz not started")
	// ErrSessionCompleted is returned for any mutation after completion.
	ErrSessionCompleted = errors.New("quiz already completed")
	// ErrSessionAbandoned is returned once an attempt has been replaced or dropped.
	ErrSessionAbandoned = errors.New("quiz attempt abandoned")
)

// UnknownTrackError is returned when a track has no question bank.
type UnknownTrackError struct {
	Track string
}

func (e *UnknownTrackError) Error() string {
	if e.Track == "" {
		return "track not selected"
	}
	return fmt.Sprintf("unknown track %q", e.Track)
}

// ValidationError describes recoverable bad input; the caller should re-prompt.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
