package services

import "errors"

// Domain errors surfaced to callers. Handlers and the bot adapter map
// these to HTTP statuses / user-facing messages; anything else is treated
// as a transient storage failure.
var (
	ErrMatchNotFound    = errors.New("match_not_found")
	ErrMatchClosed      = errors.New("match_closed")
	ErrAlreadyPredicted = errors.New("already_predicted")
	ErrAlreadyResolved  = errors.New("already_resolved")
	ErrInvalidChoice    = errors.New("invalid_choice")
	ErrInvalidScore     = errors.New("invalid_score")
	ErrUserNotFound     = errors.New("user_not_found")
)
