package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrUnauthorized = errors.New("missing or invalid trigger token")
	ErrNoReport     = errors.New("no run has completed yet")
	ErrBadGoalID    = errors.New("invalid goal id")
)
