package services

import "errors"

var (
	// ErrDataUnavailable is returned when the manager, hotel, requirement
	// table or workers of a run cannot be read. No solving is attempted.
	ErrDataUnavailable = errors.New("scheduling data unavailable")

	// ErrInvalidSchedule is returned when a solved week fails re-verification.
	// Such a week is never persisted.
	ErrInvalidSchedule = errors.New("solved schedule failed verification")

	// ErrInvalidInput is returned for malformed caller input
	ErrInvalidInput = errors.New("invalid input")
)
