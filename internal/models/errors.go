package models

import "errors"

var (
	// ErrInvalidDate marks a date field that cannot be used for day
	// arithmetic: zero, in the future, or last_appeared before
	// first_appeared.
	ErrInvalidDate = errors.New("invalid date")

	// ErrConflict is returned when a compare-and-swap update of a flavor's
	// appearance counters loses a race with a concurrent publication run.
	ErrConflict = errors.New("concurrent update conflict")

	ErrNotFound = errors.New("not found")
)
