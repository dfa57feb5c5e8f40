package conversation

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a persisted state is unknown
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")
)

var (
	// ErrNotANumber is returned when a report selection is not an integer
	ErrNotANumber = errors.New("selection is not a number")

	// ErrSelectionOutOfRange is returned when a report number is outside the listing
	ErrSelectionOutOfRange = errors.New("selection out of range")
)
