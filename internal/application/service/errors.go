package service

import "errors"

var (
	// ErrUnknownCategory is returned for category filters outside the taxonomy
	ErrUnknownCategory = errors.New("unknown expense category")

	// ErrUnknownExpenseType is returned when a type id is not in the taxonomy
	ErrUnknownExpenseType = errors.New("unknown expense type")

	// ErrInvalidRequest is returned when required input is missing
	ErrInvalidRequest = errors.New("invalid request")
)
