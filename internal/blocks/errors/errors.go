package errors

import "errors"

var (
	ErrNotFound = errors.New("blocked interval not found")

	ErrSpecialistNotFound = errors.New("specialist not found")
)
