package errors

import "errors"

var (
	ErrNotFound = errors.New("specialist not found")

	ErrInvalidID = errors.New("invalid specialist ID format")
)
