package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with an occupied interval")

	ErrStatusChanged = errors.New("booking status changed concurrently")
)
