package errors

import "errors"

var (
	ErrNotFound = errors.New("service not found")

	ErrDirectoryUnavailable = errors.New("client directory unavailable")
)
