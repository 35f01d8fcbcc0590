package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID")

	ErrDuplicate = errors.New("appointment already exists")
)
