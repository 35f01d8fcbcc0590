package errors

import "errors"

var (
	ErrDoctorNotFound = errors.New("doctor not found")

	ErrInvalidDoctorID = errors.New("invalid doctor id")
)
