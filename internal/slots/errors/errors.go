package errors

import "errors"

var (
	ErrSlotUnavailable = errors.New("time slot is not available")

	ErrInvalidSlot = errors.New("doctor id, date and start time are required")
)
