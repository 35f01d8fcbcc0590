package errors

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")

	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrNotPending = errors.New("appointment is not awaiting payment")

	ErrAmountMismatch = errors.New("amount does not match appointment cost")
)
