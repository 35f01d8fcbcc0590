package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Booking and settlement error kinds. The code is the wire-level kind returned to callers.
const (
	CodeIncompleteIntent       = "INCOMPLETE_INTENT"
	CodeSlotUnavailable        = "SLOT_UNAVAILABLE"
	CodeDoctorNotFound         = "DOCTOR_NOT_FOUND"
	CodeInvalidOTP             = "INVALID_OTP"
	CodePatientNotFound        = "PATIENT_NOT_FOUND"
	CodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	CodeAppointmentNotFound    = "APPOINTMENT_NOT_FOUND"
	CodeAppointmentAlreadyPaid = "APPOINTMENT_ALREADY_PAID"
	CodeStoreUnavailable       = "STORE_UNAVAILABLE"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTimeout      = "TIMEOUT"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// Is matches another *AppError by code, so errors.Is(err, SlotUnavailable("")) works
// regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Success: false,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

// ErrorResponse is the structured failure result: {success:false, code, message}.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func IncompleteIntent(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeIncompleteIntent,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func SlotUnavailable(message string) *AppError {
	return &AppError{
		Code:       CodeSlotUnavailable,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func DoctorNotFound(id string) *AppError {
	return &AppError{
		Code:       CodeDoctorNotFound,
		Message:    "Doctor not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"doctor_id": id},
	}
}

func InvalidOTP(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidOTP,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func PatientNotFound() *AppError {
	return &AppError{
		Code:       CodePatientNotFound,
		Message:    "Patient not found",
		HTTPStatus: http.StatusNotFound,
	}
}

func InsufficientFunds(balance, amount float64) *AppError {
	return &AppError{
		Code:       CodeInsufficientFunds,
		Message:    "Insufficient funds",
		HTTPStatus: http.StatusPaymentRequired,
		Details:    map[string]any{"balance": balance, "amount": amount},
	}
}

func AppointmentNotFound(id string) *AppError {
	return &AppError{
		Code:       CodeAppointmentNotFound,
		Message:    "Appointment not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"appointment_id": id},
	}
}

func AppointmentAlreadyPaid(id string) *AppError {
	return &AppError{
		Code:       CodeAppointmentAlreadyPaid,
		Message:    "Appointment has already been paid",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"appointment_id": id},
	}
}

// StoreUnavailable reports any underlying document-store failure.
func StoreUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:       CodeStoreUnavailable,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func RateLimited(message string) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError returns the first *AppError in err's chain, or an internal error wrapping err.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// KindOf returns the error kind carried by err, or CodeInternal for foreign errors.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	return AsAppError(err).Code
}
