package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"medibites/pkg/logger"
	"medibites/pkg/model"
	"medibites/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const maxAppointmentSpan = 12 * time.Hour

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	log.Debug("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AppointmentValidator) ValidatePatient(patient *model.PatientInfo) error {
	return v.validateStruct(patient)
}

// ValidateIntent checks field formats of a complete intent. Completeness itself
// is checked by the caller so that it can be reported as INCOMPLETE_INTENT.
func (v *AppointmentValidator) ValidateIntent(intent *model.BookIntent) error {
	if err := v.validateStruct(intent); err != nil {
		return err
	}

	// An appointment may run past midnight, so 23:45-00:15 is valid.
	span, ok := sanitizer.ClockSpan(intent.StartTime, intent.EndTime)
	if !ok || span == 0 || span > maxAppointmentSpan {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: fmt.Sprintf("endTime must be after startTime and at most %s later", maxAppointmentSpan),
			},
		}
	}
	return nil
}

func (v *AppointmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must match layout %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
