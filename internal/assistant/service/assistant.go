package service

import (
	"context"
	"fmt"

	appointmentservice "medibites/internal/appointments/service"
	doctorservice "medibites/internal/doctors/service"
	"medibites/internal/intent"
	"medibites/pkg/config"
	apperrors "medibites/pkg/errors"
	"medibites/pkg/model"
)

// Turn actions.
const (
	ActionNone              = "none"
	ActionAppointmentBooked = "appointment_booked"
	ActionBookingIncomplete = "booking_incomplete"
	ActionBookingFailed     = "booking_failed"
	ActionPaymentRequest    = "payment_request"
)

// TurnResult is what the conversational layer renders after one assistant turn.
type TurnResult struct {
	Text    string               `json:"text"`
	Action  string               `json:"action"`
	Booking *model.BookingResult `json:"booking,omitempty"`
	Payment *model.PaymentIntent `json:"payment,omitempty"`
	Missing []string             `json:"missing,omitempty"`
	Error   *TurnError           `json:"error,omitempty"`
}

type TurnError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AssistantService interface {
	// HandleTurn extracts intents from one assistant reply and books when a
	// complete booking intent is present. Booking failures are folded into
	// the result; only a malformed turn returns an error.
	HandleTurn(ctx context.Context, patient model.PatientInfo, assistantText string) (*TurnResult, error)
	Catalog(ctx context.Context) ([]model.SpecialtyCatalog, error)
}

type assistantService struct {
	extractor    *intent.Extractor
	appointments appointmentservice.AppointmentService
	doctors      doctorservice.DoctorService
	cfg          *config.Config
}

func NewAssistantService(
	extractor *intent.Extractor,
	appointments appointmentservice.AppointmentService,
	doctors doctorservice.DoctorService,
	cfg *config.Config,
) AssistantService {
	return &assistantService{
		extractor:    extractor,
		appointments: appointments,
		doctors:      doctors,
		cfg:          cfg,
	}
}

func (s *assistantService) HandleTurn(ctx context.Context, patient model.PatientInfo, assistantText string) (*TurnResult, error) {
	if assistantText == "" {
		return nil, apperrors.InvalidInput("assistant text is required")
	}

	extracted := s.extractor.Extract(assistantText)
	result := &TurnResult{Text: extracted.Text, Action: ActionNone}

	switch {
	case extracted.Book != nil:
		s.handleBooking(ctx, patient, extracted.Book, result)
	case extracted.Payment != nil:
		result.Action = ActionPaymentRequest
		result.Payment = extracted.Payment
	}

	return result, nil
}

func (s *assistantService) handleBooking(ctx context.Context, patient model.PatientInfo, book *model.BookIntent, result *TurnResult) {
	if !book.Complete() {
		result.Action = ActionBookingIncomplete
		result.Missing = book.Missing()
		s.cfg.Log.Info("Booking intent incomplete, not booking",
			"patient_id", patient.ID,
			"missing", result.Missing,
		)
		return
	}

	booking, err := s.appointments.Book(ctx, patient, book)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		result.Action = ActionBookingFailed
		result.Error = &TurnError{Code: appErr.Code, Message: appErr.Message}
		result.Text = joinText(result.Text, appErr.Message)
		return
	}

	result.Action = ActionAppointmentBooked
	result.Booking = booking
	result.Text = joinText(result.Text, fmt.Sprintf("Appointment booked! OTP: %s", booking.OTP))
}

func (s *assistantService) Catalog(ctx context.Context) ([]model.SpecialtyCatalog, error) {
	return s.doctors.Catalog(ctx)
}

func joinText(text, line string) string {
	if text == "" {
		return line
	}
	return text + "\n\n" + line
}
