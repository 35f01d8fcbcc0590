package kafka

import (
	"context"
	"time"

	"medibites/pkg/logger"
	"medibites/pkg/model"
)

const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentConfirmed = "appointment.confirmed"

	appointmentSchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// AppointmentEvent is the payload of every appointment lifecycle event.
type AppointmentEvent struct {
	AppointmentID string    `json:"appointmentId"`
	DoctorID      string    `json:"doctorId"`
	DoctorName    string    `json:"doctorName"`
	PatientID     string    `json:"patientId"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Type          string    `json:"type"`
	Cost          float64   `json:"cost"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// AppointmentEvents publishes appointment lifecycle events after the store
// transaction committed. Publishing is best effort: failures are logged and
// never reach the caller. A nil publisher disables publishing.
type AppointmentEvents struct {
	publisher Publisher
	source    string
	log       *logger.Logger
}

func NewAppointmentEvents(publisher Publisher, source string, log *logger.Logger) *AppointmentEvents {
	return &AppointmentEvents{
		publisher: publisher,
		source:    source,
		log:       log,
	}
}

func (e *AppointmentEvents) Booked(ctx context.Context, appt *model.Appointment) {
	e.publish(ctx, EventAppointmentBooked, appt)
}

func (e *AppointmentEvents) Confirmed(ctx context.Context, appt *model.Appointment) {
	e.publish(ctx, EventAppointmentConfirmed, appt)
}

func (e *AppointmentEvents) publish(ctx context.Context, eventType string, appt *model.Appointment) {
	if e == nil || e.publisher == nil || appt == nil {
		return
	}

	msg, err := NewMessage().
		WithKey(appt.ID).
		WithValue(AppointmentEvent{
			AppointmentID: appt.ID,
			DoctorID:      appt.DoctorID,
			DoctorName:    appt.DoctorName,
			PatientID:     appt.PatientID,
			Date:          appt.Date,
			StartTime:     appt.StartTime,
			EndTime:       appt.EndTime,
			Type:          appt.Type,
			Cost:          appt.Cost,
			Status:        appt.Status,
			TransactionID: appt.TransactionID,
			OccurredAt:    time.Now().UTC(),
		}).
		WithEventType(eventType).
		WithSchemaVersion(appointmentSchemaVersion).
		WithSource(e.source).
		Build()
	if err != nil {
		e.log.Error("Failed to build appointment event",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
		return
	}

	// The request context may already be cancelled once the response is written.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := e.publisher.Publish(pubCtx, msg); err != nil {
		e.log.Warn("Appointment event not published",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
	}
}
