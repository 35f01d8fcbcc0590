package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "medibites/internal/appointments/errors"
	"medibites/internal/appointments/repository"
	"medibites/internal/appointments/validator"
	doctorservice "medibites/internal/doctors/service"
	"medibites/internal/otp"
	slotservice "medibites/internal/slots/service"
	"medibites/pkg/config"
	mongotx "medibites/pkg/db/mongo"
	apperrors "medibites/pkg/errors"
	"medibites/pkg/kafka"
	"medibites/pkg/logger"
	"medibites/pkg/metrics"
	"medibites/pkg/model"
	"medibites/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	operationBook = "book"

	confirmationPrefix = "APT"
)

type AppointmentService interface {
	// Book reserves the slot, prices the consultation, creates a pending_payment
	// appointment and issues its OTP as one atomic unit.
	Book(ctx context.Context, patient model.PatientInfo, intent *model.BookIntent) (*model.BookingResult, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	tx        mongotx.TransactionManager
	slots     slotservice.SlotService
	doctors   doctorservice.DoctorService
	otp       *otp.Authority
	validator *validator.AppointmentValidator
	events    *kafka.AppointmentEvents
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	tx mongotx.TransactionManager,
	slots slotservice.SlotService,
	doctors doctorservice.DoctorService,
	otpAuthority *otp.Authority,
	validator *validator.AppointmentValidator,
	events *kafka.AppointmentEvents,
	m *metrics.Metrics,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		tx:        tx,
		slots:     slots,
		doctors:   doctors,
		otp:       otpAuthority,
		validator: validator,
		events:    events,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *appointmentService) Book(ctx context.Context, patient model.PatientInfo, intent *model.BookIntent) (*model.BookingResult, error) {
	result, err := s.book(ctx, patient, intent)
	if err != nil {
		s.metrics.ObserveBooking(apperrors.KindOf(err))
		return nil, err
	}
	s.metrics.ObserveBooking(metrics.OutcomeSuccess)
	return result, nil
}

func (s *appointmentService) book(ctx context.Context, patient model.PatientInfo, intent *model.BookIntent) (*model.BookingResult, error) {
	patient = normalizePatient(patient)
	if err := s.validator.ValidatePatient(&patient); err != nil {
		s.cfg.Log.Warn("Booking rejected: invalid patient", "error", err)
		return nil, validationError(err)
	}

	if !intent.Complete() {
		missing := intent.Missing()
		s.cfg.Log.Warn("Booking rejected: incomplete intent",
			"patient_id", patient.ID,
			"missing", missing,
		)
		return nil, apperrors.IncompleteIntent("Booking details are incomplete", map[string]any{"missing": missing})
	}

	req := normalizeIntent(*intent)
	if err := s.validator.ValidateIntent(&req); err != nil {
		s.cfg.Log.Warn("Booking rejected: invalid intent", "patient_id", patient.ID, "error", err)
		return nil, validationError(err)
	}

	code, otpHash, err := s.otp.Issue()
	if err != nil {
		s.cfg.Log.Error("Failed to issue OTP", "error", err)
		return nil, apperrors.Internal("Failed to issue OTP", err)
	}

	appointmentID := uuid.NewString()
	consultationType := req.ConsultationType()
	key := model.SlotKey{DoctorID: req.DoctorID, Date: req.Date, StartTime: req.StartTime}

	var appt *model.Appointment
	start := time.Now()
	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.slots.Reserve(sessCtx, key, appointmentID); err != nil {
			return err
		}

		doctor, err := s.doctors.GetDoctor(sessCtx, req.DoctorID)
		if err != nil {
			return err
		}

		cost, ok := doctor.Fee(consultationType)
		if !ok {
			cost = s.cfg.DefaultConsultationFee
			s.cfg.Log.Info("Doctor has no fee for consultation type, using default",
				"doctor_id", doctor.ID,
				"type", consultationType,
				"cost", cost,
			)
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		candidate := &model.Appointment{
			ID:           appointmentID,
			DoctorID:     doctor.ID,
			DoctorName:   doctor.Name,
			Specialty:    doctor.Specialty,
			PatientID:    patient.ID,
			PatientName:  patient.Name,
			PatientEmail: patient.Email,
			Date:         req.Date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Reason:       req.Reason,
			Type:         consultationType,
			Notes:        "",
			Cost:         cost,
			Status:       model.AppointmentStatusPendingPayment,
			IsPaid:       false,
			OTPHash:      otpHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.repo.Insert(sessCtx, candidate); err != nil {
			if errors.Is(err, appterrors.ErrDuplicate) {
				return apperrors.SlotUnavailable("Appointment already exists for this slot")
			}
			return apperrors.StoreUnavailable("Failed to create appointment", err)
		}

		appt = candidate
		return nil
	})
	s.metrics.ObserveTransaction(operationBook, time.Since(start))

	if err != nil {
		if apperrors.KindOf(err) == apperrors.CodeStoreUnavailable {
			s.cfg.Log.Error("Booking transaction failed",
				"doctor_id", key.DoctorID,
				"date", key.Date,
				"start_time", key.StartTime,
				"error", err,
			)
		}
		return nil, err
	}

	s.cfg.Log.Info("Appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"patient_email", logger.MaskEmail(appt.PatientEmail),
		"date", appt.Date,
		"start_time", appt.StartTime,
		"cost", appt.Cost,
	)

	s.events.Booked(ctx, appt)

	return &model.BookingResult{
		AppointmentID:      appt.ID,
		DoctorName:         appt.DoctorName,
		Date:               appt.Date,
		Time:               appt.StartTime,
		Cost:               appt.Cost,
		OTP:                code,
		ConfirmationNumber: ConfirmationNumber(appt.Date, appt.ID),
	}, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	id = sanitizer.TrimAndNormalize(id)
	if id == "" {
		return nil, apperrors.InvalidInput(appterrors.ErrInvalidID.Error())
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.AppointmentNotFound(id)
		}
		s.cfg.Log.Error("Failed to get appointment", "appointment_id", id, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to get appointment", err)
	}
	return appt, nil
}

// ConfirmationNumber formats the display-only booking reference APT-YYYYMMDD-<id prefix>.
func ConfirmationNumber(date, appointmentID string) string {
	prefix := appointmentID
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s-%s-%s", confirmationPrefix, sanitizer.CompactDate(date), prefix)
}

func normalizePatient(p model.PatientInfo) model.PatientInfo {
	return model.PatientInfo{
		ID:    sanitizer.TrimAndNormalize(p.ID),
		Name:  sanitizer.TrimAndNormalize(p.Name),
		Email: sanitizer.NormalizeEmail(p.Email),
	}
}

// normalizeIntent canonicalises a complete intent. Values that do not parse are
// kept as given so that the validator reports them.
func normalizeIntent(in model.BookIntent) model.BookIntent {
	out := in
	out.DoctorID = sanitizer.TrimAndNormalize(in.DoctorID)
	out.Reason = sanitizer.TrimAndNormalize(in.Reason)
	if date := sanitizer.NormalizeDate(in.Date); date != "" {
		out.Date = date
	}
	if clock := sanitizer.NormalizeClock(in.StartTime); clock != "" {
		out.StartTime = clock
	}
	if clock := sanitizer.NormalizeClock(in.EndTime); clock != "" {
		out.EndTime = clock
	}
	if in.Type != "" {
		if t := sanitizer.NormalizeConsultationType(in.Type); t != "" {
			out.Type = t
		}
	}
	return out
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(verrs.Error(), map[string]any{"errors": verrs})
	}
	return apperrors.Validation(err.Error(), nil)
}
