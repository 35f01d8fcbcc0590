package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	appterrors "medibites/internal/appointments/errors"
	apptrepository "medibites/internal/appointments/repository"
	"medibites/internal/otp"
	paymentserrors "medibites/internal/payments/errors"
	"medibites/internal/payments/repository"
	"medibites/internal/payments/validator"
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
	operationPay = "pay"

	paymentSuccessMessage = "Payment successful!"

	// amountTolerance absorbs float noise when comparing a paid amount to the cost.
	amountTolerance = 0.005
)

type PaymentService interface {
	// Pay settles an appointment: OTP check, funds check, debit, ledger append
	// and appointment confirmation commit together or not at all.
	Pay(ctx context.Context, req model.PaymentRequest) (*model.PaymentResult, error)
	LedgerEntries(ctx context.Context, appointmentID string) ([]*model.Transaction, error)
}

type paymentService struct {
	ledger       repository.LedgerRepository
	appointments apptrepository.AppointmentRepository
	tx           mongotx.TransactionManager
	otp          *otp.Authority
	validator    *validator.PaymentValidator
	events       *kafka.AppointmentEvents
	metrics      *metrics.Metrics
	cfg          *config.Config
}

func NewPaymentService(
	ledger repository.LedgerRepository,
	appointments apptrepository.AppointmentRepository,
	tx mongotx.TransactionManager,
	otpAuthority *otp.Authority,
	validator *validator.PaymentValidator,
	events *kafka.AppointmentEvents,
	m *metrics.Metrics,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		ledger:       ledger,
		appointments: appointments,
		tx:           tx,
		otp:          otpAuthority,
		validator:    validator,
		events:       events,
		metrics:      m,
		cfg:          cfg,
	}
}

func (s *paymentService) Pay(ctx context.Context, req model.PaymentRequest) (*model.PaymentResult, error) {
	result, err := s.pay(ctx, req)
	if err != nil {
		s.metrics.ObservePayment(apperrors.KindOf(err))
		return nil, err
	}
	s.metrics.ObservePayment(metrics.OutcomeSuccess)
	return result, nil
}

func (s *paymentService) pay(ctx context.Context, req model.PaymentRequest) (*model.PaymentResult, error) {
	req.PatientEmail = sanitizer.NormalizeEmail(req.PatientEmail)
	req.AppointmentID = sanitizer.TrimAndNormalize(req.AppointmentID)

	if err := s.validator.Validate(&req); err != nil {
		s.cfg.Log.Warn("Payment rejected: invalid request",
			"appointment_id", req.AppointmentID,
			"error", err,
		)
		return nil, apperrors.InvalidInput(err.Error())
	}
	if !otp.ValidFormat(req.OTP) {
		s.cfg.Log.Warn("Payment rejected: malformed OTP", "appointment_id", req.AppointmentID)
		return nil, apperrors.InvalidOTP("OTP must be exactly 6 digits")
	}

	var (
		appt    *model.Appointment
		entry   *model.Transaction
		balance float64
	)
	start := time.Now()
	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.appointments.FindByID(sessCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appterrors.ErrNotFound) {
				return apperrors.AppointmentNotFound(req.AppointmentID)
			}
			return apperrors.StoreUnavailable("Failed to load appointment", err)
		}

		if !current.PendingPayment() {
			return apperrors.AppointmentAlreadyPaid(current.ID)
		}
		if err := s.otp.Validate(current, req.OTP); err != nil {
			return apperrors.InvalidOTP("Invalid OTP")
		}

		patient, err := s.ledger.FindPatientByEmail(sessCtx, req.PatientEmail)
		if err != nil {
			if errors.Is(err, paymentserrors.ErrPatientNotFound) {
				return apperrors.PatientNotFound()
			}
			return apperrors.StoreUnavailable("Failed to load patient", err)
		}
		if patient.Balance < req.Amount {
			return apperrors.InsufficientFunds(patient.Balance, req.Amount)
		}
		// The paid amount must match the appointment cost.
		if math.Abs(current.Cost-req.Amount) > amountTolerance {
			return apperrors.InvalidInput(paymentserrors.ErrAmountMismatch.Error()).
				WithDetails(map[string]any{"amount": req.Amount, "cost": current.Cost})
		}

		newBalance, err := s.ledger.Debit(sessCtx, patient.ID, req.Amount)
		if err != nil {
			if errors.Is(err, paymentserrors.ErrInsufficientFunds) {
				return apperrors.InsufficientFunds(patient.Balance, req.Amount)
			}
			return apperrors.StoreUnavailable("Failed to debit patient", err)
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		ledgerEntry := &model.Transaction{
			ID:            uuid.NewString(),
			UserID:        patient.ID,
			Amount:        req.Amount,
			BalanceAfter:  newBalance,
			Description:   fmt.Sprintf("Appointment payment - %s", current.ID),
			AppointmentID: current.ID,
			Type:          model.TransactionTypeAppointment,
			Status:        model.TransactionStatusCompleted,
			OTP:           req.OTP,
			PatientEmail:  req.PatientEmail,
			Timestamp:     now,
		}
		if err := s.ledger.AppendEntry(sessCtx, ledgerEntry); err != nil {
			return apperrors.StoreUnavailable("Failed to record payment", err)
		}

		if err := s.ledger.ConfirmAppointment(sessCtx, current.ID, ledgerEntry.ID, now); err != nil {
			if errors.Is(err, paymentserrors.ErrNotPending) {
				return apperrors.AppointmentAlreadyPaid(current.ID)
			}
			return apperrors.StoreUnavailable("Failed to confirm appointment", err)
		}

		confirmed := *current
		confirmed.Status = model.AppointmentStatusConfirmed
		confirmed.IsPaid = true
		confirmed.TransactionID = ledgerEntry.ID
		confirmed.PaymentDate = &now
		confirmed.UpdatedAt = now
		confirmed.OTPHash = ""

		appt = &confirmed
		entry = ledgerEntry
		balance = newBalance
		return nil
	})
	s.metrics.ObserveTransaction(operationPay, time.Since(start))

	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.CodeStoreUnavailable:
			s.cfg.Log.Error("Payment transaction failed",
				"appointment_id", req.AppointmentID,
				"error", err,
			)
		default:
			s.cfg.Log.Warn("Payment rejected",
				"appointment_id", req.AppointmentID,
				"patient_email", logger.MaskEmail(req.PatientEmail),
				"reason", apperrors.KindOf(err),
			)
		}
		return nil, err
	}

	s.cfg.Log.Info("Payment settled",
		"appointment_id", appt.ID,
		"transaction_id", entry.ID,
		"patient_id", entry.UserID,
		"amount", entry.Amount,
		"balance_after", balance,
	)

	s.events.Confirmed(ctx, appt)

	return &model.PaymentResult{
		Success:       true,
		TransactionID: entry.ID,
		NewBalance:    balance,
		Message:       paymentSuccessMessage,
	}, nil
}

func (s *paymentService) LedgerEntries(ctx context.Context, appointmentID string) ([]*model.Transaction, error) {
	appointmentID = sanitizer.TrimAndNormalize(appointmentID)
	if appointmentID == "" {
		return nil, apperrors.InvalidInput(appterrors.ErrInvalidID.Error())
	}

	entries, err := s.ledger.FindEntriesByAppointment(ctx, appointmentID)
	if err != nil {
		s.cfg.Log.Error("Failed to list ledger entries", "appointment_id", appointmentID, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to list ledger entries", err)
	}
	if entries == nil {
		entries = []*model.Transaction{}
	}
	return entries, nil
}
