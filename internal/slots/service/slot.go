package service

import (
	"context"
	"errors"

	slotserrors "medibites/internal/slots/errors"
	"medibites/internal/slots/repository"
	"medibites/pkg/config"
	apperrors "medibites/pkg/errors"
	"medibites/pkg/model"
	"medibites/pkg/sanitizer"
)

// SlotService owns every TimeSlot write. Reservation is a single conditional
// update so two concurrent reservations of one slot cannot both succeed.
type SlotService interface {
	IsAvailable(ctx context.Context, doctorID, date, startTime string) (bool, error)
	Reserve(ctx context.Context, key model.SlotKey, appointmentID string) (*model.TimeSlot, error)
	ListByDoctorAndDate(ctx context.Context, doctorID, date string, onlyFree bool) ([]*model.TimeSlot, error)
}

type slotService struct {
	repo repository.SlotRepository
	cfg  *config.Config
}

func NewSlotService(repo repository.SlotRepository, cfg *config.Config) SlotService {
	return &slotService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *slotService) IsAvailable(ctx context.Context, doctorID, date, startTime string) (bool, error) {
	key, err := normalizeKey(model.SlotKey{DoctorID: doctorID, Date: date, StartTime: startTime})
	if err != nil {
		return false, err
	}

	available, err := s.repo.IsAvailable(ctx, key)
	if err != nil {
		s.cfg.Log.Error("Failed to check slot availability",
			"doctor_id", key.DoctorID,
			"date", key.Date,
			"start_time", key.StartTime,
			"error", err,
		)
		return false, apperrors.StoreUnavailable("Failed to check slot availability", err)
	}
	return available, nil
}

// Reserve must be called with the booking transaction's session context so the
// reservation commits or aborts together with the appointment.
func (s *slotService) Reserve(ctx context.Context, key model.SlotKey, appointmentID string) (*model.TimeSlot, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	slot, err := s.repo.Reserve(ctx, key, appointmentID)
	if err != nil {
		if errors.Is(err, slotserrors.ErrSlotUnavailable) {
			s.cfg.Log.Warn("Slot not available",
				"doctor_id", key.DoctorID,
				"date", key.Date,
				"start_time", key.StartTime,
			)
			return nil, apperrors.SlotUnavailable("Time slot no longer available")
		}
		s.cfg.Log.Error("Failed to reserve slot",
			"doctor_id", key.DoctorID,
			"date", key.Date,
			"start_time", key.StartTime,
			"error", err,
		)
		return nil, apperrors.StoreUnavailable("Failed to reserve slot", err)
	}

	s.cfg.Log.Debug("Slot reserved",
		"doctor_id", key.DoctorID,
		"date", key.Date,
		"start_time", key.StartTime,
		"appointment_id", appointmentID,
	)
	return slot, nil
}

func (s *slotService) ListByDoctorAndDate(ctx context.Context, doctorID, date string, onlyFree bool) ([]*model.TimeSlot, error) {
	doctorID = sanitizer.TrimAndNormalize(doctorID)
	date = sanitizer.NormalizeDate(date)
	if doctorID == "" || date == "" {
		return nil, apperrors.InvalidInput("doctor_id and a YYYY-MM-DD date are required")
	}

	slots, err := s.repo.FindByDoctorAndDate(ctx, doctorID, date, onlyFree)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "doctor_id", doctorID, "date", date, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to list slots", err)
	}
	if slots == nil {
		slots = []*model.TimeSlot{}
	}
	return slots, nil
}

func normalizeKey(key model.SlotKey) (model.SlotKey, error) {
	normalized := model.SlotKey{
		DoctorID:  sanitizer.TrimAndNormalize(key.DoctorID),
		Date:      sanitizer.NormalizeDate(key.Date),
		StartTime: sanitizer.NormalizeClock(key.StartTime),
	}
	if normalized.DoctorID == "" || normalized.Date == "" || normalized.StartTime == "" {
		return model.SlotKey{}, apperrors.InvalidInput(slotserrors.ErrInvalidSlot.Error()).
			WithDetails(map[string]any{
				"doctor_id":  key.DoctorID,
				"date":       key.Date,
				"start_time": key.StartTime,
			})
	}
	return normalized, nil
}
