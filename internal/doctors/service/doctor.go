package service

import (
	"context"
	"errors"

	doctorserrors "medibites/internal/doctors/errors"
	"medibites/internal/doctors/repository"
	"medibites/pkg/config"
	apperrors "medibites/pkg/errors"
	"medibites/pkg/model"
	"medibites/pkg/sanitizer"
)

// DoctorService is the read-only doctor directory. Store failures are always
// surfaced as STORE_UNAVAILABLE and never reported as a missing doctor.
type DoctorService interface {
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	DoctorsBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error)
	ListSpecialties(ctx context.Context) ([]string, error)
	Catalog(ctx context.Context) ([]model.SpecialtyCatalog, error)
}

type doctorService struct {
	repo repository.DoctorRepository
	cfg  *config.Config
}

func NewDoctorService(repo repository.DoctorRepository, cfg *config.Config) DoctorService {
	return &doctorService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *doctorService) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	id = sanitizer.TrimAndNormalize(id)
	if id == "" {
		return nil, apperrors.InvalidInput(doctorserrors.ErrInvalidDoctorID.Error())
	}

	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrDoctorNotFound) {
			return nil, apperrors.DoctorNotFound(id)
		}
		s.cfg.Log.Error("Failed to get doctor", "doctor_id", id, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to get doctor", err)
	}
	return doctor, nil
}

func (s *doctorService) DoctorsBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	specialty = sanitizer.TrimAndNormalize(specialty)
	if specialty == "" {
		return nil, apperrors.InvalidInput("specialty is required")
	}

	doctors, err := s.repo.FindBySpecialty(ctx, specialty)
	if err != nil {
		s.cfg.Log.Error("Failed to list doctors", "specialty", specialty, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to list doctors", err)
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	return doctors, nil
}

func (s *doctorService) ListSpecialties(ctx context.Context) ([]string, error) {
	specialties, err := s.repo.Specialties(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list specialties", "error", err)
		return nil, apperrors.StoreUnavailable("Failed to list specialties", err)
	}
	if specialties == nil {
		specialties = []string{}
	}
	return specialties, nil
}

// Catalog returns every specialty with the names of its doctors, in specialty order.
func (s *doctorService) Catalog(ctx context.Context) ([]model.SpecialtyCatalog, error) {
	specialties, err := s.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make([]model.SpecialtyCatalog, 0, len(specialties))
	for _, specialty := range specialties {
		doctors, err := s.DoctorsBySpecialty(ctx, specialty)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(doctors))
		for _, d := range doctors {
			names = append(names, d.Name)
		}
		catalog = append(catalog, model.SpecialtyCatalog{Specialty: specialty, Doctors: names})
	}
	return catalog, nil
}
