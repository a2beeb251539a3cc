package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

// DoctorInput is the creation payload of a doctor
type DoctorInput struct {
	AccountInput
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	SpecialtyID *int64 `json:"specialty_id"`
	Phone       string `json:"phone"`
}

// DoctorUpdate replaces the profile fields and optionally the credentials
type DoctorUpdate struct {
	AccountUpdate
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	SpecialtyID *int64 `json:"specialty_id"`
	Phone       string `json:"phone"`
}

// DoctorService manages doctor accounts
type DoctorService struct {
	users       domain.UserRepository
	doctors     domain.DoctorRepository
	specialties domain.SpecialtyRepository
	cache       *cache.Layer
	logger      *slog.Logger
}

// NewDoctorService creates a doctor service
func NewDoctorService(users domain.UserRepository, doctors domain.DoctorRepository, specialties domain.SpecialtyRepository, c *cache.Layer, logger *slog.Logger) *DoctorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DoctorService{users: users, doctors: doctors, specialties: specialties, cache: c, logger: logger}
}

// Create registers a doctor account
func (s *DoctorService) Create(ctx context.Context, in DoctorInput) (int64, error) {
	if err := require("name", in.Name); err != nil {
		return 0, err
	}
	if err := require("surname", in.Surname); err != nil {
		return 0, err
	}
	if err := s.checkSpecialty(ctx, in.SpecialtyID); err != nil {
		return 0, err
	}
	user, err := newUser(ctx, s.users, in.AccountInput, domain.RoleDoctor)
	if err != nil {
		return 0, err
	}

	id, err := s.doctors.Create(ctx, user, &domain.Doctor{
		Name:        in.Name,
		Surname:     in.Surname,
		SpecialtyID: in.SpecialtyID,
		Phone:       in.Phone,
	})
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateAll(ctx, cache.Doctors)
	s.logger.Info("doctor created", slog.Int64("user_id", id))
	return id, nil
}

// List returns every doctor through the cache
func (s *DoctorService) List(ctx context.Context) ([]domain.Doctor, error) {
	return cache.Fetch(ctx, s.cache, cache.Doctors.All(), s.doctors.List)
}

// Get returns one doctor through the cache
func (s *DoctorService) Get(ctx context.Context, userID int64) (*domain.Doctor, error) {
	return cache.Fetch(ctx, s.cache, cache.Doctors.ID(userID), func(ctx context.Context) (*domain.Doctor, error) {
		return s.doctors.GetByUserID(ctx, userID)
	})
}

// Update rewrites the profile and optionally the credentials
func (s *DoctorService) Update(ctx context.Context, userID int64, in DoctorUpdate) (*domain.Doctor, error) {
	if err := require("name", in.Name); err != nil {
		return nil, err
	}
	if err := require("surname", in.Surname); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkSpecialty(ctx, in.SpecialtyID); err != nil {
		return nil, err
	}
	change, err := accountChange(ctx, s.users, userID, in.AccountUpdate)
	if err != nil {
		return nil, err
	}

	d := &domain.Doctor{
		UserID:      userID,
		Name:        in.Name,
		Surname:     in.Surname,
		SpecialtyID: in.SpecialtyID,
		Phone:       in.Phone,
	}
	if err := s.doctors.Update(ctx, d, change); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.Doctors.All(), cache.Doctors.ID(userID))
	s.cache.InvalidateAll(ctx, cache.Appointments)
	return s.doctors.GetByUserID(ctx, userID)
}

// Delete removes the doctor account; the store cascades its appointments
func (s *DoctorService) Delete(ctx context.Context, userID int64) error {
	if _, err := s.doctors.GetByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx, cache.Doctors, cache.Appointments)
	s.logger.Info("doctor deleted", slog.Int64("user_id", userID))
	return nil
}

func (s *DoctorService) checkSpecialty(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.specialties.GetByID(ctx, *id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("specialty_id", "unknown specialty")
		}
		return err
	}
	return nil
}
