package service

import (
	"context"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

// PatientInput is the registration payload of a patient
type PatientInput struct {
	AccountInput
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Birthdate  string `json:"birthdate"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// PatientUpdate replaces the profile fields and optionally the credentials
type PatientUpdate struct {
	AccountUpdate
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Birthdate  string `json:"birthdate"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// PatientService manages patient accounts
type PatientService struct {
	users    domain.UserRepository
	patients domain.PatientRepository
	cache    *cache.Layer
	logger   *slog.Logger
}

// NewPatientService creates a patient service
func NewPatientService(users domain.UserRepository, patients domain.PatientRepository, c *cache.Layer, logger *slog.Logger) *PatientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatientService{users: users, patients: patients, cache: c, logger: logger}
}

// Register creates the user and patient rows together
func (s *PatientService) Register(ctx context.Context, in PatientInput) (int64, error) {
	if err := require("name", in.Name); err != nil {
		return 0, err
	}
	if err := require("surname", in.Surname); err != nil {
		return 0, err
	}
	if err := validateDate("birthdate", in.Birthdate); err != nil {
		return 0, err
	}
	user, err := newUser(ctx, s.users, in.AccountInput, domain.RolePatient)
	if err != nil {
		return 0, err
	}

	id, err := s.patients.Create(ctx, user, &domain.Patient{
		Name:       in.Name,
		Surname:    in.Surname,
		Birthdate:  in.Birthdate,
		Address:    in.Address,
		Phone:      in.Phone,
		NationalID: in.NationalID,
	})
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateAll(ctx, cache.Patients)
	s.logger.Info("patient registered", slog.Int64("user_id", id))
	return id, nil
}

// List returns every patient through the cache
func (s *PatientService) List(ctx context.Context) ([]domain.Patient, error) {
	return cache.Fetch(ctx, s.cache, cache.Patients.All(), s.patients.List)
}

// Get returns one patient through the cache
func (s *PatientService) Get(ctx context.Context, userID int64) (*domain.Patient, error) {
	return cache.Fetch(ctx, s.cache, cache.Patients.ID(userID), func(ctx context.Context) (*domain.Patient, error) {
		return s.patients.GetByUserID(ctx, userID)
	})
}

// Update rewrites the profile; appointment views carry patient names so
// their snapshots are dropped too.
func (s *PatientService) Update(ctx context.Context, userID int64, in PatientUpdate) (*domain.Patient, error) {
	if err := require("name", in.Name); err != nil {
		return nil, err
	}
	if err := require("surname", in.Surname); err != nil {
		return nil, err
	}
	if err := validateDate("birthdate", in.Birthdate); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	change, err := accountChange(ctx, s.users, userID, in.AccountUpdate)
	if err != nil {
		return nil, err
	}

	p := &domain.Patient{
		UserID:     userID,
		Name:       in.Name,
		Surname:    in.Surname,
		Birthdate:  in.Birthdate,
		Address:    in.Address,
		Phone:      in.Phone,
		NationalID: in.NationalID,
	}
	if err := s.patients.Update(ctx, p, change); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.Patients.All(), cache.Patients.ID(userID))
	s.cache.InvalidateAll(ctx, cache.Appointments)
	return s.patients.GetByUserID(ctx, userID)
}

// Delete removes the patient account with its appointments
func (s *PatientService) Delete(ctx context.Context, userID int64) error {
	if _, err := s.patients.GetByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx, cache.Patients, cache.Appointments)
	s.logger.Info("patient deleted", slog.Int64("user_id", userID))
	return nil
}
