package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

// SpecialtyService manages specialties. Doctor and appointment snapshots
// embed specialty names, so every write drops them as well.
type SpecialtyService struct {
	specialties domain.SpecialtyRepository
	cache       *cache.Layer
	logger      *slog.Logger
}

// NewSpecialtyService creates the specialty service
func NewSpecialtyService(specialties domain.SpecialtyRepository, c *cache.Layer, logger *slog.Logger) *SpecialtyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpecialtyService{specialties: specialties, cache: c, logger: logger}
}

// Create adds a specialty
func (s *SpecialtyService) Create(ctx context.Context, name string) (*domain.Specialty, error) {
	name = strings.TrimSpace(name)
	if err := require("name", name); err != nil {
		return nil, err
	}
	sp, err := s.specialties.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return sp, nil
}

// List returns all specialties, served from the cache when possible
func (s *SpecialtyService) List(ctx context.Context) ([]domain.Specialty, error) {
	return cache.Fetch(ctx, s.cache, cache.Specialties.All(), s.specialties.List)
}

// Update renames a specialty
func (s *SpecialtyService) Update(ctx context.Context, id int64, name string) (*domain.Specialty, error) {
	name = strings.TrimSpace(name)
	if err := require("name", name); err != nil {
		return nil, err
	}
	sp := &domain.Specialty{ID: id, Name: name}
	if err := s.specialties.Update(ctx, sp); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return sp, nil
}

// Delete removes a specialty no doctor or appointment references
func (s *SpecialtyService) Delete(ctx context.Context, id int64) error {
	if err := s.specialties.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("specialty deleted", slog.Int64("id", id))
	return nil
}

func (s *SpecialtyService) invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx, cache.Specialties, cache.Doctors, cache.Appointments)
}
