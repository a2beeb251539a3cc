package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// countingDoctors counts List calls that reach the store
type countingDoctors struct {
	domain.DoctorRepository
	lists atomic.Int32
}

func (c *countingDoctors) List(ctx context.Context) ([]domain.Doctor, error) {
	c.lists.Add(1)
	return c.DoctorRepository.List(ctx)
}

// countingAppointments counts List calls that reach the store
type countingAppointments struct {
	domain.AppointmentRepository
	lists atomic.Int32
}

func (c *countingAppointments) List(ctx context.Context, f domain.AppointmentFilter) ([]domain.AppointmentView, error) {
	c.lists.Add(1)
	return c.AppointmentRepository.List(ctx, f)
}
