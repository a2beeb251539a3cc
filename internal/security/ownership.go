package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

// Action identifies what operation is being performed
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// OwnershipService checks access to a single appointment
type OwnershipService struct {
	logger *slog.Logger
}

// NewOwnershipService creates a new resource-level authorizer
func NewOwnershipService(logger *slog.Logger) *OwnershipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnershipService{logger: logger}
}

// ValidateAppointmentAccess allows admins everything, the owning patient
// everything, and the assigned doctor reads only.
func (o *OwnershipService) ValidateAppointmentAccess(p domain.Principal, a *domain.Appointment, action Action) error {
	switch p.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RolePatient:
		if a.PatientUserID == p.UserID {
			return nil
		}
	case domain.RoleDoctor:
		if action == ActionRead && a.DoctorUserID == p.UserID {
			return nil
		}
	}

	o.logger.Warn("appointment access denied",
		slog.Int64("user_id", p.UserID),
		slog.String("role", string(p.Role)),
		slog.Int64("appointment_id", a.ID),
		slog.String("action", string(action)),
	)
	return fmt.Errorf("%w: %s may not %s appointment %d", domain.ErrForbidden, p.Role, action, a.ID)
}
