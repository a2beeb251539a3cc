package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermBookAppointment          Permission = "book_appointment"
	PermListAppointments         Permission = "list_appointments"
	PermReadAppointment          Permission = "read_appointment"
	PermModifyAppointment        Permission = "modify_appointment"
	PermViewAssignedAppointments Permission = "view_assigned_appointments"
	PermListDoctors              Permission = "list_doctors"
	PermReadDoctor               Permission = "read_doctor"
	PermManageDoctors            Permission = "manage_doctors"
	PermManagePatients           Permission = "manage_patients"
	PermManageAdmins             Permission = "manage_admins"
	PermListSpecialties          Permission = "list_specialties"
	PermManageSpecialties        Permission = "manage_specialties"
	PermViewLiveFeed             Permission = "view_live_feed"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermListAppointments,
		PermReadAppointment,
		PermModifyAppointment,
		PermListDoctors,
		PermReadDoctor,
		PermManageDoctors,
		PermManagePatients,
		PermManageAdmins,
		PermListSpecialties,
		PermManageSpecialties,
	},
	domain.RoleDoctor: {
		PermListAppointments,
		PermReadAppointment,
		PermViewAssignedAppointments,
		PermListDoctors,
		PermReadDoctor,
		PermListSpecialties,
		PermViewLiveFeed,
	},
	domain.RolePatient: {
		PermBookAppointment,
		PermListAppointments,
		PermReadAppointment,
		PermModifyAppointment,
		PermListDoctors,
		PermListSpecialties,
	},
}

// AuthorizationService handles role checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns an error wrapping domain.ErrForbidden when the
// role lacks the permission.
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%w: %s role cannot %s", domain.ErrForbidden, role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}
