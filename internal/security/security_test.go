package security

import (
	"errors"
	"testing"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func TestRolePermissions(t *testing.T) {
	as := NewAuthorizationService(nil)
	cases := []struct {
		role domain.Role
		perm Permission
		want bool
	}{
		{domain.RolePatient, PermBookAppointment, true},
		{domain.RoleDoctor, PermBookAppointment, false},
		{domain.RoleAdmin, PermBookAppointment, false},
		{domain.RoleDoctor, PermReadDoctor, true},
		{domain.RolePatient, PermReadDoctor, false},
		{domain.RoleDoctor, PermViewAssignedAppointments, true},
		{domain.RoleAdmin, PermManageSpecialties, true},
		{domain.RolePatient, PermManageSpecialties, false},
		{domain.RoleDoctor, PermModifyAppointment, false},
		{"NURSE", PermListDoctors, false},
	}
	for _, tc := range cases {
		if got := as.HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("%s/%s: expected %v, got %v", tc.role, tc.perm, tc.want, got)
		}
	}
	if err := as.ValidatePermission(domain.RolePatient, PermManageAdmins); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAppointmentOwnership(t *testing.T) {
	o := NewOwnershipService(nil)
	appt := &domain.Appointment{ID: 42, PatientUserID: 1, DoctorUserID: 2}

	owner := domain.Principal{UserID: 1, Role: domain.RolePatient}
	stranger := domain.Principal{UserID: 3, Role: domain.RolePatient}
	doctor := domain.Principal{UserID: 2, Role: domain.RoleDoctor}
	otherDoctor := domain.Principal{UserID: 4, Role: domain.RoleDoctor}
	admin := domain.Principal{UserID: 9, Role: domain.RoleAdmin}

	for _, action := range []Action{ActionRead, ActionWrite, ActionDelete} {
		if err := o.ValidateAppointmentAccess(owner, appt, action); err != nil {
			t.Errorf("owner %s: %v", action, err)
		}
		if err := o.ValidateAppointmentAccess(admin, appt, action); err != nil {
			t.Errorf("admin %s: %v", action, err)
		}
		if err := o.ValidateAppointmentAccess(stranger, appt, action); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("other patient %s: expected forbidden, got %v", action, err)
		}
		if err := o.ValidateAppointmentAccess(otherDoctor, appt, action); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("unassigned doctor %s: expected forbidden, got %v", action, err)
		}
	}

	if err := o.ValidateAppointmentAccess(doctor, appt, ActionRead); err != nil {
		t.Errorf("assigned doctor read: %v", err)
	}
	for _, action := range []Action{ActionWrite, ActionDelete} {
		if err := o.ValidateAppointmentAccess(doctor, appt, action); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("assigned doctor %s: expected forbidden, got %v", action, err)
		}
	}
}
