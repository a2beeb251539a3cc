package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func seed(t *testing.T, s *Store) (patientID, doctorID, specialtyID int64) {
	t.Helper()
	ctx := context.Background()
	sp, err := s.Specialties().Create(ctx, "Cardiology")
	if err != nil {
		t.Fatal(err)
	}
	patientID, err = s.Patients().Create(ctx, &domain.User{Email: "p@example.com", Role: domain.RolePatient}, &domain.Patient{Name: "P", Surname: "One"})
	if err != nil {
		t.Fatal(err)
	}
	doctorID, err = s.Doctors().Create(ctx, &domain.User{Email: "d@example.com", Role: domain.RoleDoctor}, &domain.Doctor{Name: "D", Surname: "Two", SpecialtyID: &sp.ID})
	if err != nil {
		t.Fatal(err)
	}
	return patientID, doctorID, sp.ID
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := NewStore()
	seed(t, s)
	_, err := s.Admins().Create(context.Background(), &domain.User{Email: "P@example.com", Role: domain.RoleAdmin}, &domain.Admin{Name: "A"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestUserDeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, d, _ := seed(t, s)
	if err := s.Appointments().Create(ctx, &domain.Appointment{PatientUserID: p, DoctorUserID: d, ScheduledAt: time.Now(), Reason: "x", Kind: domain.KindGeneral}); err != nil {
		t.Fatal(err)
	}

	if err := s.Users().Delete(ctx, d); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Doctors().GetByUserID(ctx, d); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("doctor profile survived: %v", err)
	}
	if users, appts := s.Counts(); users != 1 || appts != 0 {
		t.Fatalf("counts after delete: users=%d appointments=%d", users, appts)
	}
}

func TestSpecialtyInUseCannotBeDeleted(t *testing.T) {
	s := NewStore()
	_, _, sp := seed(t, s)
	if err := s.Specialties().Delete(context.Background(), sp); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAppointmentListJoinsNames(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, d, sp := seed(t, s)
	s.SetNextAppointmentID(42)
	a := &domain.Appointment{PatientUserID: p, DoctorUserID: d, SpecialtyID: &sp, ScheduledAt: time.Now(), Reason: "chest pain", Kind: domain.KindUrgent}
	if err := s.Appointments().Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if a.ID != 42 {
		t.Fatalf("id = %d", a.ID)
	}

	list, err := s.Appointments().List(ctx, domain.AppointmentFilter{DoctorUserID: d})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].PatientName != "P One" || list[0].SpecialtyName != "Cardiology" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if none, _ := s.Appointments().List(ctx, domain.AppointmentFilter{PatientUserID: d}); len(none) != 0 {
		t.Fatalf("filter ignored: %+v", none)
	}
}
