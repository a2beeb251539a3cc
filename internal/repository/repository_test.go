package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestPatientCreateIsTransactional(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPatientRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "hash", "PATIENT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	mock.ExpectExec("INSERT INTO patients").
		WithArgs(int64(7), "Ana", "Ruiz", "1990-04-02", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &domain.User{Email: "ana@example.com", PasswordHash: "hash", Role: domain.RolePatient}
	p := &domain.Patient{Name: "Ana", Surname: "Ruiz", Birthdate: "1990-04-02"}
	id, err := repo.Create(context.Background(), user, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 7 || p.UserID != 7 || p.Email != "ana@example.com" {
		t.Fatalf("expected id 7 propagated, got id=%d profile=%+v", id, p)
	}
}

func TestPatientCreateRollsBackWhenProfileFails(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPatientRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(8, time.Now()))
	mock.ExpectExec("INSERT INTO patients").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	user := &domain.User{Email: "bo@example.com", PasswordHash: "hash", Role: domain.RolePatient}
	if _, err := repo.Create(context.Background(), user, &domain.Patient{Name: "Bo", Surname: "Li"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDuplicateEmailIsTranslated(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDoctorRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectRollback()

	user := &domain.User{Email: "house@example.com", PasswordHash: "hash", Role: domain.RoleDoctor}
	_, err := repo.Create(context.Background(), user, &domain.Doctor{Name: "Gregory", Surname: "House"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSpecialtyDeleteInUseIsValidationError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSpecialtyRepository(db, nil)

	mock.ExpectExec("DELETE FROM specialties").
		WithArgs(int64(3)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "doctors_specialty_id_fkey"})

	if err := repo.Delete(context.Background(), 3); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAppointmentCreateReturnsGeneratedID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAppointmentRepository(db, nil)
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(int64(1), int64(2), sqlmock.AnyArg(), when, "chest pain", "URGENT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))

	a := &domain.Appointment{PatientUserID: 1, DoctorUserID: 2, ScheduledAt: when, Reason: "chest pain", Kind: domain.KindUrgent}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID != 42 {
		t.Fatalf("expected id 42, got %d", a.ID)
	}
}

func TestAppointmentListPassesFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAppointmentRepository(db, nil)
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "patient_user_id", "doctor_user_id", "specialty_id", "scheduled_at", "reason", "kind", "created_at",
		"patient_name", "doctor_name", "specialty",
	}).AddRow(42, 1, 2, 5, when, "chest pain", "URGENT", when, "Ana Ruiz", "Gregory House", "Cardiología")
	mock.ExpectQuery("SELECT a.id").WithArgs(int64(0), int64(2)).WillReturnRows(rows)

	views, err := repo.List(context.Background(), domain.AppointmentFilter{DoctorUserID: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Kind != domain.KindUrgent || views[0].SpecialtyID == nil || *views[0].SpecialtyID != 5 {
		t.Fatalf("unexpected views %+v", views)
	}
}

func TestAppointmentUpdateOnlyReschedules(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAppointmentRepository(db, nil)
	when := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE appointments\s+SET scheduled_at = \$2, reason = \$3\s+WHERE id = \$1`).
		WithArgs(int64(42), when, "follow-up").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &domain.Appointment{ID: 42, DoctorUserID: 7, ScheduledAt: when, Reason: "follow-up", Kind: domain.KindUrgent}
	if err := repo.Update(context.Background(), a); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestAppointmentDeleteMissingIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAppointmentRepository(db, nil)

	mock.ExpectExec("DELETE FROM appointments").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)

	mock.ExpectQuery("SELECT id, email, password_hash, role, created_at").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
