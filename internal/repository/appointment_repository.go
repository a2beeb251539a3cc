package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

// PostgresAppointmentRepository implements domain.AppointmentRepository
type PostgresAppointmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAppointmentRepository creates a new appointment repository
func NewPostgresAppointmentRepository(db *sql.DB, logger *slog.Logger) *PostgresAppointmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAppointmentRepository{db: db, logger: logger}
}

// Create inserts the appointment and fills ID and CreatedAt
func (r *PostgresAppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	query := `
		INSERT INTO appointments (patient_user_id, doctor_user_id, specialty_id, scheduled_at, reason, kind)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.PatientUserID,
		a.DoctorUserID,
		nullableID(a.SpecialtyID),
		a.ScheduledAt,
		a.Reason,
		string(a.Kind),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create appointment",
			slog.Int64("patient_user_id", a.PatientUserID),
			slog.String("error", err.Error()),
		)
		return translate("create appointment", err)
	}
	return nil
}

// GetByID retrieves an appointment
func (r *PostgresAppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `
		SELECT id, patient_user_id, doctor_user_id, specialty_id, scheduled_at, reason, kind, created_at
		FROM appointments
		WHERE id = $1
	`
	a := &domain.Appointment{}
	var specialty sql.NullInt64
	var kind string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PatientUserID, &a.DoctorUserID, &specialty, &a.ScheduledAt, &a.Reason, &kind, &a.CreatedAt,
	)
	if err != nil {
		return nil, translate("get appointment", err)
	}
	a.SpecialtyID = idPtr(specialty)
	a.Kind = domain.Kind(kind)
	return a, nil
}

// List returns appointments joined with participant names, oldest first
func (r *PostgresAppointmentRepository) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.AppointmentView, error) {
	query := `
		SELECT a.id, a.patient_user_id, a.doctor_user_id, a.specialty_id, a.scheduled_at, a.reason, a.kind, a.created_at,
		       p.name || ' ' || p.surname, d.name || ' ' || d.surname, COALESCE(s.name, '')
		FROM appointments a
		JOIN patients p ON p.user_id = a.patient_user_id
		JOIN doctors d ON d.user_id = a.doctor_user_id
		LEFT JOIN specialties s ON s.id = a.specialty_id
		WHERE ($1::bigint = 0 OR a.patient_user_id = $1)
		  AND ($2::bigint = 0 OR a.doctor_user_id = $2)
		ORDER BY a.scheduled_at, a.id
	`
	rows, err := r.db.QueryContext(ctx, query, filter.PatientUserID, filter.DoctorUserID)
	if err != nil {
		r.logger.Error("failed to list appointments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	views := []domain.AppointmentView{}
	for rows.Next() {
		var v domain.AppointmentView
		var specialty sql.NullInt64
		var kind string
		if err := rows.Scan(
			&v.ID, &v.PatientUserID, &v.DoctorUserID, &specialty, &v.ScheduledAt, &v.Reason, &kind, &v.CreatedAt,
			&v.PatientName, &v.DoctorName, &v.SpecialtyName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		v.SpecialtyID = idPtr(specialty)
		v.Kind = domain.Kind(kind)
		views = append(views, v)
	}
	return views, rows.Err()
}

// Update reschedules an appointment. Only the time and the reason change;
// doctor, specialty and kind are fixed at creation.
func (r *PostgresAppointmentRepository) Update(ctx context.Context, a *domain.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET scheduled_at = $2, reason = $3
		WHERE id = $1
	`, a.ID, a.ScheduledAt, a.Reason)
	if err != nil {
		return translate("update appointment", err)
	}
	return expectRow(res)
}

// Delete removes an appointment
func (r *PostgresAppointmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return translate("delete appointment", err)
	}
	return expectRow(res)
}
