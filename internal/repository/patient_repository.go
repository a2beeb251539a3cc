package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/database"
)

const patientColumns = `
	p.user_id, u.email, p.name, p.surname,
	COALESCE(to_char(p.birthdate, 'YYYY-MM-DD'), ''),
	p.address, p.phone, p.national_id
`

// PostgresPatientRepository implements domain.PatientRepository
type PostgresPatientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPatientRepository creates a new patient repository
func NewPostgresPatientRepository(db *sql.DB, logger *slog.Logger) *PostgresPatientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPatientRepository{db: db, logger: logger}
}

// Create inserts the user row and the patient profile in one transaction
func (r *PostgresPatientRepository) Create(ctx context.Context, user *domain.User, p *domain.Patient) (int64, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO patients (user_id, name, surname, birthdate, address, phone, national_id)
			VALUES ($1, $2, $3, NULLIF($4, '')::date, $5, $6, $7)
		`, user.ID, p.Name, p.Surname, p.Birthdate, p.Address, p.Phone, p.NationalID)
		return err
	})
	if err != nil {
		r.logger.Error("failed to create patient",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return 0, translate("create patient", err)
	}
	p.UserID = user.ID
	p.Email = user.Email
	return user.ID, nil
}

// GetByUserID retrieves a patient profile
func (r *PostgresPatientRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	p := &domain.Patient{}
	if err := scanPatient(r.db.QueryRowContext(ctx, query, userID), p); err != nil {
		return nil, translate("get patient", err)
	}
	return p, nil
}

// List returns every patient ordered by surname
func (r *PostgresPatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients p JOIN users u ON u.id = p.user_id
		ORDER BY p.surname, p.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list patients", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := []domain.Patient{}
	for rows.Next() {
		var p domain.Patient
		if err := scanPatient(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Update writes the profile and optional account changes in one transaction
func (r *PostgresPatientRepository) Update(ctx context.Context, p *domain.Patient, change domain.AccountChange) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE patients
			SET name = $2, surname = $3, birthdate = NULLIF($4, '')::date,
			    address = $5, phone = $6, national_id = $7
			WHERE user_id = $1
		`, p.UserID, p.Name, p.Surname, p.Birthdate, p.Address, p.Phone, p.NationalID)
		if err != nil {
			return err
		}
		if err := expectRow(res); err != nil {
			return err
		}
		return applyAccountChange(ctx, tx, p.UserID, change)
	})
	if err != nil {
		return translate("update patient", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner, p *domain.Patient) error {
	return row.Scan(&p.UserID, &p.Email, &p.Name, &p.Surname, &p.Birthdate, &p.Address, &p.Phone, &p.NationalID)
}
