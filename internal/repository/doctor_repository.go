package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/database"
)

const doctorSelect = `
	SELECT d.user_id, u.email, d.name, d.surname, d.specialty_id, COALESCE(s.name, ''), d.phone
	FROM doctors d
	JOIN users u ON u.id = d.user_id
	LEFT JOIN specialties s ON s.id = d.specialty_id
`

// PostgresDoctorRepository implements domain.DoctorRepository
type PostgresDoctorRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresDoctorRepository creates a new doctor repository
func NewPostgresDoctorRepository(db *sql.DB, logger *slog.Logger) *PostgresDoctorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDoctorRepository{db: db, logger: logger}
}

// Create inserts the user row and the doctor profile in one transaction
func (r *PostgresDoctorRepository) Create(ctx context.Context, user *domain.User, d *domain.Doctor) (int64, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO doctors (user_id, name, surname, specialty_id, phone)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, d.Name, d.Surname, nullableID(d.SpecialtyID), d.Phone)
		return err
	})
	if err != nil {
		r.logger.Error("failed to create doctor",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return 0, translate("create doctor", err)
	}
	d.UserID = user.ID
	d.Email = user.Email
	return user.ID, nil
}

// GetByUserID retrieves a doctor profile with its specialty name
func (r *PostgresDoctorRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	d := &domain.Doctor{}
	if err := scanDoctor(r.db.QueryRowContext(ctx, doctorSelect+` WHERE d.user_id = $1`, userID), d); err != nil {
		return nil, translate("get doctor", err)
	}
	return d, nil
}

// List returns every doctor ordered by surname
func (r *PostgresDoctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, doctorSelect+` ORDER BY d.surname, d.name`)
	if err != nil {
		r.logger.Error("failed to list doctors", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	doctors := []domain.Doctor{}
	for rows.Next() {
		var d domain.Doctor
		if err := scanDoctor(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// Update writes the profile and optional account changes in one transaction
func (r *PostgresDoctorRepository) Update(ctx context.Context, d *domain.Doctor, change domain.AccountChange) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE doctors
			SET name = $2, surname = $3, specialty_id = $4, phone = $5
			WHERE user_id = $1
		`, d.UserID, d.Name, d.Surname, nullableID(d.SpecialtyID), d.Phone)
		if err != nil {
			return err
		}
		if err := expectRow(res); err != nil {
			return err
		}
		return applyAccountChange(ctx, tx, d.UserID, change)
	})
	if err != nil {
		return translate("update doctor", err)
	}
	return nil
}

func scanDoctor(row rowScanner, d *domain.Doctor) error {
	var specialty sql.NullInt64
	if err := row.Scan(&d.UserID, &d.Email, &d.Name, &d.Surname, &specialty, &d.SpecialtyName, &d.Phone); err != nil {
		return err
	}
	d.SpecialtyID = idPtr(specialty)
	return nil
}
