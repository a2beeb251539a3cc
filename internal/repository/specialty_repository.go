package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

// PostgresSpecialtyRepository implements domain.SpecialtyRepository
type PostgresSpecialtyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSpecialtyRepository creates a new specialty repository
func NewPostgresSpecialtyRepository(db *sql.DB, logger *slog.Logger) *PostgresSpecialtyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSpecialtyRepository{db: db, logger: logger}
}

// Create inserts a specialty
func (r *PostgresSpecialtyRepository) Create(ctx context.Context, name string) (*domain.Specialty, error) {
	s := &domain.Specialty{Name: name}
	err := r.db.QueryRowContext(ctx, `INSERT INTO specialties (name) VALUES ($1) RETURNING id`, name).Scan(&s.ID)
	if err != nil {
		return nil, translate("create specialty", err)
	}
	return s, nil
}

// GetByID retrieves a specialty
func (r *PostgresSpecialtyRepository) GetByID(ctx context.Context, id int64) (*domain.Specialty, error) {
	s := &domain.Specialty{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM specialties WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, translate("get specialty", err)
	}
	return s, nil
}

// List returns every specialty ordered by name
func (r *PostgresSpecialtyRepository) List(ctx context.Context) ([]domain.Specialty, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM specialties ORDER BY name`)
	if err != nil {
		r.logger.Error("failed to list specialties", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	defer rows.Close()

	specialties := []domain.Specialty{}
	for rows.Next() {
		var s domain.Specialty
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan specialty: %w", err)
		}
		specialties = append(specialties, s)
	}
	return specialties, rows.Err()
}

// Update renames a specialty
func (r *PostgresSpecialtyRepository) Update(ctx context.Context, s *domain.Specialty) error {
	res, err := r.db.ExecContext(ctx, `UPDATE specialties SET name = $2 WHERE id = $1`, s.ID, s.Name)
	if err != nil {
		return translate("update specialty", err)
	}
	return expectRow(res)
}

// Delete removes a specialty. Doctors still referencing it block the delete.
func (r *PostgresSpecialtyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM specialties WHERE id = $1`, id)
	if err != nil {
		return translate("delete specialty", err)
	}
	return expectRow(res)
}
