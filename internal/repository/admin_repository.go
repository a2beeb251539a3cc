package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/database"
)

// PostgresAdminRepository implements domain.AdminRepository
type PostgresAdminRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAdminRepository creates a new administrator repository
func NewPostgresAdminRepository(db *sql.DB, logger *slog.Logger) *PostgresAdminRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAdminRepository{db: db, logger: logger}
}

// Create inserts the user row and the administrator profile in one transaction
func (r *PostgresAdminRepository) Create(ctx context.Context, user *domain.User, a *domain.Admin) (int64, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO administrators (user_id, name, surname) VALUES ($1, $2, $3)`,
			user.ID, a.Name, a.Surname)
		return err
	})
	if err != nil {
		r.logger.Error("failed to create administrator",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return 0, translate("create administrator", err)
	}
	a.UserID = user.ID
	a.Email = user.Email
	return user.ID, nil
}

// GetByUserID retrieves an administrator profile
func (r *PostgresAdminRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Admin, error) {
	a := &domain.Admin{}
	err := r.db.QueryRowContext(ctx, `
		SELECT a.user_id, u.email, a.name, a.surname
		FROM administrators a JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
	`, userID).Scan(&a.UserID, &a.Email, &a.Name, &a.Surname)
	if err != nil {
		return nil, translate("get administrator", err)
	}
	return a, nil
}

// List returns every administrator
func (r *PostgresAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.user_id, u.email, a.name, a.surname
		FROM administrators a JOIN users u ON u.id = a.user_id
		ORDER BY a.surname, a.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list administrators: %w", err)
	}
	defer rows.Close()

	admins := []domain.Admin{}
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(&a.UserID, &a.Email, &a.Name, &a.Surname); err != nil {
			return nil, fmt.Errorf("failed to scan administrator: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Update writes the profile and optional account changes in one transaction
func (r *PostgresAdminRepository) Update(ctx context.Context, a *domain.Admin, change domain.AccountChange) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE administrators SET name = $2, surname = $3 WHERE user_id = $1`,
			a.UserID, a.Name, a.Surname)
		if err != nil {
			return err
		}
		if err := expectRow(res); err != nil {
			return err
		}
		return applyAccountChange(ctx, tx, a.UserID, change)
	})
	if err != nil {
		return translate("update administrator", err)
	}
	return nil
}
