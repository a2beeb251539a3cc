package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps constraint violations to domain errors and wraps the rest
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			if strings.Contains(pqErr.Constraint, "email") {
				return domain.ErrDuplicateEmail
			}
			return domain.NewValidationError("", "a record with the same value already exists")
		case pqForeignKeyViolation:
			return domain.NewValidationError("", "referenced record does not exist or is still in use")
		case pqCheckViolation:
			return domain.NewValidationError("", "value violates constraint "+pqErr.Constraint)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func expectRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// insertUser writes the users row of a new account inside tx
func insertUser(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return tx.QueryRowContext(ctx, query, user.Email, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
}

// applyAccountChange updates the users row of an existing account inside tx
func applyAccountChange(ctx context.Context, tx *sql.Tx, userID int64, change domain.AccountChange) error {
	if change.Email != "" {
		res, err := tx.ExecContext(ctx, `UPDATE users SET email = $2 WHERE id = $1`, userID, change.Email)
		if err != nil {
			return err
		}
		if err := expectRow(res); err != nil {
			return err
		}
	}
	if change.PasswordHash != "" {
		res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, change.PasswordHash)
		if err != nil {
			return err
		}
		if err := expectRow(res); err != nil {
			return err
		}
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
