package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

const minPasswordLength = 8

var bcryptCost = bcrypt.DefaultCost

// AccountInput carries the credentials of a new account
type AccountInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountUpdate carries optional credential changes; empty fields are kept
type AccountUpdate struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// IsHashed reports whether stored looks like a bcrypt hash
func IsHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.NewValidationError("email", "is not a valid address")
	}
	return email, nil
}

func require(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field, "is required")
	}
	return nil
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return nil
}

// newUser validates credentials and builds the user row for role
func newUser(ctx context.Context, users domain.UserRepository, in AccountInput, role domain.Role) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	taken, err := users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateEmail
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &domain.User{Email: email, PasswordHash: hash, Role: role}, nil
}

// accountChange validates an update for userID and hashes a new password
func accountChange(ctx context.Context, users domain.UserRepository, userID int64, in AccountUpdate) (domain.AccountChange, error) {
	var change domain.AccountChange
	if in.Email != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return change, err
		}
		taken, err := users.EmailTaken(ctx, email, userID)
		if err != nil {
			return change, err
		}
		if taken {
			return change, domain.ErrDuplicateEmail
		}
		change.Email = email
	}
	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return change, err
		}
		hash, err := HashPassword(in.Password)
		if err != nil {
			return change, err
		}
		change.PasswordHash = hash
	}
	return change, nil
}
