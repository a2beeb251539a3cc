package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/security/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	users    domain.UserRepository
	patients domain.PatientRepository
	doctors  domain.DoctorRepository
	admins   domain.AdminRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.UserRepository,
	patients domain.PatientRepository,
	doctors domain.DoctorRepository,
	admins domain.AdminRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:    users,
		patients: patients,
		doctors:  doctors,
		admins:   admins,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult represents login response
type LoginResult struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"` // seconds
	UserID    int64       `json:"user_id"`
	Role      domain.Role `json:"role"`
	Profile   any         `json:"profile"`
}

// Login authenticates a user and returns a JWT token with the role profile
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("", "email and password are required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt with non-existent email", slog.String("email", email))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(user.PasswordHash, password) {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(domain.Principal{UserID: user.ID, Role: user.Role, Email: user.Email})
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		UserID:    user.ID,
		Role:      user.Role,
		Profile:   profile,
	}, nil
}

func (s *AuthService) profile(ctx context.Context, user *domain.User) (any, error) {
	var (
		profile any
		err     error
	)
	switch user.Role {
	case domain.RolePatient:
		profile, err = s.patients.GetByUserID(ctx, user.ID)
	case domain.RoleDoctor:
		profile, err = s.doctors.GetByUserID(ctx, user.ID)
	case domain.RoleAdmin:
		profile, err = s.admins.GetByUserID(ctx, user.ID)
	default:
		return nil, fmt.Errorf("user %d has unknown role %q", user.ID, user.Role)
	}
	if err != nil {
		s.logger.Error("user without profile",
			slog.Int64("user_id", user.ID),
			slog.String("role", string(user.Role)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// ChangePassword changes a user's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !checkPassword(user.PasswordHash, oldPassword) {
		return domain.NewValidationError("old_password", "current password is incorrect")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("failed to update user password", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("user changed password", slog.Int64("user_id", userID))
	return nil
}
