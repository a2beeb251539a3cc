package service

import (
	"context"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

// AdminInput is the creation payload of an administrator
type AdminInput struct {
	AccountInput
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// AdminUpdate replaces the profile fields and optionally the credentials
type AdminUpdate struct {
	AccountUpdate
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// AdminService manages administrator accounts
type AdminService struct {
	users  domain.UserRepository
	admins domain.AdminRepository
	cache  *cache.Layer
	logger *slog.Logger
}

// NewAdminService creates an administrator service
func NewAdminService(users domain.UserRepository, admins domain.AdminRepository, c *cache.Layer, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{users: users, admins: admins, cache: c, logger: logger}
}

func (s *AdminService) Create(ctx context.Context, in AdminInput) (int64, error) {
	if err := require("name", in.Name); err != nil {
		return 0, err
	}
	if err := require("surname", in.Surname); err != nil {
		return 0, err
	}
	user, err := newUser(ctx, s.users, in.AccountInput, domain.RoleAdmin)
	if err != nil {
		return 0, err
	}
	id, err := s.admins.Create(ctx, user, &domain.Admin{Name: in.Name, Surname: in.Surname})
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateAll(ctx, cache.Admins)
	s.logger.Info("administrator created", slog.Int64("user_id", id))
	return id, nil
}

func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return cache.Fetch(ctx, s.cache, cache.Admins.All(), s.admins.List)
}

func (s *AdminService) Get(ctx context.Context, userID int64) (*domain.Admin, error) {
	return cache.Fetch(ctx, s.cache, cache.Admins.ID(userID), func(ctx context.Context) (*domain.Admin, error) {
		return s.admins.GetByUserID(ctx, userID)
	})
}

func (s *AdminService) Update(ctx context.Context, userID int64, in AdminUpdate) (*domain.Admin, error) {
	if err := require("name", in.Name); err != nil {
		return nil, err
	}
	if err := require("surname", in.Surname); err != nil {
		return nil, err
	}
	if _, err := s.admins.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	change, err := accountChange(ctx, s.users, userID, in.AccountUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.admins.Update(ctx, &domain.Admin{UserID: userID, Name: in.Name, Surname: in.Surname}, change); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.Admins.All(), cache.Admins.ID(userID))
	return s.admins.GetByUserID(ctx, userID)
}

// Delete refuses to remove the caller's own account so at least one
// administrator always remains reachable.
func (s *AdminService) Delete(ctx context.Context, caller domain.Principal, userID int64) error {
	if caller.UserID == userID {
		return domain.NewValidationError("id", "administrators cannot delete themselves")
	}
	if _, err := s.admins.GetByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx, cache.Admins)
	s.logger.Info("administrator deleted", slog.Int64("user_id", userID))
	return nil
}
