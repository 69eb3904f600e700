package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/users"
)

// ErrLockedOut reports too many failed logins for an email.
var ErrLockedOut = fmt.Errorf("auth: too many failed attempts, try again later: %w", httpx.ErrUnauthorized)

// UserFinder looks accounts up by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users   UserFinder
	lockout *Lockout
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(finder UserFinder, lockout *Lockout, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: finder, lockout: lockout, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	locked, err := s.lockout.Locked(ctx, email)
	if err != nil {
		s.logger.Warn("login lockout check failed", slog.Any("error", err))
	}
	if locked {
		return users.User{}, ErrLockedOut
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return users.User{}, err
	}
	if err != nil || !user.IsActive || !users.CheckPassword(user.PasswordHash, password) {
		if ferr := s.lockout.Fail(ctx, email); ferr != nil {
			s.logger.Warn("login failure not counted", slog.Any("error", ferr))
		}
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := s.lockout.Reset(ctx, email); err != nil {
		s.logger.Warn("login lockout reset failed", slog.Any("error", err))
	}
	return user, nil
}
