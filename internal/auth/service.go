package auth

import (
	"context"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/security"
)

// Credentials checks a username and password pair.
type Credentials interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// Service issues and resolves bearer tokens. Each successful login
// mints a fresh opaque bearer; old bearers stay valid until their TTL
// runs out.
type Service struct {
	creds    Credentials
	sessions SessionStore
	logg     *logger.Logger
	cfg      config.AuthConfig
}

func NewService(creds Credentials, sessions SessionStore, logg *logger.Logger, cfg config.AuthConfig) *Service {
	if cfg.BearerLength <= 0 {
		cfg.BearerLength = 32
	}
	return &Service{
		creds:    creds,
		sessions: sessions,
		logg:     logg,
		cfg:      cfg,
	}
}

// Login validates credentials and returns a new bearer. Bad usernames
// and bad passwords produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New(errors.CodeValidation, "username and password are required")
	}

	match, err := s.creds.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	bearer, err := security.GenerateToken(s.cfg.BearerLength)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "generating bearer")
	}

	if err := s.sessions.Put(ctx, bearer, username, s.cfg.BearerTTL); err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "storing session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, username), "login succeeded")
	}
	return bearer, nil
}

// Resolve maps a bearer to its username, returning empty string for
// unknown or expired bearers.
func (s *Service) Resolve(ctx context.Context, bearer string) (string, error) {
	if bearer == "" {
		return "", nil
	}
	username, err := s.sessions.Resolve(ctx, bearer)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "resolving session")
	}
	return username, nil
}

// Logout revokes a bearer. Revoking an unknown bearer is a no-op.
func (s *Service) Logout(ctx context.Context, bearer string) error {
	if bearer == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, bearer); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "revoking session")
	}
	return nil
}
