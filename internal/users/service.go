package users

import (
	"context"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/security"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
}

type Service struct {
	repo  Repository
	logg  *logger.Logger
	pwCfg config.PasswordConfig
}

func NewService(repo Repository, logg *logger.Logger, pwCfg config.PasswordConfig) *Service {
	return &Service{repo: repo, logg: logg, pwCfg: pwCfg}
}

// Register creates an account with an Argon2id password hash.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New(errors.CodeValidation, "username and password are required")
	}

	taken, err := s.repo.Exists(ctx, username)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "checking username")
	}
	if taken {
		return errors.New(errors.CodeValidation, "username is already registered")
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	if err := s.repo.Create(ctx, &models.User{Username: username, PasswordHash: hash}); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "creating account")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, username), "account registered")
	}
	return nil
}

// Authenticate reports whether the credentials match a stored
// account. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "loading account")
	}
	if user == nil {
		return false, nil
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	return match, nil
}

// Exists reports whether a username belongs to a registered account.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "checking username")
	}
	return exists, nil
}

// Summary is the public view of an account.
type Summary struct {
	Username string `json:"username"`
}

// List returns every registered account in registration order.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing accounts")
	}
	out := make([]Summary, 0, len(all))
	for _, user := range all {
		out = append(out, Summary{Username: user.Username})
	}
	return out, nil
}
