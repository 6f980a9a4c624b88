package targets

import (
	"context"
	"fmt"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

// CreateRequest carries a new navigation target. Name is required,
// the rest is cosmetic metadata for operator dashboards.
type CreateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// UpdateRequest patches an existing target. Absent keys leave the
// field untouched.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type Response struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func newResponse(target *models.Target) Response {
	return Response{
		ID:          target.ID,
		Name:        target.Name,
		Description: target.Description,
		Color:       target.Color,
	}
}

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, target *models.Target) error
	GetByID(ctx context.Context, id int) (*models.Target, error)
	List(ctx context.Context) ([]models.Target, error)
	Save(ctx context.Context, target *models.Target) error
	Delete(ctx context.Context, id int) (bool, error)
	DeleteAll(ctx context.Context) error
}

type Service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	target := &models.Target{
		Name:        *req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := s.repo.Create(ctx, target); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating target")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "target_id", target.ID), "target created")
	}
	resp := newResponse(target)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Response, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading target")
	}
	if target == nil {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("target %d does not exist", id))
	}
	resp := newResponse(target)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]Response, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing targets")
	}
	out := make([]Response, 0, len(all))
	for i := range all {
		out = append(out, newResponse(&all[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Response, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading target")
	}
	if target == nil {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("target %d does not exist", id))
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		target.Name = *req.Name
	}
	if req.Description != nil {
		target.Description = req.Description
	}
	if req.Color != nil {
		target.Color = req.Color
	}

	if err := s.repo.Save(ctx, target); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving target")
	}
	resp := newResponse(target)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting target")
	}
	if !removed {
		return errors.New(errors.CodeNotFound, fmt.Sprintf("target %d does not exist", id))
	}
	return nil
}

// DeleteAll wipes every stored target.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "clearing targets")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "targets cleared")
	}
	return nil
}

// Resolve returns a snapshot of the target suitable for embedding into
// a delivery, or nil when the id is unknown.
func (s *Service) Resolve(ctx context.Context, id int) (*state.TargetRef, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading target")
	}
	if target == nil {
		return nil, nil
	}
	return &state.TargetRef{
		ID:          target.ID,
		Name:        target.Name,
		Description: target.Description,
		Color:       target.Color,
	}, nil
}
