package deliveries

import (
	"context"
	"fmt"
	"sort"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/metrics"
)

// AccountDirectory answers whether a username belongs to a registered
// account.
type AccountDirectory interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// TargetDirectory resolves a target id into an embeddable snapshot.
// A nil snapshot with a nil error means the target does not exist.
type TargetDirectory interface {
	Resolve(ctx context.Context, id int) (*state.TargetRef, error)
}

// Service owns delivery CRUD. State transitions live in the dispatch
// package; this service only creates, reads and removes records.
type Service struct {
	store    *state.Store
	accounts AccountDirectory
	targets  TargetDirectory
	logg     *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(store *state.Store, accounts AccountDirectory, targets TargetDirectory, logg *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		targets:  targets,
		logg:     logg,
		metrics:  m,
	}
}

// Create queues a new delivery for the authenticated sender. The from
// and to targets are snapshotted into the record so later target edits
// leave existing deliveries untouched. Orders on behalf of someone
// else, or naming unknown accounts or targets, are refused as
// authorization failures so callers cannot probe which usernames exist.
func (s *Service) Create(ctx context.Context, username string, req CreateRequest) (*state.Delivery, error) {
	switch {
	case req.Name == nil || *req.Name == "":
		return nil, errors.New(errors.CodeValidation, "name is required")
	case req.Priority == nil:
		return nil, errors.New(errors.CodeValidation, "priority is required")
	case req.Sender == nil || *req.Sender == "":
		return nil, errors.New(errors.CodeValidation, "sender is required")
	case req.Receiver == nil || *req.Receiver == "":
		return nil, errors.New(errors.CodeValidation, "receiver is required")
	case req.From == nil:
		return nil, errors.New(errors.CodeValidation, "from is required")
	case req.To == nil:
		return nil, errors.New(errors.CodeValidation, "to is required")
	}

	if *req.Sender != username {
		return nil, errors.New(errors.CodeUnauthorized, "sender must be the authenticated user")
	}
	if err := s.checkAccount(ctx, *req.Sender); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, *req.Receiver); err != nil {
		return nil, err
	}
	from, err := s.resolveTarget(ctx, *req.From)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveTarget(ctx, *req.To)
	if err != nil {
		return nil, err
	}

	var created *state.Delivery
	err = s.store.Update(func(tx *state.Tx) error {
		created = &state.Delivery{
			ID:          tx.NextDeliveryID(),
			Name:        *req.Name,
			Description: req.Description,
			Priority:    *req.Priority,
			State:       state.StateInQueue,
			Sender:      *req.Sender,
			Receiver:    *req.Receiver,
			From:        *from,
			To:          *to,
		}
		tx.PutDelivery(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DeliveriesCreated.Inc()
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithDeliveryID(ctx, created.ID), "delivery queued")
	}
	return created, nil
}

// Get returns one delivery by id.
func (s *Service) Get(ctx context.Context, id int) (*state.Delivery, error) {
	var found *state.Delivery
	err := s.store.View(func(tx *state.Tx) error {
		delivery, ok := tx.Delivery(id)
		if !ok {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("delivery %d does not exist", id))
		}
		found = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List returns every delivery ordered by priority, then id.
func (s *Service) List(ctx context.Context) ([]*state.Delivery, error) {
	var all []*state.Delivery
	err := s.store.View(func(tx *state.Tx) error {
		all = tx.Deliveries()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority < all[j].Priority
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// Delete removes a delivery. A robot still attached is released and
// relocked in the same critical section.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Update(func(tx *state.Tx) error {
		delivery, ok := tx.Delivery(id)
		if !ok {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("delivery %d does not exist", id))
		}
		if delivery.Robot != nil {
			robot := tx.EnsureRobot(*delivery.Robot)
			robot.Delivery = nil
			robot.Lock = false
			tx.PutRobot(robot)
		}
		tx.DeleteDelivery(id)
		return nil
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithDeliveryID(ctx, id), "delivery removed")
	}
	return nil
}

// DeleteAll clears the whole delivery queue and idles every robot that
// was carrying one.
func (s *Service) DeleteAll(ctx context.Context) error {
	err := s.store.Update(func(tx *state.Tx) error {
		for _, delivery := range tx.Deliveries() {
			if delivery.Robot != nil {
				robot := tx.EnsureRobot(*delivery.Robot)
				robot.Delivery = nil
				robot.Lock = false
				tx.PutRobot(robot)
			}
			tx.DeleteDelivery(delivery.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "delivery queue cleared")
	}
	return nil
}

func (s *Service) checkAccount(ctx context.Context, username string) error {
	exists, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "looking up account")
	}
	if !exists {
		return errors.New(errors.CodeUnauthorized, fmt.Sprintf("unknown account %q", username))
	}
	return nil
}

func (s *Service) resolveTarget(ctx context.Context, id int) (*state.TargetRef, error) {
	ref, err := s.targets.Resolve(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up target")
	}
	if ref == nil {
		return nil, errors.New(errors.CodeUnauthorized, fmt.Sprintf("unknown target %d", id))
	}
	return ref, nil
}
