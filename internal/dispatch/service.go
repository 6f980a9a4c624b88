package dispatch

import (
	"context"
	"fmt"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/metrics"
	"github.com/courierlabs/robocourier-backend/pkg/security"
)

// BearerResolver maps a bearer token onto the username it was issued
// to, returning empty string for unknown or expired tokens.
type BearerResolver interface {
	Resolve(ctx context.Context, bearer string) (string, error)
}

// Service coordinates delivery state transitions and robot
// assignment. Every mutation runs inside one store update so robots
// can never be double-booked.
type Service struct {
	store    *state.Store
	resolver BearerResolver
	logg     *logger.Logger
	metrics  *metrics.Metrics
	cfg      config.DispatchConfig
}

func NewService(store *state.Store, resolver BearerResolver, logg *logger.Logger, m *metrics.Metrics, cfg config.DispatchConfig) *Service {
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = 10
	}
	return &Service{
		store:    store,
		resolver: resolver,
		logg:     logg,
		metrics:  m,
		cfg:      cfg,
	}
}

// Apply advances a delivery to the requested state. Transitions into
// MOVING_TO_SOURCE additionally claim the named robot and mint both
// challenge tokens. The whole check and mutation is one critical
// section, so a conflicting request observes either nothing or the
// completed transition.
func (s *Service) Apply(ctx context.Context, deliveryID int, target state.DeliveryState, robotID *int) (*state.Delivery, error) {
	if !target.Valid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown state %q", target))
	}

	trigger, reachable := entryTrigger(target)
	if !reachable {
		s.rejected("unreachable_state")
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("state %s cannot be entered by update", target))
	}
	// Permissive mode lets operators patch across verification gates,
	// so the trigger check only applies in strict mode.
	if !s.cfg.Permissive && trigger != TriggerPatch {
		s.rejected("verification_required")
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("state %s requires authentication", target))
	}

	// Token generation can fail, so it happens before the critical
	// section. Unused tokens are discarded.
	senderToken, receiverToken, err := s.mintTokens()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "generating challenge tokens")
	}

	var updated *state.Delivery
	err = s.store.Update(func(tx *state.Tx) error {
		delivery, ok := tx.Delivery(deliveryID)
		if !ok {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("delivery %d does not exist", deliveryID))
		}

		if !s.cfg.Permissive {
			r, hasNext := successors[delivery.State]
			if !hasNext || r.next != target {
				s.rejected("illegal_transition")
				return errors.New(errors.CodeValidation, fmt.Sprintf("cannot move from %s to %s", delivery.State, target))
			}
		}

		if target == state.StateMovingToSource {
			if robotID == nil {
				s.rejected("robot_missing")
				return errors.New(errors.CodeValidation, "a robot is required to start a delivery")
			}
			robot := tx.EnsureRobot(*robotID)
			if robot.Delivery != nil && *robot.Delivery != delivery.ID {
				s.rejected("robot_busy")
				return errors.New(errors.CodeValidation, fmt.Sprintf("robot %d is already delivering", *robotID))
			}
			// A re-dispatch onto a different robot releases the one
			// previously attached to this delivery.
			if delivery.Robot != nil && *delivery.Robot != *robotID {
				previous := tx.EnsureRobot(*delivery.Robot)
				previous.Delivery = nil
				previous.Lock = false
				tx.PutRobot(previous)
			}
			delivery.Robot = robotID
			delivery.SenderToken = senderToken
			delivery.ReceiverToken = receiverToken
			robot.Delivery = &delivery.ID
			tx.PutRobot(robot)
		}

		s.commit(tx, delivery, target)
		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observeTransition(ctx, updated, target)
	return updated, nil
}

// commit finalizes a validated transition: it moves the delivery,
// recomputes the assigned robot's hatch lock, and releases the robot
// when the delivery completes.
func (s *Service) commit(tx *state.Tx, delivery *state.Delivery, target state.DeliveryState) {
	delivery.State = target

	if delivery.Robot != nil {
		robot := tx.EnsureRobot(*delivery.Robot)
		robot.Lock = lockFor(target)
		if target == state.StateComplete {
			robot.Delivery = nil
			delivery.Robot = nil
		}
		tx.PutRobot(robot)
	}

	tx.PutDelivery(delivery)
}

func (s *Service) mintTokens() (string, string, error) {
	senderToken, err := security.GenerateToken(s.cfg.TokenLength)
	if err != nil {
		return "", "", err
	}
	receiverToken, err := security.GenerateToken(s.cfg.TokenLength)
	if err != nil {
		return "", "", err
	}
	return senderToken, receiverToken, nil
}

func (s *Service) observeTransition(ctx context.Context, delivery *state.Delivery, target state.DeliveryState) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
		if target == state.StateComplete {
			s.metrics.DeliveriesCompleted.Inc()
		}
		s.refreshGauges()
	}
	if s.logg != nil {
		ctx = s.logg.WithDeliveryID(ctx, delivery.ID)
		s.logg.Info(ctx, fmt.Sprintf("delivery moved to %s", target))
	}
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.TransitionsRejected.WithLabelValues(reason).Inc()
	}
}

func (s *Service) refreshGauges() {
	_ = s.store.View(func(tx *state.Tx) error {
		s.metrics.ActiveDeliveries.Set(float64(tx.DeliveryCount()))
		s.metrics.BusyRobots.Set(float64(tx.BusyRobotCount()))
		return nil
	})
}
