package robots

import (
	"context"
	"fmt"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

// BatchDelivery is the slice of delivery state a robot needs while
// assigned: where it is in the lifecycle and the tokens it must show
// on its keypad display challenge.
type BatchDelivery struct {
	State             string `json:"state"`
	SenderAuthToken   string `json:"senderAuthToken"`
	ReceiverAuthToken string `json:"receiverAuthToken"`
}

// Batch is the single-roundtrip snapshot robots poll.
type Batch struct {
	Correction float64        `json:"correction"`
	Angle      float64        `json:"angle"`
	Motor      bool           `json:"motor"`
	Distance   float64        `json:"distance"`
	Delivery   *BatchDelivery `json:"delivery,omitempty"`
}

// BatchUpdate carries a partial actuator write. Absent keys leave the
// field untouched.
type BatchUpdate struct {
	Correction *float64 `json:"correction"`
	Angle      *float64 `json:"angle"`
	Motor      *bool    `json:"motor"`
	Distance   *float64 `json:"distance"`
}

// Service reads and writes robot telemetry. Robots are created lazily
// on first write; reads against an unknown robot return idle defaults.
type Service struct {
	store *state.Store
	logg  *logger.Logger
}

func NewService(store *state.Store, logg *logger.Logger) *Service {
	return &Service{store: store, logg: logg}
}

// Snapshot returns the current record for a robot, defaulting for
// robots that have never reported in.
func (s *Service) Snapshot(ctx context.Context, id int) (*state.Robot, error) {
	var snapshot *state.Robot
	err := s.store.View(func(tx *state.Tx) error {
		snapshot = tx.Robot(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot = &state.Robot{ID: id}
	}
	return snapshot, nil
}

// Batch bundles the actuator fields with the assigned delivery, if
// any, so robots poll one endpoint instead of five.
func (s *Service) Batch(ctx context.Context, id int) (*Batch, error) {
	var batch *Batch
	err := s.store.View(func(tx *state.Tx) error {
		robot := tx.Robot(id)
		if robot == nil {
			robot = &state.Robot{ID: id}
		}
		batch = &Batch{
			Correction: robot.Correction,
			Angle:      robot.Angle,
			Motor:      robot.Motor,
			Distance:   robot.Distance,
		}
		if robot.Delivery == nil {
			return nil
		}
		delivery, ok := tx.Delivery(*robot.Delivery)
		if !ok {
			return errors.New(errors.CodeInternal, "robot assignment points at a missing delivery")
		}
		batch.Delivery = &BatchDelivery{
			State:             string(delivery.State),
			SenderAuthToken:   delivery.SenderToken,
			ReceiverAuthToken: delivery.ReceiverToken,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) SetCorrection(ctx context.Context, id int, value float64) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		robot.Correction = value
		return nil
	})
}

func (s *Service) SetAngle(ctx context.Context, id int, value float64) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		robot.Angle = value
		return nil
	})
}

func (s *Service) SetDistance(ctx context.Context, id int, value float64) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		robot.Distance = value
		return nil
	})
}

func (s *Service) SetMotor(ctx context.Context, id int, value bool) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		robot.Motor = value
		return nil
	})
}

// SetBatch applies any subset of the actuator fields in one critical
// section. The lock is excluded since it is managed by the delivery
// lifecycle.
func (s *Service) SetBatch(ctx context.Context, id int, req BatchUpdate) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		if req.Correction != nil {
			robot.Correction = *req.Correction
		}
		if req.Angle != nil {
			robot.Angle = *req.Angle
		}
		if req.Motor != nil {
			robot.Motor = *req.Motor
		}
		if req.Distance != nil {
			robot.Distance = *req.Distance
		}
		return nil
	})
}

// SetLock is the manual override for idle robots. While a delivery is
// assigned the lock is derived from the delivery state and cannot be
// written directly.
func (s *Service) SetLock(ctx context.Context, id int, value bool) error {
	return s.update(ctx, id, func(robot *state.Robot) error {
		if robot.Delivery != nil {
			return errors.New(errors.CodeValidation, fmt.Sprintf("robot %d lock is managed by its delivery", id))
		}
		robot.Lock = value
		return nil
	})
}

func (s *Service) update(ctx context.Context, id int, mutate func(robot *state.Robot) error) error {
	return s.store.Update(func(tx *state.Tx) error {
		robot := tx.EnsureRobot(id)
		if err := mutate(robot); err != nil {
			return err
		}
		tx.PutRobot(robot)
		return nil
	})
}
