package dispatch

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
)

// Verify checks a challenge token presented at a robot. The robot
// forwards the person's bearer alongside the token they typed; on
// success the delivery advances past its authentication gate and the
// hatch unlocks.
func (s *Service) Verify(ctx context.Context, robotID int, token, bearer string) (*state.Delivery, error) {
	username, err := s.resolver.Resolve(ctx, bearer)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "resolving bearer")
	}
	if username == "" {
		s.verified("invalid_bearer")
		return nil, errors.New(errors.CodeUnauthorized, "invalid bearer")
	}

	var updated *state.Delivery
	var target state.DeliveryState
	err = s.store.Update(func(tx *state.Tx) error {
		robot := tx.Robot(robotID)
		if robot == nil || robot.Delivery == nil {
			s.verified("robot_idle")
			return errors.New(errors.CodeValidation, fmt.Sprintf("robot %d is not delivering", robotID))
		}

		delivery, ok := tx.Delivery(*robot.Delivery)
		if !ok {
			return errors.New(errors.CodeInternal, "robot assignment points at a missing delivery")
		}

		var expectedToken, claimant string
		switch delivery.State {
		case state.StateAwaitingAuthSender:
			expectedToken = delivery.SenderToken
			claimant = delivery.Sender
			target = state.StateAwaitingPackageLoad
		case state.StateAwaitingAuthReceiver:
			expectedToken = delivery.ReceiverToken
			claimant = delivery.Receiver
			target = state.StateAwaitingPackageRetrieval
		default:
			s.verified("not_awaiting")
			return errors.New(errors.CodeValidation, "delivery is not awaiting authentication")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			s.verified("token_mismatch")
			return errors.New(errors.CodeUnauthorized, "token mismatch")
		}
		if username != claimant {
			s.verified("wrong_user")
			return errors.New(errors.CodeUnauthorized, "user is not a party to this delivery")
		}

		s.commit(tx, delivery, target)
		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.verified("success")
	s.observeTransition(ctx, updated, target)
	return updated, nil
}

func (s *Service) verified(outcome string) {
	if s.metrics != nil {
		s.metrics.VerificationsTotal.WithLabelValues(outcome).Inc()
	}
}
