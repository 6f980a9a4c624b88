package dispatch

import (
	"context"
	"testing"

	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAwaitingDelivery(t *testing.T, store *state.Store, deliveryState state.DeliveryState) {
	t.Helper()
	robotID := 1
	seedDelivery(t, store, &state.Delivery{
		ID:            0,
		State:         deliveryState,
		Sender:        "alice",
		Receiver:      "bob",
		Robot:         &robotID,
		SenderToken:   "SENDTOKEN0",
		ReceiverToken: "RECVTOKEN0",
	})
}

func TestVerifySenderUnlocksForLoading(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthSender)

	updated, err := svc.Verify(context.Background(), 1, "SENDTOKEN0", "alice-bearer")
	require.NoError(t, err)

	assert.Equal(t, state.StateAwaitingPackageLoad, updated.State)
	assert.False(t, getRobot(t, store, 1).Lock)
}

func TestVerifyReceiverUnlocksForRetrieval(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthReceiver)

	updated, err := svc.Verify(context.Background(), 1, "RECVTOKEN0", "bob-bearer")
	require.NoError(t, err)

	assert.Equal(t, state.StateAwaitingPackageRetrieval, updated.State)
	assert.False(t, getRobot(t, store, 1).Lock)
}

func TestVerifyRejectsUnknownBearer(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthSender)

	_, err := svc.Verify(context.Background(), 1, "SENDTOKEN0", "nope")
	assertCode(t, err, errors.CodeUnauthorized)
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthSender)

	_, err := svc.Verify(context.Background(), 1, "WRONGTOKEN", "alice-bearer")
	assertCode(t, err, errors.CodeUnauthorized)

	// A failed attempt must not advance the delivery.
	require.NoError(t, store.View(func(tx *state.Tx) error {
		delivery, _ := tx.Delivery(0)
		assert.Equal(t, state.StateAwaitingAuthSender, delivery.State)
		return nil
	}))
}

func TestVerifyRejectsReceiverTokenAtSenderGate(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthSender)

	_, err := svc.Verify(context.Background(), 1, "RECVTOKEN0", "bob-bearer")
	assertCode(t, err, errors.CodeUnauthorized)
}

func TestVerifyRejectsWrongUser(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateAwaitingAuthSender)

	// Bob knows the sender token but is not the sender.
	_, err := svc.Verify(context.Background(), 1, "SENDTOKEN0", "bob-bearer")
	assertCode(t, err, errors.CodeUnauthorized)
}

func TestVerifyRejectsIdleRobot(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.Verify(context.Background(), 9, "SENDTOKEN0", "alice-bearer")
	assertCode(t, err, errors.CodeValidation)
}

func TestVerifyRejectsWhenNotAwaitingAuthentication(t *testing.T) {
	svc, store := newTestService(t, false)
	seedAwaitingDelivery(t, store, state.StateMovingToSource)

	_, err := svc.Verify(context.Background(), 1, "SENDTOKEN0", "alice-bearer")
	assertCode(t, err, errors.CodeValidation)
}
