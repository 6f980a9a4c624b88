package dispatch

import "github.com/courierlabs/robocourier-backend/internal/state"

// Trigger distinguishes how a state may be entered. Patch-triggered
// states advance through the delivery PATCH endpoint, verify-triggered
// states advance only through a successful challenge token check.
type Trigger int

const (
	TriggerPatch Trigger = iota
	TriggerVerifySender
	TriggerVerifyReceiver
)

type rule struct {
	next    state.DeliveryState
	trigger Trigger
}

// successors encodes the single legal path through the lifecycle.
// COMPLETE is terminal and UNKNOWN has no exits.
var successors = map[state.DeliveryState]rule{
	state.StateInQueue:                  {state.StateMovingToSource, TriggerPatch},
	state.StateMovingToSource:           {state.StateAwaitingAuthSender, TriggerPatch},
	state.StateAwaitingAuthSender:       {state.StateAwaitingPackageLoad, TriggerVerifySender},
	state.StateAwaitingPackageLoad:      {state.StatePackageLoadComplete, TriggerPatch},
	state.StatePackageLoadComplete:      {state.StateMovingToDestination, TriggerPatch},
	state.StateMovingToDestination:      {state.StateAwaitingAuthReceiver, TriggerPatch},
	state.StateAwaitingAuthReceiver:     {state.StateAwaitingPackageRetrieval, TriggerVerifyReceiver},
	state.StateAwaitingPackageRetrieval: {state.StatePackageRetrievalComplete, TriggerPatch},
	state.StatePackageRetrievalComplete: {state.StateComplete, TriggerPatch},
}

// entryTrigger reports how a state is entered. IN_QUEUE is the
// initial state and cannot be entered by transition.
func entryTrigger(target state.DeliveryState) (Trigger, bool) {
	for _, r := range successors {
		if r.next == target {
			return r.trigger, true
		}
	}
	return 0, false
}

// lockFor derives the hatch lock for a robot assigned to a delivery
// in the given state. The hatch opens only while a package is being
// loaded or retrieved.
func lockFor(s state.DeliveryState) bool {
	switch s {
	case state.StateAwaitingPackageLoad, state.StateAwaitingPackageRetrieval:
		return false
	default:
		return true
	}
}
