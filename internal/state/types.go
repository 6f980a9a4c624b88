package state

// DeliveryState enumerates the delivery lifecycle. A delivery always
// starts in queue and advances one state at a time until complete.
type DeliveryState string

const (
	StateUnknown                  DeliveryState = "UNKNOWN"
	StateInQueue                  DeliveryState = "IN_QUEUE"
	StateMovingToSource           DeliveryState = "MOVING_TO_SOURCE"
	StateAwaitingAuthSender       DeliveryState = "AWAITING_AUTHENTICATION_SENDER"
	StateAwaitingPackageLoad      DeliveryState = "AWAITING_PACKAGE_LOAD"
	StatePackageLoadComplete      DeliveryState = "PACKAGE_LOAD_COMPLETE"
	StateMovingToDestination      DeliveryState = "MOVING_TO_DESTINATION"
	StateAwaitingAuthReceiver     DeliveryState = "AWAITING_AUTHENTICATION_RECEIVER"
	StateAwaitingPackageRetrieval DeliveryState = "AWAITING_PACKAGE_RETRIEVAL"
	StatePackageRetrievalComplete DeliveryState = "PACKAGE_RETRIEVAL_COMPLETE"
	StateComplete                 DeliveryState = "COMPLETE"
)

var knownStates = map[DeliveryState]struct{}{
	StateInQueue:                  {},
	StateMovingToSource:           {},
	StateAwaitingAuthSender:       {},
	StateAwaitingPackageLoad:      {},
	StatePackageLoadComplete:      {},
	StateMovingToDestination:      {},
	StateAwaitingAuthReceiver:     {},
	StateAwaitingPackageRetrieval: {},
	StatePackageRetrievalComplete: {},
	StateComplete:                 {},
}

// ParseState maps a raw label onto a lifecycle state. Anything
// unrecognized folds into StateUnknown.
func ParseState(raw string) DeliveryState {
	if _, ok := knownStates[DeliveryState(raw)]; ok {
		return DeliveryState(raw)
	}
	return StateUnknown
}

// Valid reports whether the state is a recognized lifecycle state.
func (s DeliveryState) Valid() bool {
	_, ok := knownStates[s]
	return ok
}

// TargetRef is the snapshot of a navigation target embedded into a
// delivery at creation time, so later target edits do not rewrite
// delivery history.
type TargetRef struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (t TargetRef) clone() TargetRef {
	copied := t
	if t.Description != nil {
		description := *t.Description
		copied.Description = &description
	}
	if t.Color != nil {
		color := *t.Color
		copied.Color = &color
	}
	return copied
}

// Delivery is the in-memory record of one package run.
type Delivery struct {
	ID          int
	Name        string
	Description *string
	Priority    int
	State       DeliveryState
	Sender      string
	Receiver    string
	From        TargetRef
	To          TargetRef

	// Challenge tokens are generated at robot assignment and are never
	// exposed to account-facing endpoints.
	SenderToken   string
	ReceiverToken string

	// Robot is nil while the delivery is queued or after completion.
	Robot *int
}

// Clone returns a deep copy so callers can mutate freely outside the
// store's critical section.
func (d *Delivery) Clone() *Delivery {
	if d == nil {
		return nil
	}
	copied := *d
	if d.Description != nil {
		description := *d.Description
		copied.Description = &description
	}
	copied.From = d.From.clone()
	copied.To = d.To.clone()
	if d.Robot != nil {
		robotID := *d.Robot
		copied.Robot = &robotID
	}
	return &copied
}

// Robot holds the last reported pose corrections plus the actuator
// flags the coordinator pushes back to the vehicle.
type Robot struct {
	ID         int
	Correction float64
	Angle      float64
	Distance   float64
	Motor      bool
	Lock       bool

	// Delivery is nil while the robot is idle.
	Delivery *int
}

// Clone returns a deep copy of the robot record.
func (r *Robot) Clone() *Robot {
	if r == nil {
		return nil
	}
	copied := *r
	if r.Delivery != nil {
		deliveryID := *r.Delivery
		copied.Delivery = &deliveryID
	}
	return &copied
}
