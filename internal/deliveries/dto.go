package deliveries

import "github.com/courierlabs/robocourier-backend/internal/state"

// CreateRequest carries a new delivery order. Pointer fields let the
// service distinguish a missing key from a zero value.
type CreateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	From        *int    `json:"from"`
	To          *int    `json:"to"`
	Sender      *string `json:"sender"`
	Receiver    *string `json:"receiver"`
}

// Response is the account-facing view of a delivery. The from and to
// targets are embedded as full objects, challenge tokens are
// deliberately absent, and the robot key is dropped while the delivery
// is unassigned.
type Response struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Priority    int             `json:"priority"`
	From        state.TargetRef `json:"from"`
	To          state.TargetRef `json:"to"`
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	State       string          `json:"state"`
	Robot       *int            `json:"robot,omitempty"`
}

func NewResponse(d *state.Delivery) Response {
	return Response{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Priority:    d.Priority,
		From:        d.From,
		To:          d.To,
		Sender:      d.Sender,
		Receiver:    d.Receiver,
		State:       string(d.State),
		Robot:       d.Robot,
	}
}

func NewResponseList(all []*state.Delivery) []Response {
	out := make([]Response, 0, len(all))
	for _, d := range all {
		out = append(out, NewResponse(d))
	}
	return out
}
