package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/middleware"
	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/api/validators"
	"github.com/courierlabs/robocourier-backend/internal/deliveries"
	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
)

// DeliveryService owns delivery CRUD.
type DeliveryService interface {
	Create(ctx context.Context, username string, req deliveries.CreateRequest) (*state.Delivery, error)
	Get(ctx context.Context, id int) (*state.Delivery, error)
	List(ctx context.Context) ([]*state.Delivery, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) error
}

// Dispatcher advances deliveries through the lifecycle.
type Dispatcher interface {
	Apply(ctx context.Context, deliveryID int, target state.DeliveryState, robotID *int) (*state.Delivery, error)
}

type transitionRequest struct {
	State *string `json:"state"`
	Robot *int    `json:"robot"`
}

func CreateDelivery(svc DeliveryService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliveries.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		created, err := svc.Create(r.Context(), middleware.Username(r.Context()), req)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, deliveries.NewResponse(created))
	}
}

func ListDeliveries(svc DeliveryService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, deliveries.NewResponseList(all))
	}
}

func GetDelivery(svc DeliveryService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		delivery, err := svc.Get(r.Context(), id)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, deliveries.NewResponse(delivery))
	}
}

// TransitionDelivery moves a delivery to the requested state,
// optionally naming the robot that should carry it.
func TransitionDelivery(dispatcher Dispatcher, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		if req.State == nil {
			writer.Err(r.Context(), w, errors.New(errors.CodeValidation, "state is required"))
			return
		}

		target := state.ParseState(*req.State)
		if !target.Valid() {
			writer.Err(r.Context(), w, errors.New(errors.CodeValidation, fmt.Sprintf("unknown state %q", *req.State)))
			return
		}

		updated, err := dispatcher.Apply(r.Context(), id, target, req.Robot)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, deliveries.NewResponse(updated))
	}
}

func DeleteDelivery(svc DeliveryService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.Empty(w)
	}
}

// DeleteDeliveries clears the whole queue and idles every assigned
// robot.
func DeleteDeliveries(svc DeliveryService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.Empty(w)
	}
}
