package controllers

import (
	"context"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/api/validators"
	"github.com/courierlabs/robocourier-backend/internal/targets"
)

// TargetService owns navigation target CRUD.
type TargetService interface {
	Create(ctx context.Context, req targets.CreateRequest) (*targets.Response, error)
	Get(ctx context.Context, id int) (*targets.Response, error)
	List(ctx context.Context) ([]targets.Response, error)
	Update(ctx context.Context, id int, req targets.UpdateRequest) (*targets.Response, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) error
}

func CreateTarget(svc TargetService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targets.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, created)
	}
}

func ListTargets(svc TargetService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, all)
	}
}

func GetTarget(svc TargetService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		target, err := svc.Get(r.Context(), id)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, target)
	}
}

func UpdateTarget(svc TargetService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		var req targets.UpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, req)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, updated)
	}
}

func DeleteTarget(svc TargetService, writer *responses.Writer) http.HandlerFunc {
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

// DeleteTargets wipes every stored target.
func DeleteTargets(svc TargetService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.Empty(w)
	}
}
