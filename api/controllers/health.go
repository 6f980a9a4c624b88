package controllers

import (
	"context"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
)

// Pinger is anything the readiness probe should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// Liveness reports the process is up.
func Liveness(writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writer.JSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

// Readiness reports whether the backing stores are reachable.
func Readiness(writer *responses.Writer, pingers ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				writer.Err(r.Context(), w, errors.Wrap(errors.CodeDependency, err, "dependency unreachable"))
				return
			}
		}
		writer.JSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ready"})
	}
}
