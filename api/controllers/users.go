package controllers

import (
	"context"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/internal/users"
)

// AccountLister enumerates registered accounts.
type AccountLister interface {
	List(ctx context.Context) ([]users.Summary, error)
}

// ListUsers returns every registered account in registration order.
func ListUsers(svc AccountLister, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.List(r.Context())
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, accounts)
	}
}
