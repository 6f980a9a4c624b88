package controllers

import (
	"context"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/api/validators"
)

// AccountRegistrar creates accounts.
type AccountRegistrar interface {
	Register(ctx context.Context, username, password string) error
}

// SessionIssuer exchanges credentials for bearers.
type SessionIssuer interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, bearer string) error
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Bearer string `json:"bearer"`
}

// Register creates a new account and returns an empty 200.
func Register(svc AccountRegistrar, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		if err := svc.Register(r.Context(), req.Username, req.Password); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		writer.Empty(w)
	}
}

// Login exchanges credentials for a fresh bearer.
func Login(svc SessionIssuer, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		bearer, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		writer.JSON(r.Context(), w, http.StatusOK, loginResponse{Bearer: bearer})
	}
}

type logoutRequest struct {
	Bearer string `json:"bearer" validate:"required"`
}

// Logout revokes a bearer.
func Logout(svc SessionIssuer, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		if err := svc.Logout(r.Context(), req.Bearer); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}

		writer.Empty(w)
	}
}
