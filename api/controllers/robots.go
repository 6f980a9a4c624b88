package controllers

import (
	"context"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/middleware"
	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/api/validators"
	"github.com/courierlabs/robocourier-backend/internal/robots"
	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
)

// RobotService reads and writes robot telemetry.
type RobotService interface {
	Snapshot(ctx context.Context, id int) (*state.Robot, error)
	Batch(ctx context.Context, id int) (*robots.Batch, error)
	SetBatch(ctx context.Context, id int, req robots.BatchUpdate) error
	SetCorrection(ctx context.Context, id int, value float64) error
	SetAngle(ctx context.Context, id int, value float64) error
	SetDistance(ctx context.Context, id int, value float64) error
	SetMotor(ctx context.Context, id int, value bool) error
	SetLock(ctx context.Context, id int, value bool) error
}

// RobotVerifier checks challenge tokens presented at a robot.
type RobotVerifier interface {
	Verify(ctx context.Context, robotID int, token, bearer string) (*state.Delivery, error)
}

// fieldBody covers every per-field write. The wire key for each route
// is the field's own name, so one decode target serves them all and a
// type mismatch fails before anything is written.
type fieldBody struct {
	Correction *float64 `json:"correction"`
	Angle      *float64 `json:"angle"`
	Distance   *float64 `json:"distance"`
	Motor      *bool    `json:"motor"`
	Lock       *bool    `json:"lock"`
}

// RobotField serves one telemetry field. GET returns the current value
// keyed by the field name, POST replaces it and echoes the new value.
func RobotField(svc RobotService, writer *responses.Writer, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		if r.Method == http.MethodGet {
			snapshot, err := svc.Snapshot(r.Context(), id)
			if err != nil {
				writer.Err(r.Context(), w, err)
				return
			}
			writer.JSON(r.Context(), w, http.StatusOK, map[string]any{field: fieldValue(snapshot, field)})
			return
		}

		value, err := setField(r, svc, id, field)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, map[string]any{field: value})
	}
}

func fieldValue(robot *state.Robot, field string) any {
	switch field {
	case "correction":
		return robot.Correction
	case "angle":
		return robot.Angle
	case "distance":
		return robot.Distance
	case "motor":
		return robot.Motor
	case "lock":
		return robot.Lock
	}
	return nil
}

func setField(r *http.Request, svc RobotService, id int, field string) (any, error) {
	var req fieldBody
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return nil, err
	}

	missing := errors.New(errors.CodeValidation, field+" is required")
	switch field {
	case "correction":
		if req.Correction == nil {
			return nil, missing
		}
		return *req.Correction, svc.SetCorrection(r.Context(), id, *req.Correction)
	case "angle":
		if req.Angle == nil {
			return nil, missing
		}
		return *req.Angle, svc.SetAngle(r.Context(), id, *req.Angle)
	case "distance":
		if req.Distance == nil {
			return nil, missing
		}
		return *req.Distance, svc.SetDistance(r.Context(), id, *req.Distance)
	case "motor":
		if req.Motor == nil {
			return nil, missing
		}
		return *req.Motor, svc.SetMotor(r.Context(), id, *req.Motor)
	case "lock":
		if req.Lock == nil {
			return nil, missing
		}
		return *req.Lock, svc.SetLock(r.Context(), id, *req.Lock)
	}
	return nil, errors.New(errors.CodeInternal, "unknown telemetry field")
}

// RobotBatch serves the combined snapshot robots poll, and accepts
// partial actuator writes so a robot can report pose corrections in
// one roundtrip.
func RobotBatch(svc RobotService, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		if r.Method == http.MethodPost {
			var req robots.BatchUpdate
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				writer.Err(r.Context(), w, err)
				return
			}
			if err := svc.SetBatch(r.Context(), id, req); err != nil {
				writer.Err(r.Context(), w, err)
				return
			}
		}

		batch, err := svc.Batch(r.Context(), id)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, batch)
	}
}

type verifyRequest struct {
	Token *string `json:"token"`
}

type verifyResponse struct {
	State string `json:"state"`
}

// VerifyRobot handles a challenge token typed at a robot's keypad. The
// person identifies themselves with their bearer in the Authorization
// header, forwarded by the robot.
func VerifyRobot(verifier RobotVerifier, writer *responses.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writer.NotFound(r.Context(), w)
			return
		}

		var req verifyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		if req.Token == nil {
			writer.Err(r.Context(), w, errors.New(errors.CodeValidation, "token is required"))
			return
		}
		bearer := middleware.BearerFromHeader(r)
		if bearer == "" {
			writer.Err(r.Context(), w, errors.New(errors.CodeUnauthorized, "bearer is required"))
			return
		}

		updated, err := verifier.Verify(r.Context(), id, *req.Token, bearer)
		if err != nil {
			writer.Err(r.Context(), w, err)
			return
		}
		writer.JSON(r.Context(), w, http.StatusOK, verifyResponse{State: string(updated.State)})
	}
}
