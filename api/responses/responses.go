package responses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

const suppressedMessage = "Internal server error. Error messages are suppressed in production mode."

// Writer renders every response the API produces. Successes are raw
// JSON payloads, failures use the code/error/friendly envelope robot
// firmware and the dashboard both key on.
type Writer struct {
	logg *logger.Logger

	// exposeInternal surfaces internal error details in the friendly
	// field. Enabled outside production only.
	exposeInternal bool
}

func NewWriter(logg *logger.Logger, exposeInternal bool) *Writer {
	return &Writer{logg: logg, exposeInternal: exposeInternal}
}

type errorBody struct {
	Code     int    `json:"code"`
	Error    string `json:"error"`
	Friendly string `json:"friendly"`
}

// JSON writes a success payload.
func (w *Writer) JSON(ctx context.Context, rw http.ResponseWriter, status int, payload any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(payload); err != nil && w.logg != nil {
		w.logg.Error(ctx, "encoding response", err)
	}
}

// Empty writes a 200 with no body.
func (w *Writer) Empty(rw http.ResponseWriter) {
	rw.WriteHeader(http.StatusOK)
}

// Err maps an error onto the wire envelope. Untyped errors are
// treated as internal.
func (w *Writer) Err(ctx context.Context, rw http.ResponseWriter, err error) {
	typed := errors.As(err)
	if typed == nil {
		typed = errors.Wrap(errors.CodeInternal, err, "unexpected error")
	}

	meta := errors.MetadataFor(typed.Code())

	friendly := typed.Message()
	if !meta.MessageAllowed && !w.exposeInternal {
		friendly = suppressedMessage
	}

	if meta.HTTPStatus >= http.StatusInternalServerError && w.logg != nil {
		w.logg.Error(ctx, "request failed", err)
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(meta.HTTPStatus)
	body := errorBody{
		Code:     meta.HTTPStatus,
		Error:    meta.Label,
		Friendly: friendly,
	}
	if encodeErr := json.NewEncoder(rw).Encode(body); encodeErr != nil && w.logg != nil {
		w.logg.Error(ctx, "encoding error response", encodeErr)
	}
}

// NotFound is the catch-all for unknown routes and malformed path ids.
func (w *Writer) NotFound(ctx context.Context, rw http.ResponseWriter) {
	w.Err(ctx, rw, errors.New(errors.CodeNotFound, "resource not found"))
}
