package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrRendersEnvelope(t *testing.T) {
	writer := NewWriter(nil, false)
	rec := httptest.NewRecorder()

	writer.Err(context.Background(), rec, errors.New(errors.CodeValidation, "priority is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Equal(t, "Bad request", body.Error)
	assert.Equal(t, "priority is required", body.Friendly)
}

func TestErrSuppressesInternalDetailInProduction(t *testing.T) {
	writer := NewWriter(nil, false)
	rec := httptest.NewRecorder()

	writer.Err(context.Background(), rec, errors.Wrap(errors.CodeInternal, fmt.Errorf("pq: connection refused"), "loading account"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, suppressedMessage, body.Friendly)
}

func TestErrExposesInternalDetailInDev(t *testing.T) {
	writer := NewWriter(nil, true)
	rec := httptest.NewRecorder()

	writer.Err(context.Background(), rec, errors.New(errors.CodeInternal, "loading account"))

	body := decode(t, rec)
	assert.Equal(t, "loading account", body.Friendly)
}

func TestErrHandlesUntypedErrors(t *testing.T) {
	writer := NewWriter(nil, false)
	rec := httptest.NewRecorder()

	writer.Err(context.Background(), rec, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body.Error)
}

func TestEmptyWritesNoBody(t *testing.T) {
	writer := NewWriter(nil, false)
	rec := httptest.NewRecorder()

	writer.Empty(rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestJSONSetsContentType(t *testing.T) {
	writer := NewWriter(nil, false)
	rec := httptest.NewRecorder()

	writer.JSON(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
