package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestError_MapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, "validation_error"},
		{apperr.NotFound("missing"), http.StatusNotFound, "not_found"},
		{apperr.Conflict("busy"), http.StatusConflict, "conflict"},
		{apperr.Dependency("user service", errors.New("down")), http.StatusServiceUnavailable, "dependency_unavailable"},
		{apperr.Publish(errors.New("nack")), http.StatusServiceUnavailable, "publish_failure"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := httptest.NewRecorder()
			Error(w, tt.err)

			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.kind, body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("pq: password authentication failed"))

	body := decode(t, w)
	assert.Equal(t, "internal server error", body["message"])
}

func TestPage(t *testing.T) {
	w := httptest.NewRecorder()
	Page(w, "ok", []int{1, 2}, map[string]int{"total": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{float64(1), float64(2)}, body["data"])
	assert.Equal(t, map[string]any{"total": float64(2)}, body["meta"])
}
