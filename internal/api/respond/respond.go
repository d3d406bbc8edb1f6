// Package respond writes the JSON envelope shared by every HTTP endpoint.
//
// Success bodies are {success, message, data, meta}; failures are {success, message, error}
// where error is the apperr kind of the failure.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Accepted writes a 202 success envelope.
func Accepted(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusAccepted, envelope{Success: true, Message: message, Data: data})
}

// Page writes a 200 success envelope with pagination meta.
func Page(w http.ResponseWriter, message string, data, meta any) {
	JSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: meta})
}

// Fail writes a failure envelope of the given kind.
func Fail(w http.ResponseWriter, status int, kind apperr.Kind, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	JSON(w, status, envelope{Success: false, Message: msg, Error: string(kind)})
}

// Error maps err to its status code and writes the failure envelope.
// Internal errors are logged and reported without detail.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)

	if kind == apperr.KindInternal {
		zlog.Logger.Error().Err(err).Msg("internal error")
	}

	Fail(w, status, kind, errors.New(apperr.MessageOf(err)))
}

// StatusOf returns the HTTP status code of an error kind.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindDependency, apperr.KindPublish:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
