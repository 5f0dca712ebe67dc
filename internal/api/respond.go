package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

const (
	statusSuccess = "success"
	statusPartial = "partial"
	statusError   = "error"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

var errEmptyBody = errors.New("request body is empty")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *task.ValidationError
		invalid *analysis.InvalidTasksError
		perr    *priority.Error
		decode  *decodeError
	)
	switch {
	case errors.As(err, &decode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: statusError, Message: "Invalid request body", Detail: decode.Error()})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: statusError, Message: "Invalid task data", Errors: verr.Fields})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: statusError, Message: "Invalid input data", Errors: invalid.Problems})
	case errors.Is(err, task.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: statusError, Message: err.Error()})
	case errors.As(err, &perr) && perr.Kind == priority.KindInvalidStrategy:
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: statusError, Message: perr.Message})
	case errors.As(err, &perr) && perr.Kind == priority.KindNoTasksAvailable:
		writeJSON(w, http.StatusNotFound, errorResponse{Status: statusError, Message: perr.Message})
	default:
		requestLogger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: statusError, Message: "Internal server error", Detail: err.Error()})
	}
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return &decodeError{err: errEmptyBody}
		}
		return &decodeError{err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}
