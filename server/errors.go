package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/logging"
)

var errBadParam = errors.New("invalid query parameter")

// ErrorResponse is the JSON body of every failed request. Previous carries
// the last valid scene for the requested chart when a layout pass fails.
type ErrorResponse struct {
	Error    string        `json:"error"`
	Code     string        `json:"code"`
	Previous *engine.Scene `json:"previous,omitempty"`
}

// errorCode maps an engine sentinel to a stable machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadParam):
		return "bad_request"
	case errors.Is(err, engine.ErrAcquisition):
		return "acquisition_failed"
	case errors.Is(err, engine.ErrEmptyDomain):
		return "empty_domain"
	case errors.Is(err, engine.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, engine.ErrInvalidLayout):
		return "invalid_layout"
	case errors.Is(err, engine.ErrInvalidPadding):
		return "invalid_padding"
	case errors.Is(err, engine.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, engine.ErrUnknownChartKind):
		return "unknown_chart_kind"
	}
	return "internal"
}

// respondError logs err against the request and writes it as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int, previous *engine.Scene) {
	code := errorCode(err)
	logging.FromContext(r.Context()).Warn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)
	writeJSONStatus(w, status, ErrorResponse{Error: err.Error(), Code: code, Previous: previous})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
