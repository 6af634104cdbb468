package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
	IDs     []string    `json:"ids,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidDimension, errors.ErrCodeOutOfBounds, errors.ErrCodeOverlap:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeItemsExceedBounds:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and sends it as an ErrorResponse. This is the only
// place request errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	l := logger.With("method", r.Method, "path", r.URL.Path, "code", code, "status", status)
	switch {
	case status >= http.StatusInternalServerError:
		l.Error("request failed", "err", err)
	case code == errors.ErrCodeItemsExceedBounds:
		l.Info("request conflict", "err", err)
	default:
		l.Debug("request rejected", "err", err)
	}

	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
		Code:    status,
		IDs:     errors.OffendingIDs(err),
	})
}

// writeJSON sends data as a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status is already sent; an encoding failure cannot be reported.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}
