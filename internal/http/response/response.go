// Package response writes JSON bodies for handlers that sit outside the
// typed API operations: uploads, static files and middleware rejections.
package response

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/staybook/staybook-server/internal/errors"
)

// ErrorBody is the JSON shape of every error response.
//
//	{"success": false, "error": "Place not found", "code": "NOT_FOUND"}
type ErrorBody struct {
	status  int
	Success bool        `json:"success" doc:"Always false"`
	Message string      `json:"error" doc:"Human-readable error message"`
	Code    errors.Code `json:"code" doc:"Machine-readable error code"`
	Details any         `json:"details,omitempty" doc:"Per-field validation messages or other context"`
}

// Error implements the error interface.
func (e *ErrorBody) Error() string {
	return e.Message
}

// GetStatus returns the HTTP status.
func (e *ErrorBody) GetStatus() int {
	return e.status
}

// ContentType keeps errors plain JSON rather than problem+json.
func (e *ErrorBody) ContentType(string) string {
	return "application/json"
}

// NewErrorBody builds a body with an explicit status.
func NewErrorBody(status int, code errors.Code, message string, details any) *ErrorBody {
	return &ErrorBody{status: status, Code: code, Message: message, Details: details}
}

// FromError maps err to a body. Coded errors keep their code, status and
// message; anything else becomes a generic 500 and is logged.
func FromError(err error, logger *slog.Logger) *ErrorBody {
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		if coded.Code.HTTPStatus() >= http.StatusInternalServerError && logger != nil {
			logger.Error("request failed", "code", coded.Code, "error", err)
		}
		code, msg := coded.Code, coded.Message
		if code == errors.CodeUpstream || code == errors.CodeInternal {
			code, msg = errors.CodeInternal, "internal server error"
		}
		return NewErrorBody(coded.HTTPStatus(), code, msg, coded.Details)
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	return NewErrorBody(http.StatusInternalServerError, errors.CodeInternal, "internal server error", nil)
}

// JSON writes v as the whole response body.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// Success writes v with 200 OK.
func Success(w http.ResponseWriter, v any, logger *slog.Logger) {
	JSON(w, http.StatusOK, v, logger)
}

// Error writes the error body for err.
func Error(w http.ResponseWriter, err error, logger *slog.Logger) {
	body := FromError(err, logger)
	JSON(w, body.status, body, logger)
}

// TooManyRequests writes a 429 RATE_LIMITED body.
func TooManyRequests(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, errors.ErrRateLimited, logger)
}
