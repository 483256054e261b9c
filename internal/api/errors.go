package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/http/response"
)

// RegisterErrorHandler makes huma emit the StayBook error body
// {success:false, error, code, details}. Call this before registering
// routes. Schema failures (huma's 422) become 400 VALIDATION with the
// failing fields as details.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		details := make(map[string]string)
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return response.FromError(domainErr, logger)
			}

			var detailer huma.ErrorDetailer
			if errors.As(err, &detailer) {
				if d := detailer.ErrorDetail(); d != nil {
					details[fieldName(d.Location)] = d.Message
				}
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		code := statusToCode(status)

		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("request failed", "status", status, "message", message, "errors", errs)
			}
			message = "internal server error"
		}

		var body any
		if len(details) > 0 {
			body = details
		}
		return response.NewErrorBody(status, code, message, body)
	}
}

// fail converts a service error into the error body huma writes.
func (s *Server) fail(err error) error {
	return response.FromError(err, s.logger)
}

// fieldName turns a huma location such as "body.addedPhotos[0]" into
// "addedPhotos[0]".
func fieldName(location string) string {
	for _, prefix := range []string{"body.", "query.", "path.", "header."} {
		if rest, ok := strings.CutPrefix(location, prefix); ok {
			return rest
		}
	}
	return location
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return domainerrors.CodeValidation
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	default:
		return domainerrors.CodeInternal
	}
}
