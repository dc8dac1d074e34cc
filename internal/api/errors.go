// Package api provides the HTTP surface of the match server: handlers,
// routing and the standardized error envelope.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/onnwee/ideamatch/internal/middleware"
	"github.com/onnwee/ideamatch/internal/validate"
)

// Error codes returned in the error envelope.
const (
	// ErrCodeValidation indicates input validation failure, including
	// malformed bodies.
	ErrCodeValidation = "validation_error"

	// ErrCodeNotFound indicates no route matched the request path.
	ErrCodeNotFound = "not_found"

	// ErrCodeMethodNotAllowed indicates the route exists for other methods.
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// ErrCodeRateLimited indicates rate limit exceeded.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodePayloadTooLarge indicates the body exceeded the configured limit.
	ErrCodePayloadTooLarge = "payload_too_large"

	// ErrCodeUnsupportedMediaType indicates a body that is neither JSON nor CBOR.
	ErrCodeUnsupportedMediaType = "unsupported_media_type"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
)

// ErrorResponse represents the standard error response format.
// All API errors return JSON in this structure:
// {"error": {"code": "...", "message": "...", "details": [...]}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code, a human-readable message and, for
// validation errors, one entry per rejected field.
type ErrorDetail struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Details []validate.FieldError `json:"details,omitempty"`
}

// WriteError writes a standardized JSON error response and records code for
// the logging middleware.
//
// Example:
//
//	api.WriteError(w, r.Context(), http.StatusNotFound, api.ErrCodeNotFound, "Route not found")
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	WriteErrorDetails(w, ctx, status, code, message, nil)
}

// WriteErrorDetails is WriteError with per-field details.
func WriteErrorDetails(w http.ResponseWriter, ctx context.Context, status int, code, message string, details []validate.FieldError) {
	ctx = middleware.SetErrorCode(ctx, code)

	data, err := json.Marshal(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// StatusCodeMapping returns the HTTP status code for an error code.
func StatusCodeMapping(code string) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// NotFound answers unknown routes with the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}

// RateLimited writes the 429 envelope; Retry-After is set by the limiter.
func RateLimited(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r.Context(), http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests, retry later")
}
