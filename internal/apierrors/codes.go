// Package apierrors provides structured API error codes and responses.
// Codes are namespaced (e.g., "chat:quota_exceeded") and carry a default
// message plus a suggested HTTP status.
package apierrors

import "net/http"

// Error codes recognized by the service.
const (
	// Request errors
	CodeInvalidRequest = "chat:invalid_request"

	// Quota
	CodeQuotaExceeded = "chat:quota_exceeded"

	// Upstream completion backend
	CodeUpstreamFailed = "chat:upstream_failed"

	// Server errors
	CodeInternalError = "core:internal_error"
)

// ErrorCode is one registered API error code.
type ErrorCode struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status"`
}

var codes = map[string]ErrorCode{
	CodeInvalidRequest: {Code: CodeInvalidRequest, Message: "Question is required", HTTPStatus: http.StatusBadRequest},
	CodeQuotaExceeded:  {Code: CodeQuotaExceeded, Message: "Daily message limit reached, come back tomorrow 💜", HTTPStatus: http.StatusTooManyRequests},
	CodeUpstreamFailed: {Code: CodeUpstreamFailed, Message: "Oops 😅 I couldn't reply right now.", HTTPStatus: http.StatusInternalServerError},
	CodeInternalError:  {Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
}

// HTTPStatus returns the registered status for code, or 500 for unknown codes.
func HTTPStatus(code string) int {
	if e, ok := codes[code]; ok {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the registered default message for code.
func Message(code string) string {
	if e, ok := codes[code]; ok {
		return e.Message
	}
	return "Unknown error"
}
