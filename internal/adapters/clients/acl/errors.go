package acl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/jsamuelsen/shrutam/internal/adapters/clients"
	"github.com/jsamuelsen/shrutam/internal/domain"
)

// errorMessagePaths are the envelope fields checked, in order, for a
// backend-provided failure message.
var errorMessagePaths = []string{"message", "error.message", "error"}

// ErrorMessage extracts a failure message from a response body.
// It supports the flat envelope ({"message": ...}) and nested error objects.
// Returns "" if the body is not JSON or carries no message.
func ErrorMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range errorMessagePaths {
		if res := gjson.GetBytes(body, path); res.Type == gjson.String && res.Str != "" {
			return res.Str
		}
	}

	return ""
}

// MapHTTPError maps a failed exchange to a *domain.RemoteError.
//
// Parameters:
//   - status: the HTTP status, or 0 when clientErr is set
//   - body: the response body (may be nil)
//   - clientErr: any error from the HTTP client (may be nil)
//   - operation: the operation being performed (e.g., "fetch today's quote")
//
// Transport failures and circuit-breaker rejections carry no status code.
// Everything else carries the status the backend answered with.
func MapHTTPError(status int, body []byte, clientErr error, operation string) *domain.RemoteError {
	if clientErr != nil {
		return mapClientError(clientErr, operation)
	}

	if status == 0 {
		return domain.NewRemoteError("no response received", domain.ErrUnavailable)
	}

	message := ErrorMessage(body)
	if message == "" {
		message = defaultMessageForStatus(status, operation)
	}

	return domain.NewRemoteStatusError(message, status, classifyStatus(status))
}

// mapClientError translates client-level errors to remote errors.
func mapClientError(err error, operation string) *domain.RemoteError {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewRemoteError(
			fmt.Sprintf("circuit breaker open during %s", operation), domain.ErrUnavailable)

	case clients.IsTimeout(err):
		return domain.NewRemoteError("timeout", fmt.Errorf("%w: %w", domain.ErrUnavailable, err))

	default:
		return domain.NewRemoteError(
			fmt.Sprintf("%s failed: network error occurred", operation),
			fmt.Errorf("%w: %w", domain.ErrUnavailable, err))
	}
}

// classifyStatus attaches the domain sentinel a status corresponds to.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	default:
		return domain.ErrUnavailable
	}
}

// defaultMessageForStatus returns a default message for an HTTP status.
func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
