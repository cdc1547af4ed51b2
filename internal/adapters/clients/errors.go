// Package clients holds the outbound HTTP client used to reach the quote API.
package clients

import "errors"

// Infrastructure failures. Callers translate them into domain errors.
var (
	// ErrCircuitOpen means the breaker refused the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrTransport wraps failures where no response arrived at all, such as
	// timeouts, DNS errors and refused connections.
	ErrTransport = errors.New("transport failure")
)
