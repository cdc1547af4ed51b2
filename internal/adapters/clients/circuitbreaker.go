package clients

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Defaults for unset CircuitBreakerConfig fields.
const (
	defaultBreakerMaxFailures   = 5
	defaultBreakerTimeout       = 30 * time.Second
	defaultBreakerHalfOpenLimit = 1
)

// State is the breaker state.
type State = gobreaker.State

// Breaker states.
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// errServerStatus marks a 5xx response inside the breaker so it counts as
// a failure while the response still reaches the caller.
var errServerStatus = errors.New("server error status")

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit caps concurrent probes while half-open; that many
	// consecutive successes close the circuit again.
	HalfOpenLimit int
}

// Snapshot is a point-in-time view of the breaker for health reporting.
type Snapshot struct {
	State               State
	ConsecutiveFailures int
	RetryAt             time.Time
}

// CircuitBreaker stops calls to the quote API after repeated failures so an
// offline client reaches its cache without waiting on timeouts.
//
//	closed --MaxFailures failures--> open --Timeout--> half-open
//	half-open --HalfOpenLimit successes--> closed
//	half-open --any failure--> open
type CircuitBreaker struct {
	gb      *gobreaker.CircuitBreaker[*http.Response]
	timeout time.Duration

	mu       sync.Mutex
	openedAt time.Time
}

// NewCircuitBreaker returns a closed breaker. onChange, if set, runs on
// every transition.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, onChange func(from, to State)) *CircuitBreaker {
	maxFailures := positiveOr(cfg.MaxFailures, defaultBreakerMaxFailures)
	halfOpen := positiveOr(cfg.HalfOpenLimit, defaultBreakerHalfOpenLimit)

	b := &CircuitBreaker{timeout: positiveOr(cfg.Timeout, defaultBreakerTimeout)}

	b.gb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpen), //nolint:gosec // bounded by config validation
		Timeout:     b.timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return int(c.ConsecutiveFailures) >= maxFailures
		},
		OnStateChange: func(_ string, from, to State) {
			if to == StateOpen {
				b.mu.Lock()
				b.openedAt = time.Now()
				b.mu.Unlock()
			}

			if onChange != nil {
				onChange(from, to)
			}
		},
	})

	return b
}

// Execute runs call unless the circuit refuses it, in which case it
// returns ErrCircuitOpen. Errors from call and 5xx responses count as
// failures; a 5xx response is still returned with a nil error.
func (b *CircuitBreaker) Execute(call func() (*http.Response, error)) (*http.Response, error) {
	resp, err := b.gb.Execute(func() (*http.Response, error) {
		resp, err := call()
		if err == nil && resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}

		return resp, err
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrCircuitOpen
	case errors.Is(err, errServerStatus):
		return resp, nil
	default:
		return resp, err
	}
}

// State returns the current state.
func (b *CircuitBreaker) State() State {
	return b.gb.State()
}

// Snapshot returns the current state and, while open, when probing resumes.
func (b *CircuitBreaker) Snapshot() Snapshot {
	s := Snapshot{
		State:               b.gb.State(),
		ConsecutiveFailures: int(b.gb.Counts().ConsecutiveFailures),
	}

	if s.State == StateOpen {
		b.mu.Lock()
		s.RetryAt = b.openedAt.Add(b.timeout)
		b.mu.Unlock()
	}

	return s
}
