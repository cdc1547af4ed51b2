package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/shrutam/internal/cache"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

// Sync Pipeline Pattern: Fetch → Verify → Persist → Respond
//
// Every successful remote read goes through the same four steps so that
// nothing reaches a cache before it has been checked.
//
// The 4 Steps:
//   1. FETCH   - Read from the remote source (exactly one attempt)
//   2. VERIFY  - Re-check the payload before it can be cached or returned
//   3. PERSIST - Write the verified data to the caches (best-effort)
//   4. RESPOND - Shape the verified data for the caller
//
// Fetch and Verify failures abort the pipeline; the caller decides whether a
// cache fallback applies. Persist never aborts it: a degraded write is logged
// and the fresh data is still returned.

// ExecutionStep represents a step in the sync pipeline.
type ExecutionStep string

const (
	StepFetch   ExecutionStep = "fetch"
	StepVerify  ExecutionStep = "verify"
	StepPersist ExecutionStep = "persist"
	StepRespond ExecutionStep = "respond"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs sync pipelines with per-step logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the functions for each step of the sync pipeline.
// F is the fetched payload, V the verified value and O the response.
type Operation[F, V, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Fetch performs the single remote read.
	Fetch func(ctx context.Context) (F, error)

	// Verify checks the fetched payload. Nil accepts it unchanged, which
	// requires F and V to be the same type.
	Verify func(ctx context.Context, fetched F) (V, error)

	// Persist writes the verified value to the caches and reports how each
	// write went. It cannot fail the operation.
	Persist func(ctx context.Context, verified V) []cache.PersistResult

	// Respond shapes the verified value for the caller.
	Respond func(ctx context.Context, verified V) (O, error)
}

// Execute runs an operation through the full pipeline.
func Execute[F, V, O any](ctx context.Context, exec *Executor, op Operation[F, V, O]) (O, error) {
	var zero O

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	// Step 1: Fetch.
	logger.DebugContext(ctx, "fetching")

	fetched, err := op.Fetch(ctx)
	if err != nil {
		logger.WarnContext(ctx, "fetch failed", slog.Any("error", err))

		return zero, &ExecutionError{Step: StepFetch, Message: "remote read failed", Cause: err}
	}

	// Step 2: Verify.
	verified, err := runVerify(ctx, op, fetched)
	if err != nil {
		logger.WarnContext(ctx, "verification failed", slog.Any("error", err))

		return zero, &ExecutionError{Step: StepVerify, Message: "payload rejected", Cause: err}
	}

	// Step 3: Persist.
	if op.Persist != nil {
		degraded := 0

		for _, r := range op.Persist(ctx, verified) {
			if !r.OK() {
				degraded++
			}
		}

		if degraded > 0 {
			logger.WarnContext(ctx, "persisted with degraded writes", slog.Int("degraded", degraded))
		} else {
			logger.DebugContext(ctx, "persisted")
		}
	}

	// Step 4: Respond.
	result, err := runRespond(ctx, op, verified)
	if err != nil {
		logger.WarnContext(ctx, "respond formatting failed", slog.Any("error", err))

		return zero, &ExecutionError{Step: StepRespond, Message: "response shaping failed", Cause: err}
	}

	logger.InfoContext(ctx, "operation completed",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func runVerify[F, V, O any](ctx context.Context, op Operation[F, V, O], fetched F) (V, error) {
	if op.Verify != nil {
		return op.Verify(ctx, fetched)
	}

	v, ok := any(fetched).(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("no verifier for %T", fetched)
	}

	return v, nil
}

func runRespond[F, V, O any](ctx context.Context, op Operation[F, V, O], verified V) (O, error) {
	if op.Respond != nil {
		return op.Respond(ctx, verified)
	}

	o, ok := any(verified).(O)
	if !ok {
		var zero O
		return zero, fmt.Errorf("no responder for %T", verified)
	}

	return o, nil
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
