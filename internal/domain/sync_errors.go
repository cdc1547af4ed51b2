package domain

import (
	"errors"
	"strconv"
)

// RemoteError describes a failed call to the quote backend: a transport
// failure, a non-2xx status, success=false in the envelope or a payload
// that does not decode into valid quotes.
type RemoteError struct {
	Message string

	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int

	// Err classifies the failure, for example wrapping ErrUnavailable.
	Err error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return "remote error: " + e.Message
	}

	return "remote error (HTTP " + strconv.Itoa(e.StatusCode) + "): " + e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

// HasStatus reports whether the backend answered at all.
func (e *RemoteError) HasStatus() bool { return e.StatusCode != 0 }

// NewRemoteError returns a status-less RemoteError.
func NewRemoteError(message string, cause error) *RemoteError {
	return &RemoteError{Message: message, Err: cause}
}

// NewRemoteStatusError returns a RemoteError for a response with status.
func NewRemoteStatusError(message string, status int, cause error) *RemoteError {
	return &RemoteError{Message: message, StatusCode: status, Err: cause}
}

// AsRemoteError finds a *RemoteError in err's chain. Other errors are
// wrapped as a status-less RemoteError; nil stays nil.
func AsRemoteError(err error) *RemoteError {
	if err == nil {
		return nil
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote
	}

	return NewRemoteError(err.Error(), err)
}

// SyncError is what the sync core returns when the remote read failed and
// the offline cache had nothing usable either. It is the only error the
// core's fetch operations return.
type SyncError struct {
	// Operation is "fetch_today" or "fetch_recent".
	Operation string

	// Cause is the remote failure that forced the fallback.
	Cause *RemoteError
}

func (e *SyncError) Error() string {
	msg := e.Operation + ": no data available"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *SyncError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}

	return e.Cause
}

// Is matches ErrUnavailable so every SyncError reads as retryable.
func (e *SyncError) Is(target error) bool { return target == ErrUnavailable }

// NewSyncError returns a *SyncError for operation.
func NewSyncError(operation string, cause *RemoteError) error {
	return &SyncError{Operation: operation, Cause: cause}
}

// IsSyncError reports whether err's chain holds a *SyncError.
func IsSyncError(err error) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr)
}
