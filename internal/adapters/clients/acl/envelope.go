package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/jsamuelsen/shrutam/internal/adapters/clients"
	"github.com/jsamuelsen/shrutam/internal/domain"
)

const maxResponseBytes = 1 << 20

var dtoValidator = validator.New(validator.WithRequiredStructEnabled())

// Envelope is the {success, data, message} wrapper around every quote API
// payload. Data is left undecoded.
type Envelope struct {
	Status  int
	Success bool
	Message string
	Data    gjson.Result
}

// ParseEnvelope reads the wrapper. A body that is not a JSON object, or whose
// success flag is not a JSON boolean, is a remote error of kind
// domain.ErrValidation.
func ParseEnvelope(status int, body []byte) (*Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, domain.NewRemoteStatusError("malformed response body", status, domain.ErrValidation)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, domain.NewRemoteStatusError("response is not an object", status, domain.ErrValidation)
	}

	success := root.Get("success")
	if success.Type != gjson.True && success.Type != gjson.False {
		return nil, domain.NewRemoteStatusError("success flag is missing or not a boolean", status, domain.ErrValidation)
	}

	return &Envelope{
		Status:  status,
		Success: success.Bool(),
		Message: root.Get("message").String(),
		Data:    root.Get("data"),
	}, nil
}

// Failure is the remote error for success=false. fallback stands in for an
// empty message.
func (e *Envelope) Failure(fallback string) *domain.RemoteError {
	msg := e.Message
	if msg == "" {
		msg = fallback
	}

	return domain.NewRemoteStatusError(msg, e.Status, domain.ErrUnavailable)
}

// Decode unmarshals res into a T and checks T's validate tags.
func Decode[T any](res gjson.Result) (*T, error) {
	if !res.Exists() {
		return nil, errors.New("decoding response: value is missing")
	}

	out := new(T)
	if err := json.Unmarshal([]byte(res.Raw), out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if err := dtoValidator.Struct(out); err != nil {
		return nil, fmt.Errorf("validating response: %w", err)
	}

	return out, nil
}

// translateAll converts every item or fails on the first bad one.
func translateAll[E, D any](items []E, fn func(*E) (*D, error)) ([]*D, error) {
	out := make([]*D, len(items))

	for i := range items {
		d, err := fn(&items[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		out[i] = d
	}

	return out, nil
}

// backend reads enveloped JSON from the quote API. Every failure it returns
// is a *domain.RemoteError.
type backend struct {
	http *clients.Client
}

// read GETs path and parses the envelope. Non-2xx answers become remote
// errors carrying the status and whatever message the body holds.
func (b backend) read(ctx context.Context, path, operation string) (*Envelope, error) {
	resp, err := b.http.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(0, nil, err, operation)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, domain.NewRemoteStatusError(
			fmt.Sprintf("%s: reading response: %v", operation, err), resp.StatusCode, domain.ErrUnavailable)
	}

	if len(body) > maxResponseBytes {
		return nil, domain.NewRemoteStatusError(
			fmt.Sprintf("%s: response too large (over %d bytes)", operation, maxResponseBytes), resp.StatusCode, domain.ErrValidation)
	}

	if resp.StatusCode/100 != 2 {
		return nil, MapHTTPError(resp.StatusCode, body, nil, operation)
	}

	return ParseEnvelope(resp.StatusCode, body)
}

// statusOf recovers the HTTP status from a remote error, 0 if none.
func statusOf(err error) int {
	if re := domain.AsRemoteError(err); re != nil {
		return re.StatusCode
	}

	return 0
}
