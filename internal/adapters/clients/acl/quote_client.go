package acl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/shrutam/internal/adapters/clients"
	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

const (
	quoteServiceName = "quote-service"

	pathToday  = "/quote/today"
	pathRecent = "/quote/recent"

	opFetchToday  = "fetch today's quote"
	opFetchRecent = "fetch recent quotes"
)

// QuoteClientConfig configures a QuoteClient.
type QuoteClientConfig struct {
	// Client must have its BaseURL pointed at the quote API.
	Client *clients.Client
	Logger *slog.Logger
}

// QuoteClient implements ports.QuoteSource against the quote API. Each call
// makes exactly one request; fallback policy belongs to the caller.
type QuoteClient struct {
	api    backend
	logger *slog.Logger
}

// NewQuoteClient panics without a Client.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("acl: QuoteClient needs a Client")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteClient{
		api:    backend{http: cfg.Client},
		logger: logger.With(slog.String("component", "acl.QuoteClient")),
	}
}

// quoteDTO is the backend's quote shape. Never exposed outside the ACL.
type quoteDTO struct {
	ID             string `json:"id" validate:"required"`
	Shlok          string `json:"shlok" validate:"required"`
	Source         string `json:"source"`
	Category       string `json:"category"`
	CreatedAt      string `json:"created_at" validate:"required"`
	MeaningHindi   string `json:"meaning_hindi"`
	MeaningEnglish string `json:"meaning_english"`
}

// recentDTO is the data payload of /quote/recent.
type recentDTO struct {
	Quotes []quoteDTO `json:"quotes" validate:"required,dive"`
	Count  int        `json:"count"`
}

// FetchToday reads the quote of the day.
// Implements ports.QuoteSource.
func (c *QuoteClient) FetchToday(ctx context.Context) (*domain.Quote, error) {
	env, err := c.fetch(ctx, pathToday, opFetchToday, "Failed to fetch today's quote")
	if err != nil {
		return nil, err
	}

	dto, err := Decode[quoteDTO](env.Data)
	if err != nil {
		return nil, domain.NewRemoteStatusError(err.Error(), env.Status, domain.ErrValidation)
	}

	quote, err := translateQuote(dto)
	if err != nil {
		return nil, domain.NewRemoteStatusError(err.Error(), env.Status, err)
	}

	c.logger.Log(ctx, logging.LevelTrace, "translated external DTO to domain",
		slog.String("quote_id", quote.ID))

	return quote, nil
}

// FetchRecent reads the recent quote list in backend order.
// One malformed item fails the whole read.
// Implements ports.QuoteSource.
func (c *QuoteClient) FetchRecent(ctx context.Context) ([]*domain.Quote, error) {
	env, err := c.fetch(ctx, pathRecent, opFetchRecent, "Failed to fetch recent quotes")
	if err != nil {
		return nil, err
	}

	dto, err := Decode[recentDTO](env.Data)
	if err != nil {
		return nil, domain.NewRemoteStatusError(err.Error(), env.Status, domain.ErrValidation)
	}

	quotes, err := translateAll(dto.Quotes, translateQuote)
	if err != nil {
		return nil, domain.NewRemoteStatusError(err.Error(), env.Status, err)
	}

	if dto.Count != len(quotes) {
		c.logger.DebugContext(ctx, "recent quote count mismatch",
			slog.Int("count", dto.Count),
			slog.Int("received", len(quotes)))
	}

	return quotes, nil
}

// fetch reads the envelope at path and rejects success=false.
func (c *QuoteClient) fetch(ctx context.Context, path, operation, refusal string) (*Envelope, error) {
	c.logger.Log(ctx, logging.LevelTrace, "calling quote API", slog.String("path", path))

	env, err := c.api.read(ctx, path, operation)
	if err != nil {
		c.logger.WarnContext(ctx, "quote API request failed",
			slog.String("path", path),
			slog.Int("status_code", statusOf(err)),
			slog.Any("error", err))

		return nil, err
	}

	if !env.Success {
		return nil, env.Failure(refusal)
	}

	return env, nil
}

// translateQuote converts the backend DTO to a domain Quote.
func translateQuote(ext *quoteDTO) (*domain.Quote, error) {
	createdAt, err := domain.ParseTimestamp(ext.CreatedAt)
	if err != nil {
		return nil, domain.NewValidationErrorWithValue("created_at", err.Error(), ext.ID)
	}

	quote := &domain.Quote{
		ID:               ext.ID,
		Text:             ext.Shlok,
		SourceLabel:      ext.Source,
		Category:         ext.Category,
		CreatedAt:        createdAt,
		MeaningPrimary:   ext.MeaningHindi,
		MeaningSecondary: ext.MeaningEnglish,
	}

	if err := quote.Validate(); err != nil {
		return nil, err
	}

	return quote, nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return quoteServiceName
}

// Check reports the circuit breaker state without calling the backend.
// Implements ports.HealthChecker.
func (c *QuoteClient) Check(_ context.Context) error {
	snap := c.api.http.CircuitSnapshot()
	if snap.State == clients.StateOpen {
		return fmt.Errorf("circuit open, retrying at %s", snap.RetryAt.Format(time.RFC3339))
	}

	return nil
}

// NonCritical marks the backend as optional for readiness: cached data
// is still served while it is down.
// Implements ports.NonCriticalChecker.
func (c *QuoteClient) NonCritical() bool {
	return true
}
