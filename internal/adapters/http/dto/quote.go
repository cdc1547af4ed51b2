package dto

import (
	"time"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

// QuoteResponse is the wire shape of a quote.
type QuoteResponse struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	Source           string    `json:"source"`
	Category         string    `json:"category"`
	CreatedAt        time.Time `json:"createdAt"`
	DisplayDate      string    `json:"displayDate"`
	MeaningPrimary   string    `json:"meaningPrimary"`
	MeaningSecondary string    `json:"meaningSecondary"`
}

// NewQuoteResponse converts a domain quote to its wire shape.
func NewQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:               q.ID,
		Text:             q.Text,
		Source:           q.SourceLabel,
		Category:         q.Category,
		CreatedAt:        q.CreatedAt,
		DisplayDate:      domain.FormatDisplayDate(q.CreatedAt),
		MeaningPrimary:   q.MeaningPrimary,
		MeaningSecondary: q.MeaningSecondary,
	}
}

// NewQuoteResponses converts a list of domain quotes, preserving order.
func NewQuoteResponses(quotes []*domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// TodayResponse wraps today's quote.
type TodayResponse struct {
	Quote QuoteResponse `json:"quote"`
}

// ShareResponse carries the plain-text share message for a quote.
type ShareResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuoteIDRequest binds the :id path parameter.
type QuoteIDRequest struct {
	ID string `uri:"id" json:"id" validate:"required,quoteid"`
}
