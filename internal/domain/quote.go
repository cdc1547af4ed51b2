// Package domain contains core business entities and rules.
package domain

import (
	"strings"
	"time"
)

// Quote is one unit of daily content: a passage with its source, category
// and two translations. Quotes are immutable values once constructed.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is globally unique among all quotes a client has ever seen.
	ID string

	// Text is the source-language excerpt.
	Text string

	// SourceLabel names the text the excerpt comes from.
	SourceLabel string

	// Category groups quotes by theme.
	Category string

	// CreatedAt is used for display and as the recency key of the recent cache.
	CreatedAt time.Time

	// MeaningPrimary is the first translation (Hindi in the reference backend).
	MeaningPrimary string

	// MeaningSecondary is the second translation (English in the reference backend).
	MeaningSecondary string
}

// Validate checks the invariants every quote must hold before it is
// returned to callers or written to a cache.
func (q *Quote) Validate() error {
	if q == nil {
		return NewValidationError("quote", "is required")
	}

	if strings.TrimSpace(q.ID) == "" {
		return NewValidationError("id", "is required")
	}

	if strings.TrimSpace(q.Text) == "" {
		return NewValidationErrorWithValue("text", "is required", q.ID)
	}

	if q.CreatedAt.IsZero() {
		return NewValidationErrorWithValue("created_at", "is required", q.ID)
	}

	return nil
}
