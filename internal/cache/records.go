package cache

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// quoteRecord is the persisted shape of a quote. Field names match the remote
// API so blobs written by older clients stay readable.
type quoteRecord struct {
	ID             string `json:"id"              validate:"required"`
	Text           string `json:"shlok"           validate:"required"`
	Source         string `json:"source"`
	Category       string `json:"category"`
	CreatedAt      string `json:"created_at"      validate:"required"`
	MeaningHindi   string `json:"meaning_hindi"`
	MeaningEnglish string `json:"meaning_english"`
}

// dailyRecord is the value stored under KeyDaily.
type dailyRecord struct {
	Data *quoteRecord `json:"data" validate:"required"`
	Date string       `json:"date" validate:"required"`
}

func toRecord(q *domain.Quote) quoteRecord {
	return quoteRecord{
		ID:             q.ID,
		Text:           q.Text,
		Source:         q.SourceLabel,
		Category:       q.Category,
		CreatedAt:      domain.FormatTimestamp(q.CreatedAt),
		MeaningHindi:   q.MeaningPrimary,
		MeaningEnglish: q.MeaningSecondary,
	}
}

func (r *quoteRecord) toQuote() (*domain.Quote, error) {
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("invalid quote record: %w", err)
	}

	createdAt, err := domain.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid quote record %s: %w", r.ID, err)
	}

	q := &domain.Quote{
		ID:               r.ID,
		Text:             r.Text,
		SourceLabel:      r.Source,
		Category:         r.Category,
		CreatedAt:        createdAt,
		MeaningPrimary:   r.MeaningHindi,
		MeaningSecondary: r.MeaningEnglish,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// decodeList parses a recent-list blob. A blob that is not a JSON array is an
// error; individual records that fail validation are skipped and returned as
// dropped so the caller can log them.
func decodeList(data []byte) (quotes []*domain.Quote, dropped []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding recent list: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	quotes = make([]*domain.Quote, 0, len(raw))

	for i, item := range raw {
		var rec quoteRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			dropped = append(dropped, fmt.Errorf("record %d: %w", i, err))
			continue
		}

		q, err := rec.toQuote()
		if err != nil {
			dropped = append(dropped, fmt.Errorf("record %d: %w", i, err))
			continue
		}

		// Older writers could leave duplicates behind; the first one wins.
		if _, dup := seen[q.ID]; dup {
			continue
		}

		seen[q.ID] = struct{}{}
		quotes = append(quotes, q)
	}

	return quotes, dropped, nil
}

func encodeList(quotes []*domain.Quote) ([]byte, error) {
	records := make([]quoteRecord, len(quotes))
	for i, q := range quotes {
		records[i] = toRecord(q)
	}

	return json.Marshal(records)
}
