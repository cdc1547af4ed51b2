package cache

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quote(id string, day int) *domain.Quote {
	return &domain.Quote{
		ID:               id,
		Text:             "text " + id,
		SourceLabel:      "Rigveda",
		Category:         "Wisdom",
		CreatedAt:        time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		MeaningPrimary:   "अर्थ " + id,
		MeaningSecondary: "meaning " + id,
	}
}

func quotes(prefix string, n int) []*domain.Quote {
	out := make([]*domain.Quote, n)
	for i := range n {
		out[i] = quote(fmt.Sprintf("%s%d", prefix, i), i%28+1)
	}

	return out
}

func ids(qs []*domain.Quote) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}

	return out
}
