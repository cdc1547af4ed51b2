package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuote() *Quote {
	return &Quote{
		ID:               "q1",
		Text:             "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन",
		SourceLabel:      "Bhagavad Gita 2.47",
		Category:         "Karma",
		CreatedAt:        time.Date(2024, time.March, 2, 6, 0, 0, 0, time.UTC),
		MeaningPrimary:   "तुम्हारा अधिकार केवल कर्म पर है",
		MeaningSecondary: "You have a right to your actions alone",
	}
}

func TestQuote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Quote)
		field   string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Quote) {}},
		{name: "missing id", mutate: func(q *Quote) { q.ID = " " }, field: "id", wantErr: true},
		{name: "missing text", mutate: func(q *Quote) { q.Text = "" }, field: "text", wantErr: true},
		{name: "missing created_at", mutate: func(q *Quote) { q.CreatedAt = time.Time{} }, field: "created_at", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuote()
			tt.mutate(q)

			err := q.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestQuote_ValidateNil(t *testing.T) {
	var q *Quote
	assert.True(t, IsValidation(q.Validate()))
}

func TestCalendarDate_String(t *testing.T) {
	d := CalendarDate{Year: 2024, Month: time.January, Day: 1}
	assert.Equal(t, "Mon Jan 01 2024", d.String())
}

func TestCalendarDate_RoundTrip(t *testing.T) {
	d := CalendarDate{Year: 2024, Month: time.March, Day: 2}

	parsed, err := ParseCalendarDate(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestParseCalendarDate_Invalid(t *testing.T) {
	_, err := ParseCalendarDate("2024-03-02")
	assert.Error(t, err)
}

func TestDateOf_UsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	instant := time.Date(2024, time.March, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, CalendarDate{Year: 2024, Month: time.March, Day: 1}, DateOf(instant))
	assert.Equal(t, CalendarDate{Year: 2024, Month: time.March, Day: 2}, DateOf(instant.In(ist)))
}

func TestCalendarDate_IsZero(t *testing.T) {
	assert.True(t, CalendarDate{}.IsZero())
	assert.False(t, DateOf(time.Now()).IsZero())
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "02 Mar 2024", FormatDisplayDate(time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "15 Dec 2023", FormatDisplayDate(time.Date(2023, time.December, 15, 23, 0, 0, 0, time.UTC)))
}

func TestShareText(t *testing.T) {
	want := "📿 कर्मण्येवाधिकारस्ते मा फलेषु कदाचन\n\n" +
		"📖 Bhagavad Gita 2.47 • Karma\n" +
		"📅 02 Mar 2024\n\n" +
		"🇮🇳 तुम्हारा अधिकार केवल कर्म पर है\n\n" +
		"🌍 You have a right to your actions alone\n\n" +
		"Shared from Shrutam - Daily Wisdom from Ancient Texts"

	assert.Equal(t, want, ShareText(sampleQuote()))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"rfc3339", "2024-03-02T06:30:00Z", time.Date(2024, time.March, 2, 6, 30, 0, 0, time.UTC)},
		{"rfc3339 fractional", "2024-03-02T06:30:00.250Z", time.Date(2024, time.March, 2, 6, 30, 0, 250_000_000, time.UTC)},
		{"no zone", "2024-03-02T06:30:00", time.Date(2024, time.March, 2, 6, 30, 0, 0, time.UTC)},
		{"sql", "2024-03-02 06:30:00", time.Date(2024, time.March, 2, 6, 30, 0, 0, time.UTC)},
		{"date only", "2024-03-02", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFormatTimestamp_ParsesBack(t *testing.T) {
	ts := time.Date(2024, time.March, 2, 6, 30, 0, 123, time.FixedZone("IST", 19800))

	got, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
}
