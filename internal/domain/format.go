package domain

import (
	"fmt"
	"time"
)

// displayDateLayout renders dates as "02 Mar 2024".
const displayDateLayout = "02 Jan 2006"

// shareFooter closes every shared quote.
const shareFooter = "Shared from Shrutam - Daily Wisdom from Ancient Texts"

// FormatDisplayDate formats t as DD MMM YYYY.
func FormatDisplayDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// ShareText composes the plain-text message handed to a share sheet.
func ShareText(q *Quote) string {
	return fmt.Sprintf("📿 %s\n\n📖 %s • %s\n📅 %s\n\n🇮🇳 %s\n\n🌍 %s\n\n%s",
		q.Text,
		q.SourceLabel,
		q.Category,
		FormatDisplayDate(q.CreatedAt),
		q.MeaningPrimary,
		q.MeaningSecondary,
		shareFooter,
	)
}
