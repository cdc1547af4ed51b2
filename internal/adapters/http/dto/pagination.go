package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Page sizes for the recent list.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrMalformedCursor is returned for a cursor this service did not issue.
var ErrMalformedCursor = errors.New("malformed cursor")

// PageQuery holds the paging parameters of GET /quotes/recent.
type PageQuery struct {
	Limit  int    `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
	Cursor string `form:"cursor" json:"cursor" validate:"omitempty,base64url"`
}

// Size is the page size after defaults and clamping.
func (q PageQuery) Size() int {
	switch {
	case q.Limit <= 0:
		return DefaultPageSize
	case q.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return q.Limit
	}
}

// After decodes the cursor. A first-page query yields nil and no error.
func (q PageQuery) After() (*Cursor, error) {
	if q.Cursor == "" {
		return nil, nil //nolint:nilnil // no cursor means the first page
	}

	return ParseCursor(q.Cursor)
}

// Page is one slice of a newest-first list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Paginate trims window to size and, when window held more than size items,
// marks the last kept item as the continuation point. Callers pass up to
// size+1 items so the extra one reveals whether another page exists.
func Paginate[T any](window []T, size int, mark func(T) Cursor) *Page[T] {
	page := &Page[T]{Items: window}
	if page.Items == nil {
		page.Items = []T{}
	}

	if len(page.Items) <= size {
		return page
	}

	page.Items = page.Items[:size]
	page.HasMore = true

	if size > 0 {
		last := mark(page.Items[size-1])
		page.NextCursor = last.String()
	}

	return page
}

// Cursor is the position a recent-list page ended at. The id resolves ties
// between quotes created at the same instant; the timestamp lets paging
// resume after that quote has been evicted from the cache.
type Cursor struct {
	CreatedAt string `json:"t"`
	ID        string `json:"id"`
}

// String renders the cursor in its opaque URL-safe form.
func (c Cursor) String() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// ParseCursor reverses Cursor.String.
func ParseCursor(s string) (*Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrMalformedCursor
	}

	var c Cursor
	if json.Unmarshal(raw, &c) != nil || c.ID == "" {
		return nil, ErrMalformedCursor
	}

	return &c, nil
}
