package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		retryable      bool
	}{
		{"nil", nil, http.StatusOK, "", false},
		{"not found", domain.NewNotFoundError("quote", "q1"), http.StatusNotFound, ErrorCodeNotFound, false},
		{"validation", domain.NewValidationError("id", "is required"), http.StatusBadRequest, ErrorCodeValidation, false},
		{"sync error", domain.NewSyncError("fetch_today", domain.NewRemoteError("timeout", nil)), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"sync error over remote 404", domain.NewSyncError("fetch_today", domain.NewRemoteStatusError("resource not found", http.StatusNotFound, domain.ErrNotFound)), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"sync error over remote 422", domain.NewSyncError("fetch_today", domain.NewRemoteStatusError("bad date", http.StatusUnprocessableEntity, domain.ErrValidation)), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"sync error over malformed payload", domain.NewSyncError("fetch_recent", domain.NewRemoteStatusError("item 0: validating response", http.StatusOK, domain.NewValidationError("id", "is required"))), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"wrapped sync error", fmt.Errorf("handler: %w", domain.NewSyncError("fetch_recent", nil)), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"unavailable", fmt.Errorf("store closed: %w", domain.ErrUnavailable), http.StatusServiceUnavailable, ErrorCodeUnavailable, true},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)
			assert.Equal(t, tt.expectedStatus, status)

			if tt.err == nil {
				assert.Nil(t, resp)
				return
			}

			require.NotNil(t, resp)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, tt.retryable, resp.Error.Retryable)
		})
	}
}

func TestMapDomainError_ValidationDetails(t *testing.T) {
	_, resp := MapDomainError(domain.NewValidationError("created_at", "is required"))
	assert.Equal(t, map[string]string{"created_at": "is required"}, resp.Error.Details)
}

func TestMapDomainError_InternalMessageIsGeneric(t *testing.T) {
	_, resp := MapDomainError(errors.New("dial tcp 10.0.0.1:6379: connection refused"))
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		retryAfter string
	}{
		{"unavailable sets Retry-After", domain.NewSyncError("fetch_today", nil), http.StatusServiceUnavailable, "30"},
		{"sync error over remote 404", domain.NewSyncError("fetch_today", domain.NewRemoteStatusError("resource not found", http.StatusNotFound, domain.ErrNotFound)), http.StatusServiceUnavailable, "30"},
		{"not found", domain.NewNotFoundError("quote", "x"), http.StatusNotFound, ""},
		{"nil error", nil, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error.Code)
		})
	}
}

func TestAbortWithErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithErrorCode(c, ErrorCodeTimeout, "too slow")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":{"code":"TIMEOUT","message":"too slow"}}`, w.Body.String())
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:    http.StatusNotFound,
		ErrorCodeValidation:  http.StatusBadRequest,
		ErrorCodeBadRequest:  http.StatusBadRequest,
		ErrorCodeUnavailable: http.StatusServiceUnavailable,
		ErrorCodeTimeout:     http.StatusGatewayTimeout,
		ErrorCodeInternal:    http.StatusInternalServerError,
		"SOMETHING_ELSE":     http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestPageQuery_Size(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultPageSize},
		{-5, DefaultPageSize},
		{1, 1},
		{50, 50},
		{500, MaxPageSize},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageQuery{Limit: tt.limit}.Size(), "limit %d", tt.limit)
	}
}

func TestCursor_StringParses(t *testing.T) {
	in := Cursor{CreatedAt: "2024-03-02T00:00:00Z", ID: "q7"}

	out, err := ParseCursor(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	after, err := PageQuery{Cursor: in.String()}.After()
	require.NoError(t, err)
	assert.Equal(t, "q7", after.ID)
}

func TestParseCursor_Malformed(t *testing.T) {
	for _, bad := range []string{"%%%", "bm90IGpzb24=", Cursor{CreatedAt: "x"}.String()} {
		_, err := ParseCursor(bad)
		require.ErrorIs(t, err, ErrMalformedCursor, bad)
	}

	after, err := PageQuery{}.After()
	require.NoError(t, err)
	assert.Nil(t, after, "first page")
}

func TestPaginate(t *testing.T) {
	mark := func(s string) Cursor { return Cursor{ID: s} }

	page := Paginate([]string{"a", "b", "c"}, 2, mark)
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.True(t, page.HasMore)

	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)

	page = Paginate([]string{"a"}, 2, mark)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	page = Paginate[string](nil, 2, mark)
	assert.NotNil(t, page.Items)
}

func TestValidate_QuoteID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"42", true},
		{"q_7", true},
		{"0b8f6f3c-1c2e-4b1f-9a53-8f9f4b1a2c3d", true},
		{"", false},
		{"bad id", false},
		{"-leading-dash", false},
		{string(make([]byte, 200)), false},
	}

	for _, tt := range tests {
		err := Validate(QuoteIDRequest{ID: tt.id})
		if tt.valid {
			assert.NoError(t, err, tt.id)
			continue
		}

		require.ErrorIs(t, err, ErrValidation, tt.id)
		assert.Contains(t, ValidationErrors(err), "id")
	}
}

func TestValidationErrors_Messages(t *testing.T) {
	err := Validate(PageQuery{Limit: 500, Cursor: "not*base64"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fields := ValidationErrors(err)
	assert.Equal(t, "must be less than or equal to 100", fields["limit"])
	assert.Equal(t, "must be a cursor returned by a previous page", fields["cursor"])

	assert.Empty(t, ValidationErrors(errors.New("plain")))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestBindQueryAndValidate(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)

	var query PageQuery
	err := BindQueryAndValidate(c, &query)
	require.ErrorIs(t, err, ErrBinding)

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	query = PageQuery{}
	require.NoError(t, BindQueryAndValidate(c, &query))
	assert.Equal(t, 5, query.Size())
}

func TestNewQuoteResponse(t *testing.T) {
	q := &domain.Quote{
		ID:               "q1",
		Text:             "सत्यमेव जयते",
		SourceLabel:      "Mundaka Upanishad",
		Category:         "Truth",
		CreatedAt:        time.Date(2024, time.March, 2, 6, 0, 0, 0, time.UTC),
		MeaningPrimary:   "सत्य की ही जीत होती है",
		MeaningSecondary: "Truth alone triumphs",
	}

	resp := NewQuoteResponse(q)
	assert.Equal(t, "Mundaka Upanishad", resp.Source)
	assert.Equal(t, "02 Mar 2024", resp.DisplayDate)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "q1",
		"text": "सत्यमेव जयते",
		"source": "Mundaka Upanishad",
		"category": "Truth",
		"createdAt": "2024-03-02T06:00:00Z",
		"displayDate": "02 Mar 2024",
		"meaningPrimary": "सत्य की ही जीत होती है",
		"meaningSecondary": "Truth alone triumphs"
	}`, string(raw))

	assert.Empty(t, NewQuoteResponses(nil))
}
