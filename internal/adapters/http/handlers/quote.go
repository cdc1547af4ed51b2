package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/shrutam/internal/adapters/http/dto"
	"github.com/jsamuelsen/shrutam/internal/domain"
)

// QuoteSyncer is the sync surface the quote endpoints read through.
type QuoteSyncer interface {
	FetchToday(ctx context.Context) (*domain.Quote, error)
	FetchRecent(ctx context.Context) ([]*domain.Quote, error)
}

// QuoteFinder looks a quote up in the offline cache.
type QuoteFinder interface {
	Find(ctx context.Context, id string) (*domain.Quote, bool)
}

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	sync   QuoteSyncer
	finder QuoteFinder
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(sync QuoteSyncer, finder QuoteFinder) *QuoteHandler {
	return &QuoteHandler{
		sync:   sync,
		finder: finder,
	}
}

// GetToday handles GET /api/v1/quotes/today.
// Serves the network quote, or today's cached quote when offline.
//
// @Summary Get today's quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.TodayResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/today [get]
func (h *QuoteHandler) GetToday(c *gin.Context) {
	quote, err := h.sync.FetchToday(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TodayResponse{Quote: dto.NewQuoteResponse(quote)})
}

// ListRecent handles GET /api/v1/quotes/recent.
// Pages through recent quotes, newest first, with a weak ETag over the page.
//
// @Summary List recent quotes
// @Tags quotes
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.Page[dto.QuoteResponse]
// @Success 304
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/recent [get]
func (h *QuoteHandler) ListRecent(c *gin.Context) {
	var query dto.PageQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondBadRequest(c, err)
		return
	}

	after, err := query.After()
	if err != nil {
		dto.RespondWithValidationErrors(c, map[string]string{"cursor": err.Error()})
		return
	}

	quotes, err := h.sync.FetchRecent(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	size := query.Size()
	rest := seek(quotes, after)
	window := rest[:min(len(rest), size+1)]

	page := dto.Paginate(dto.NewQuoteResponses(window), size, func(q dto.QuoteResponse) dto.Cursor {
		return dto.Cursor{CreatedAt: domain.FormatTimestamp(q.CreatedAt), ID: q.ID}
	})

	etag := pageETag(page)
	c.Header("ETag", etag)

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetShare handles GET /api/v1/quotes/:id/share.
// Share text is built from the offline cache, so it works without network.
//
// @Summary Get share text for a quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.ShareResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/share [get]
func (h *QuoteHandler) GetShare(c *gin.Context) {
	var req dto.QuoteIDRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		respondBadRequest(c, err)
		return
	}

	quote, ok := h.finder.Find(c.Request.Context(), req.ID)
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("quote", req.ID))
		return
	}

	c.JSON(http.StatusOK, dto.ShareResponse{ID: quote.ID, Text: domain.ShareText(quote)})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("/today", h.GetToday)
	quotes.GET("/recent", h.ListRecent)
	quotes.GET("/:id/share", h.GetShare)
}

// seek returns the quotes after the cursor position. The list is ordered
// newest first; when the cursor's quote has left the cache, paging resumes
// at the first quote older than the cursor timestamp.
func seek(quotes []*domain.Quote, cursor *dto.Cursor) []*domain.Quote {
	if cursor == nil {
		return quotes
	}

	for i, q := range quotes {
		if q.ID == cursor.ID {
			return quotes[i+1:]
		}
	}

	at, err := domain.ParseTimestamp(cursor.CreatedAt)
	if err != nil {
		return quotes[:0]
	}

	for i, q := range quotes {
		if q.CreatedAt.Before(at) {
			return quotes[i:]
		}
	}

	return quotes[:0]
}

// pageETag hashes the ids and cursor of a page into a weak validator.
func pageETag(page *dto.Page[dto.QuoteResponse]) string {
	d := xxhash.New()
	for _, q := range page.Items {
		_, _ = d.WriteString(q.ID)
		_, _ = d.WriteString("\n")
	}

	_, _ = d.WriteString(page.NextCursor)

	return fmt.Sprintf(`W/"%016x"`, d.Sum64())
}

func respondBadRequest(c *gin.Context, err error) {
	if fields := dto.ValidationErrors(err); len(fields) > 0 {
		dto.RespondWithValidationErrors(c, fields)
		return
	}

	dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
}
