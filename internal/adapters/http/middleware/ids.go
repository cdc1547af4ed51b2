// Package middleware holds the Gin middleware of the presentation API.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

// Header names. A request ID covers one hop; a correlation ID follows one
// user action across services.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// gin.Context keys.
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength caps caller-supplied ids; longer values are replaced.
const maxIDLength = 128

// idKind indexes the two ids in both context.Context and idKinds.
type idKind int

const (
	requestID idKind = iota
	correlationID
)

type idSpec struct {
	header  string
	ginKey  string
	logWith func(ctx context.Context, id string) context.Context
}

var idKinds = [...]idSpec{
	requestID:     {HeaderRequestID, ContextKeyRequestID, logging.WithRequestID},
	correlationID: {HeaderCorrelationID, ContextKeyCorrelationID, logging.WithCorrelationID},
}

// RequestID adopts a valid inbound X-Request-ID or mints one. The id is
// echoed in the response, tagged on the request logger and forwarded by
// outbound clients via RequestIDFromContext.
func RequestID() gin.HandlerFunc {
	return propagate(requestID)
}

// CorrelationID does for X-Correlation-ID what RequestID does for
// X-Request-ID.
func CorrelationID() gin.HandlerFunc {
	return propagate(correlationID)
}

// GetRequestID returns the request ID stored on c.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID stored on c.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request ID carried by ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestID)
}

// CorrelationIDFromContext returns the correlation ID carried by ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationID)
}

// ContextWithRequestID returns ctx carrying a request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID, id)
}

// ContextWithCorrelationID returns ctx carrying a correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationID, id)
}

func idFrom(ctx context.Context, kind idKind) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(kind).(string)

	return id
}

func propagate(kind idKind) gin.HandlerFunc {
	spec := idKinds[kind]

	return func(c *gin.Context) {
		id := c.GetHeader(spec.header)
		if !validID(id) {
			id = uuid.NewString()
		}

		c.Set(spec.ginKey, id)
		c.Header(spec.header, id)

		ctx := context.WithValue(c.Request.Context(), kind, id)
		c.Request = c.Request.WithContext(spec.logWith(ctx, id))

		c.Next()
	}
}

// validID accepts non-empty printable ASCII up to maxIDLength.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	return !strings.ContainsFunc(id, func(r rune) bool { return r < '!' || r > '~' })
}
