package dto

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

// RetryAfterSeconds is the Retry-After hint sent with 503 responses.
const RetryAfterSeconds = 30

// MapDomainError maps a domain error to an HTTP status and error body.
// Anything unrecognised becomes a 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	// A SyncError unwraps to the remote failure, which may itself be a
	// not-found or validation error. The caller only ever gets a retry.
	case domain.IsSyncError(err):
		return http.StatusServiceUnavailable, retryableBody("no quote available right now, try again")

	case domain.IsNotFound(err):
		return http.StatusNotFound, errorBody(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp := errorBody(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, retryableBody(err.Error())

	default:
		return http.StatusInternalServerError, errorBody(ErrorCodeInternal, "an internal error occurred")
	}
}

// GetTraceID returns the OpenTelemetry trace ID of the request, if any.
func GetTraceID(c *gin.Context) string {
	sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}

	return sc.TraceID().String()
}

// HandleError writes the error response for err.
// 503s carry a Retry-After header; 500s are logged at error level.
func HandleError(c *gin.Context, err error) {
	c.JSON(prepareError(c, err))
}

// AbortWithError aborts the handler chain with the error response for err.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(prepareError(c, err))
}

// RespondWithErrorCode writes an error raised by the adapter itself, such
// as a malformed query string.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), traced(c, errorBody(code, message)))
}

// AbortWithErrorCode is RespondWithErrorCode for middleware.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), traced(c, errorBody(code, message)))
}

// RespondWithValidationErrors writes a 400 listing each offending field.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := errorBody(ErrorCodeValidation, "request validation failed")
	resp.Error.Details = fieldErrors

	c.JSON(http.StatusBadRequest, traced(c, resp))
}

func traced(c *gin.Context, resp *ErrorResponse) *ErrorResponse {
	resp.TraceID = GetTraceID(c)
	return resp
}

func prepareError(c *gin.Context, err error) (int, *ErrorResponse) {
	if err == nil {
		err = errors.New("error handler called without an error")
	}

	status, resp := MapDomainError(err)
	traced(c, resp)

	logger := logging.FromContext(c.Request.Context())

	switch status {
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		logger.Warn("request served without data", "error", err.Error())
	case http.StatusInternalServerError:
		logger.Error("internal error", "error", err.Error(), "trace_id", resp.TraceID)
	}

	return status, resp
}
