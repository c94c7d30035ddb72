// Package dto maps quote records, validation failures and system reports to
// the JSON bodies of the HTTP API, and HTTP bodies back to domain requests.
package dto

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
)

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	// Error is the short error category shown to API clients.
	Error string `json:"erro"`

	Message string `json:"mensagem,omitempty"`

	// Details lists field-level problems for validation errors.
	Details []FieldDetail `json:"detalhes,omitempty"`

	TraceID string `json:"traceId,omitempty"`
}

// FieldDetail describes one rejected request field.
type FieldDetail struct {
	Field   string `json:"campo"`
	Message string `json:"mensagem"`
}

// Error categories.
const (
	ErrorValidation  = "Erro de validação"
	ErrorNotFound    = "Não encontrado"
	ErrorUnavailable = "Serviço indisponível"
	ErrorInternal    = "Erro interno"
)

// Client-facing messages.
const (
	MsgQuoteNotFound = "Cotação não localizada"
	MsgInvalidJSON   = "JSON inválido"
	MsgUnavailable   = "Serviço temporariamente indisponível"
	MsgInternal      = "Ocorreu um erro interno"
)

// FieldBody names the request body in validation details.
const FieldBody = "body"

// Context keys read by GetTraceID.
const (
	contextKeyTraceID   = "trace_id"
	contextKeyRequestID = "request_id"
	headerRequestID     = "X-Request-ID"
)

// NewValidationResponse creates a validation error response.
func NewValidationResponse(details []FieldDetail) *ErrorResponse {
	return &ErrorResponse{Error: ErrorValidation, Details: details}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// FieldDetails converts domain field errors to their wire form.
func FieldDetails(errs []domain.FieldError) []FieldDetail {
	details := make([]FieldDetail, 0, len(errs))
	for _, fe := range errs {
		details = append(details, FieldDetail{Field: fe.Field, Message: fe.Message})
	}

	return details
}

// GetTraceID returns the id that correlates a response with the server logs:
// an explicit trace id, the OpenTelemetry trace, then the request id.
func GetTraceID(c *gin.Context) string {
	if id, ok := c.Get(contextKeyTraceID); ok {
		s, _ := id.(string)
		return s
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if id := c.GetString(contextKeyRequestID); id != "" {
		return id
	}

	return c.GetHeader(headerRequestID)
}

// HandleError maps err to a status code and error envelope and writes it.
// Internal errors are logged with their cause; clients get a generic message.
func HandleError(c *gin.Context, err error) {
	status, resp := mapError(err)

	if status >= http.StatusInternalServerError {
		resp.TraceID = GetTraceID(c)
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

func mapError(err error) (int, *ErrorResponse) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, NewValidationResponse(FieldDetails(domain.FieldErrors(err)))

	case domain.IsNotFound(err):
		return http.StatusNotFound, &ErrorResponse{Error: ErrorNotFound, Message: MsgQuoteNotFound}

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, &ErrorResponse{Error: ErrorUnavailable, Message: MsgUnavailable}

	default:
		return http.StatusInternalServerError, &ErrorResponse{Error: ErrorInternal, Message: MsgInternal}
	}
}
