package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

// maxErrorBody caps how much of an error body is read for diagnostics.
const maxErrorBody = 4 << 10

// ErrorResponse is the error body returned by external services.
// It supports both the nested format ({"error": {"message": ...}}) and the
// flat format ({"error": "..."}) used by genderize.io.
type ErrorResponse struct {
	Message string
}

// UnmarshalJSON accepts either error body format.
func (e *ErrorResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Message = raw.Message

	var flat string
	if err := json.Unmarshal(raw.Error, &flat); err == nil && flat != "" {
		e.Message = flat
		return nil
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw.Error, &nested); err == nil && nested.Message != "" {
		e.Message = nested.Message
	}

	return nil
}

// ParseErrorResponse attempts to parse an error response body.
// Returns nil if the body is empty or cannot be parsed.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.Message == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps a failed call to a domain error.
// clientErr takes precedence; otherwise resp must be a non-2xx response.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		message = errResp.Message
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewNotFoundError(serviceName, "")
	}

	return domain.NewUnavailableError(serviceName, message)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.Is(err, clients.ErrRateLimited):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("rate limited during %s", operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("max retries exceeded during %s", operation))

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}
