package acl

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     io.Reader
		expected string
	}{
		{name: "flat", body: strings.NewReader(`{"error":"Request limit reached"}`), expected: "Request limit reached"},
		{name: "nested", body: strings.NewReader(`{"error":{"message":"boom"}}`), expected: "boom"},
		{name: "top-level message", body: strings.NewReader(`{"message":"bad key"}`), expected: "bad key"},
		{name: "empty object", body: strings.NewReader(`{}`), expected: ""},
		{name: "not json", body: strings.NewReader(`<html>`), expected: ""},
		{name: "nil", body: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorResponse(tt.body)
			if tt.expected == "" {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got.Message)
		})
	}
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		resp      *http.Response
		clientErr error
		check     func(error) bool
		contains  string
	}{
		{
			name:      "circuit open",
			clientErr: clients.ErrCircuitOpen,
			check:     domain.IsUnavailable,
			contains:  "circuit breaker open during lookup",
		},
		{
			name:      "retries exhausted",
			clientErr: clients.ErrMaxRetriesExceeded,
			check:     domain.IsUnavailable,
			contains:  "max retries exceeded during lookup",
		},
		{
			name:      "other client error",
			clientErr: errors.New("dial tcp: refused"),
			check:     domain.IsUnavailable,
			contains:  "lookup failed: dial tcp: refused",
		},
		{
			name:     "no response",
			check:    domain.IsUnavailable,
			contains: "no response received",
		},
		{
			name:     "not found",
			resp:     response(http.StatusNotFound, ``),
			check:    domain.IsNotFound,
			contains: "not found",
		},
		{
			name:     "rate limited with body",
			resp:     response(http.StatusTooManyRequests, `{"error":"Request limit reached"}`),
			check:    domain.IsUnavailable,
			contains: "Request limit reached",
		},
		{
			name:     "server error without body",
			resp:     response(http.StatusInternalServerError, ``),
			check:    domain.IsUnavailable,
			contains: "lookup failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.resp, tt.clientErr, "genderize", "lookup")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMapHTTPError_Success(t *testing.T) {
	assert.NoError(t, MapHTTPError(response(http.StatusOK, `{}`), nil, "genderize", "lookup"))
}
