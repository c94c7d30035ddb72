package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// GenderizeServiceName identifies genderize.io in logs, traces and errors.
const GenderizeServiceName = "genderize"

// GenderizeClientConfig contains configuration for the genderize client.
type GenderizeClientConfig struct {
	// Client is the HTTP client to use for requests.
	// Its BaseURL should point at the genderize.io API root.
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// GenderizeClient implements ports.GenderLookup using the genderize.io API.
type GenderizeClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewGenderizeClient creates a new genderize adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewGenderizeClient(cfg GenderizeClientConfig) *GenderizeClient {
	if cfg.Client == nil {
		panic("GenderizeClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GenderizeClient{
		client: cfg.Client,
		logger: logger,
	}
}

// genderizeResponse is the external DTO returned by genderize.io.
// Gender is null when the name is unknown.
type genderizeResponse struct {
	Name        string  `json:"name"`
	Gender      *string `json:"gender"`
	Probability float64 `json:"probability"`
	Count       int     `json:"count"`
}

// LookupGender asks genderize.io for the gender of name.
// Implements ports.GenderLookup.
func (c *GenderizeClient) LookupGender(ctx context.Context, name string) (ports.Gender, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("service", GenderizeServiceName))

	resp, err := c.client.Get(ctx, "/", url.Values{"name": {name}})
	if err != nil {
		return ports.GenderUnknown, MapHTTPError(nil, err, GenderizeServiceName, "gender lookup")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		mapped := MapHTTPError(resp, nil, GenderizeServiceName, "gender lookup")
		c.logger.WarnContext(ctx, "genderize API error",
			slog.Int("status_code", resp.StatusCode),
			slog.Any("error", mapped),
		)

		return ports.GenderUnknown, mapped
	}

	var external genderizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&external); err != nil {
		return ports.GenderUnknown, fmt.Errorf("decoding genderize response: %w", err)
	}

	gender := translateGender(&external)

	c.logger.Log(ctx, logging.LevelTrace, "translated external DTO to domain",
		slog.String("gender", string(gender)),
		slog.Float64("probability", external.Probability),
	)

	return gender, nil
}

// translateGender maps the external answer onto the port's vocabulary.
func translateGender(ext *genderizeResponse) ports.Gender {
	if ext.Gender == nil {
		return ports.GenderUnknown
	}

	switch ports.Gender(*ext.Gender) {
	case ports.GenderMale:
		return ports.GenderMale
	case ports.GenderFemale:
		return ports.GenderFemale
	default:
		return ports.GenderUnknown
	}
}

// APIKeyAuth returns a clients.Config AuthFunc adding the genderize.io API key.
func APIKeyAuth(key string) func(*http.Request) {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Set("apikey", key)
		req.URL.RawQuery = q.Encode()
	}
}
