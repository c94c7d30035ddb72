package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is the service root, for example "https://api.genderize.io".
	BaseURL string

	// ServiceName identifies the downstream service in logs, traces and errors.
	ServiceName string

	// Timeout is the per-attempt request timeout. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, when set, adds credentials to every attempt.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client is an HTTP client for one downstream service. Calls are retried
// with exponential backoff and jitter, guarded by a circuit breaker, traced
// and measured with OpenTelemetry, and carry the request and correlation ids
// of the calling request.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer  trace.Tracer
	metrics *callMetrics
}

// New creates a client. ServiceName is required; a zero Timeout or
// MaxAttempts takes the default.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "clients.Client"))

	metrics, err := newCallMetrics(otel.Meter(instrumentationName), cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.Transport.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
			},
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          NewCircuitBreaker(cfg.ServiceName, cfg.Circuit, logger),
		tracer:      otel.Tracer(instrumentationName),
		metrics:     metrics,
	}, nil
}

// Get performs a GET on path with the given query, which may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.buildURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Do sends req. 5xx answers and network errors are retried; 429 stops at
// once and holds the breaker open for the Retry-After period. Any other
// answer is returned to the caller, who must close the body.
//
// Requests with a body are only retried correctly when req.GetBody is set.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if ok, wait := c.cb.Allow(); !ok {
		c.metrics.record(ctx, req.Method, 0, time.Since(start), outcomeCircuitOpen)
		logger.Debug("request blocked by circuit breaker", slog.Duration("retry_in", wait))

		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, c.serviceName)
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", redactQuery(req.URL)),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.send(ctx, req, logger)

	return c.finish(ctx, req.Method, resp, err, span, logger, start)
}

// CircuitState returns the state of the client's circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// send runs the attempts. It returns either a response below 500 other
// than 429, or an error.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := range c.cfg.Retry.MaxAttempts {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			logger.Debug("retrying request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.Any("previous_error", lastErr),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}

			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		switch {
		case err != nil:
			if !isRetryableError(err) {
				return nil, err
			}

			lastErr = err

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			c.discard(resp, logger)

			return nil, &RateLimitError{Service: c.serviceName, RetryAfter: retryAfter}

		case resp.StatusCode >= http.StatusInternalServerError:
			c.discard(resp, logger)
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)

		default:
			return resp, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, c.cfg.Retry.MaxAttempts, lastErr)
}

// finish updates the breaker, span, metrics and logs for a completed call.
func (c *Client) finish(ctx context.Context, method string, resp *http.Response, err error, span trace.Span, logger *slog.Logger, start time.Time) (*http.Response, error) {
	duration := time.Since(start)

	var rateLimited *RateLimitError

	switch {
	case errors.As(err, &rateLimited):
		hold := rateLimited.RetryAfter
		if hold <= 0 {
			hold = c.cfg.Circuit.Timeout
		}

		c.cb.Hold(hold)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.record(ctx, method, http.StatusTooManyRequests, duration, outcomeRateLimited)
		logger.Warn("downstream rate limit reached", slog.Duration("hold", hold))

		return nil, err

	case err != nil:
		// The caller giving up says nothing about the service.
		if !errors.Is(err, context.Canceled) {
			c.cb.RecordFailure()
		}

		span.SetStatus(codes.Error, err.Error())
		c.metrics.record(ctx, method, 0, duration, outcomeError)
		logger.Error("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return nil, err
	}

	c.cb.RecordSuccess()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.metrics.record(ctx, method, resp.StatusCode, duration, outcomeSuccess)
	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

func (c *Client) discard(resp *http.Response, logger *slog.Logger) {
	if err := resp.Body.Close(); err != nil {
		logger.Debug("failed to close response body", slog.Any("error", err))
	}
}

// injectHeaders adds the request and correlation ids and the credentials.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// calculateBackoff returns InitialInterval * Multiplier^attempt capped at
// MaxInterval, spread by ±JitterFactor.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	retry := c.cfg.Retry

	backoff := float64(retry.InitialInterval) * math.Pow(retry.Multiplier, float64(attempt))
	if backoff > float64(retry.MaxInterval) {
		backoff = float64(retry.MaxInterval)
	}

	if retry.JitterFactor > 0 {
		spread := rand.Float64()*2 - 1 //nolint:gosec // jitter does not need crypto randomness
		backoff += backoff * retry.JitterFactor * spread
	}

	return time.Duration(backoff)
}

// redactQuery drops query values, which may carry API keys, from span attributes.
func redactQuery(u *url.URL) string {
	clean := *u
	if clean.RawQuery != "" {
		q := clean.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}

		clean.RawQuery = q.Encode()
	}

	return clean.String()
}

// isRetryableError reports whether a transport error is worth another attempt.
// Caller cancellation and deadlines never are.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
