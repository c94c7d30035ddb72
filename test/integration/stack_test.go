//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/cache"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/insurance-quote-service/internal/adapters/http"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/system"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/telemetry"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// stack is the service wired the way cmd/service wires it, on a
// temporary SQLite file and an optional genderize stub.
type stack struct {
	server *httptest.Server
	store  *storage.Store
	cache  *cache.Memory
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// genderizeClientConfig returns a client config with fast retries.
func genderizeClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: acl.GenderizeServiceName,
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	}
}

// newStack starts the HTTP service. An empty genderizeURL disables the lookup.
func newStack(t *testing.T, genderizeURL string) *stack {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger := discardLogger()
	ctx := context.Background()

	store, _, err := storage.Open(ctx, config.DatabaseConfig{DataDir: t.TempDir(), Name: "quotes.db"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	memory := cache.NewMemory()

	var lookup ports.GenderLookup
	if genderizeURL != "" {
		client, err := clients.New(genderizeClientConfig(genderizeURL))
		require.NoError(t, err)

		lookup = acl.NewGenderizeClient(acl.GenderizeClientConfig{Client: client, Logger: logger})
	}

	metrics := app.NewMetrics(prometheus.NewRegistry())

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Repository: store,
		Resolver: app.NewSexResolver(app.SexResolverConfig{
			Lookup:   lookup,
			Cache:    memory,
			CacheTTL: time.Hour,
			Metrics:  metrics,
			Logger:   logger,
		}),
		Metrics: metrics,
		Logger:  logger,
	})

	httpMetrics, err := telemetry.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		ServiceName:   "insurance-quote-service",
		CORS:          config.CORSConfig{AllowOrigin: "*", AllowMethods: "GET, POST, OPTIONS"},
		Metrics:       httpMetrics,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		QuoteHandler:  handlers.NewQuoteHandler(quotes),
		InfoHandler:   handlers.NewInfoHandler(app.NewInfoService(store, system.New(t.TempDir()), logger)),
		Timeout:       httpadapter.DefaultRequestTimeout,
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &stack{server: server, store: store, cache: memory}
}
