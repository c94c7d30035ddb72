package benchmark

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/insurance-quote-service/internal/adapters/http"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/telemetry"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

const quoteJSON = `{"nome":"Sr. João Silva","cpf":"123.456.789-01","sexo":"M","dtnasc":"1990-01-01",` +
	`"capital":10000,"inicio_vig":"2025-01-01","fim_vig":"2025-12-31"}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine builds the full router on an in-memory SQLite store.
func newEngine(b *testing.B) *gin.Engine {
	b.Helper()

	logger := discardLogger()

	store, _, err := storage.Open(context.Background(), config.DatabaseConfig{URL: "sqlite://:memory:", Name: "bench"}, logger)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = store.Close() })

	registry := ports.NewHealthRegistry()
	_ = registry.Register(store)

	metrics, err := telemetry.NewHTTPMetrics(prometheus.NewRegistry())
	if err != nil {
		b.Fatal(err)
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		ServiceName:   "insurance-quote-service",
		Metrics:       metrics,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")),
		QuoteHandler: handlers.NewQuoteHandler(app.NewQuoteService(app.QuoteServiceConfig{
			Repository: store,
			Metrics:    app.NewMetrics(prometheus.NewRegistry()),
			Logger:     logger,
		})),
	})

	return engine
}

// BenchmarkValidateAndPrice measures the pure domain path of a quote.
func BenchmarkValidateAndPrice(b *testing.B) {
	req, err := dto.DecodeQuoteRequest(bytes.NewReader([]byte(quoteJSON)))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()

	for b.Loop() {
		q, err := domain.ValidateQuote(req)
		if err != nil {
			b.Fatal(err)
		}

		_ = domain.CalculatePricing(q)
	}
}

// BenchmarkDecodeQuoteRequest measures JSON decoding into request fields.
func BenchmarkDecodeQuoteRequest(b *testing.B) {
	body := []byte(quoteJSON)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := dto.DecodeQuoteRequest(bytes.NewReader(body)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCreateQuote measures POST /cotacoes through the full middleware
// chain, including the SQLite insert.
func BenchmarkCreateQuote(b *testing.B) {
	engine := newEngine(b)
	body := []byte(quoteJSON)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cotacoes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}
}

// BenchmarkHealth measures GET /health, which pings the database.
func BenchmarkHealth(b *testing.B) {
	engine := newEngine(b)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
	}
}

// BenchmarkLiveness measures the probe that must stay cheap for Kubernetes.
func BenchmarkLiveness(b *testing.B) {
	engine := newEngine(b)
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
	}
}
