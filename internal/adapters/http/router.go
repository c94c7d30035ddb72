package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds a request's work on the quote and info routes.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig holds everything SetupRouter wires onto the engine.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string
	CORS        config.CORSConfig

	// Metrics records per-route HTTP metrics. Nil disables them.
	Metrics *telemetry.HTTPMetrics

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	InfoHandler   *handlers.InfoHandler

	// Timeout is the request deadline; zero disables it.
	Timeout time.Duration
}

// SetupRouter installs the middleware chain and the routes.
// Middleware order (first to last):
//  1. Recovery
//  2. CORS, which also answers OPTIONS preflight
//  3. Context logger, request id and correlation id
//  4. OpenTelemetry tracing, span ids on the context logger, HTTP metrics
//  5. Access logging (skips /-/)
//  6. Request timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine.Use(
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.ServiceName),
		middleware.SpanLogger(),
	)

	if cfg.Metrics != nil {
		engine.Use(telemetry.Middleware(cfg.Metrics))
	}

	engine.Use(
		middleware.Logging(),
		middleware.Timeout(cfg.Timeout),
	)

	engine.GET("/", handlers.Landing)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine)
	}

	api := engine.Group("")

	if cfg.InfoHandler != nil {
		cfg.InfoHandler.RegisterInfoRoutes(api)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(api)
	}
}
