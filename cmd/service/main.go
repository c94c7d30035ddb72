// Package main is the entry point for the insurance quote API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/cache"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/events"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/featureflags"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/system"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/telemetry"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Configuration (fail fast)
	profile := os.Getenv("APP_ENV")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Logging
	logger := logging.New(loggingConfig(cfg))
	logging.SetDefault(logger)

	// 3. Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, telemetry.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 4. Quote store
	store, target, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeQuietly(logger, "database", store)

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	// 5. Optional collaborators
	lookupCache, err := newCache(ctx, cfg.Cache, healthRegistry, logger)
	if err != nil {
		return err
	}

	if c, ok := lookupCache.(io.Closer); ok {
		defer closeQuietly(logger, "cache", c)
	}

	publisher, err := newPublisher(cfg, healthRegistry, logger)
	if err != nil {
		return err
	}

	if k, ok := publisher.(*events.Kafka); ok {
		defer k.Close()
	}

	genderLookup, err := newGenderLookup(cfg, logger)
	if err != nil {
		return err
	}

	// 6. Application layer
	metrics := app.NewMetrics(prometheus.DefaultRegisterer)

	resolver := app.NewSexResolver(app.SexResolverConfig{
		Lookup:   genderLookup,
		Cache:    lookupCache,
		CacheTTL: cfg.Genderize.CacheTTL,
		Timeout:  cfg.Genderize.Timeout,
		Metrics:  metrics,
		Logger:   logger,
	})

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Repository: store,
		Resolver:   resolver,
		Publisher:  publisher,
		Flags:      featureflags.NewStatic(cfg.Features),
		Metrics:    metrics,
		Logger:     logger,
	})
	infoService := app.NewInfoService(store, system.New(cfg.Log.File.Dir()), logger)

	// 7. HTTP
	httpMetrics, err := telemetry.NewHTTPMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("creating HTTP metrics: %w", err)
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.App.Name,
		CORS:          cfg.CORS,
		Metrics:       httpMetrics,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		QuoteHandler:  handlers.NewQuoteHandler(quoteService),
		InfoHandler:   handlers.NewInfoHandler(infoService),
		Timeout:       http.DefaultRequestTimeout,
	})

	if err := server.Listen(); err != nil {
		return err
	}

	logStartup(logger, cfg, target.Display, server.URL())

	serverErr := server.Start()

	stopCheck := func() {}
	if cfg.Startup.HealthCheck {
		stopCheck = startStartupCheck(ctx, probeConfig{
			Store:   store,
			BaseURL: server.URL(),
			Delay:   cfg.Startup.Delay,
			Client:  cfg.Client,
			Logger:  logger,
		})
	}

	return waitForShutdown(ctx, logger, server, serverErr, stopCheck, cfg.Server.ShutdownTimeout)
}

func loggingConfig(cfg *config.Config) *logging.Config {
	return &logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}
}

// newCache returns nil when caching is off.
func newCache(ctx context.Context, cfg config.CacheConfig, registry *ports.DefaultHealthRegistry, logger *slog.Logger) (ports.Cache, error) {
	switch cfg.Driver {
	case "redis":
		c, err := cache.NewRedis(ctx, cfg.RedisURL, "cotacoes:")
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}

		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering redis health check: %w", err)
		}

		return c, nil
	case "none":
		logger.Info("gender lookup cache disabled")
		return nil, nil //nolint:nilnil // no cache is a valid configuration
	default:
		return cache.NewMemory(), nil
	}
}

func newPublisher(cfg *config.Config, registry *ports.DefaultHealthRegistry, logger *slog.Logger) (ports.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return events.Nop{}, nil
	}

	k, err := events.NewKafka(events.KafkaConfig{
		Brokers:  cfg.Events.Brokers,
		Topic:    cfg.Events.Topic,
		ClientID: cfg.Events.ClientID,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	if err := registry.Register(k); err != nil {
		return nil, fmt.Errorf("registering kafka health check: %w", err)
	}

	return k, nil
}

// newGenderLookup returns nil when the lookup is disabled; names are then
// resolved from their title or fall back to M.
func newGenderLookup(cfg *config.Config, logger *slog.Logger) (ports.GenderLookup, error) {
	if !cfg.Genderize.Enabled {
		return nil, nil //nolint:nilnil // lookup is optional
	}

	retry := cfg.Client.Retry
	retry.MaxAttempts = cfg.Genderize.MaxAttempts

	clientCfg := &clients.Config{
		BaseURL:     cfg.Genderize.BaseURL,
		ServiceName: acl.GenderizeServiceName,
		Timeout:     cfg.Genderize.Timeout,
		Retry:       retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	}
	if cfg.Genderize.APIKey != "" {
		clientCfg.AuthFunc = acl.APIKeyAuth(cfg.Genderize.APIKey)
	}

	httpClient, err := clients.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating genderize client: %w", err)
	}

	return acl.NewGenderizeClient(acl.GenderizeClientConfig{
		Client: httpClient,
		Logger: logger,
	}), nil
}

func logStartup(logger *slog.Logger, cfg *config.Config, database, url string) {
	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("url", url),
		slog.String("database", database),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("file_logs", cfg.Log.File.Enabled),
		slog.Bool("serverless", cfg.App.Serverless),
		slog.String("cache", cfg.Cache.Driver),
		slog.Bool("genderize", cfg.Genderize.Enabled),
		slog.Bool("events", cfg.Events.Enabled),
		slog.Bool("startup_health_check", cfg.Startup.HealthCheck),
	)
}

func closeQuietly(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", slog.String("resource", name), slog.Any("error", err))
	}
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then drains in-flight requests. stopCheck runs first on both paths
// so the startup check never outlives the server or the store.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	stopCheck func(),
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		stopCheck()

		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}

		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		stopCheck()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
