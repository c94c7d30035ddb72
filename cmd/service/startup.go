package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/clients"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

const (
	probeServiceName = "self"
	probeTimeout     = 5 * time.Second
)

type probeConfig struct {
	Store   ports.HealthChecker
	BaseURL string
	Delay   time.Duration
	Client  config.ClientConfig
	Logger  *slog.Logger
}

// probeResult is what the startup probe found. It is only ever logged.
type probeResult struct {
	DatabaseErr error
	HTTPStatus  int
	HTTPBody    map[string]any
	HTTPErr     error
}

// runStartupProbe waits for the server to settle, then checks the database
// directly and GET /health over HTTP. Failures are logged and never stop
// the service.
func runStartupProbe(ctx context.Context, cfg probeConfig) probeResult {
	select {
	case <-ctx.Done():
		return probeResult{DatabaseErr: ctx.Err(), HTTPErr: ctx.Err()}
	case <-time.After(cfg.Delay):
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var res probeResult

	dbCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	res.DatabaseErr = cfg.Store.Check(dbCtx)
	cancel()

	if res.DatabaseErr != nil {
		logger.Error("startup probe: database unreachable", slog.Any("error", res.DatabaseErr))
	} else {
		logger.Info("startup probe: database reachable")
	}

	res.HTTPStatus, res.HTTPBody, res.HTTPErr = probeHealth(ctx, cfg)

	switch {
	case res.HTTPErr != nil:
		logger.Error("startup probe: /health request failed", slog.Any("error", res.HTTPErr))
	case res.HTTPStatus != http.StatusOK:
		logger.Warn("startup probe: /health not ok",
			slog.Int("status", res.HTTPStatus),
			slog.Any("body", res.HTTPBody),
		)
	default:
		logger.Info("startup probe: /health ok", slog.Any("body", res.HTTPBody))
	}

	return res
}

// startStartupCheck runs the startup check in the background. The returned
// stop cancels it and waits for it to return.
func startStartupCheck(ctx context.Context, cfg probeConfig) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		runStartupProbe(ctx, cfg)
	}()

	return func() {
		cancel()
		<-done
	}
}

func probeHealth(ctx context.Context, cfg probeConfig) (int, map[string]any, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.BaseURL,
		ServiceName: probeServiceName,
		Timeout:     probeTimeout,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return 0, nil, err
	}

	resp, err := client.Get(ctx, "/health", nil)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, body, nil
}
