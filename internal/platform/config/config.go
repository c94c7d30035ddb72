// Package config loads the service settings from defaults, YAML profiles,
// APP_ variables and the legacy variable names, then validates them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults shared by defaults() and the tests.
const (
	DefaultServerPort     = 5000
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 30
	DefaultLogFileMaxAgeDays = 28

	// DefaultGenderizeMaxAttempts allows one retry of the lookup.
	DefaultGenderizeMaxAttempts = 2

	// The SQLite file lives here when database.url is empty.
	DefaultDataDir           = "data"
	DefaultServerlessDataDir = "/tmp"

	// LogFileName is the active file inside the logs directory.
	LogFileName = "app.log"
)

// Config holds every setting of the service and of cotacoesctl.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	CORS      CORSConfig      `koanf:"cors"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Genderize GenderizeConfig `koanf:"genderize" validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Features  map[string]bool `koanf:"features"`
	Startup   StartupConfig   `koanf:"startup"`
}

// AppConfig identifies the deployment.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`

	// Serverless disables file logging and moves the default SQLite file to /tmp.
	Serverless bool `koanf:"serverless"`
}

// ServerConfig tunes the gin listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig selects level and format; File adds a rotated copy.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig is passed to lumberjack. Sizes are in megabytes, ages in days.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=365"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// Dir returns the directory holding the log file and its rotated backups.
func (c LogFileConfig) Dir() string {
	return filepath.Dir(c.Path)
}

// DatabaseConfig selects and configures the quote store.
// An empty URL means a SQLite file at DataDir/Name.
type DatabaseConfig struct {
	URL             string        `koanf:"url"               validate:"omitempty,dburl"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	DataDir         string        `koanf:"data_dir"`
	Name            string        `koanf:"name"              validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// CORSConfig holds the values sent in the Access-Control-Allow-* headers.
type CORSConfig struct {
	AllowOrigin  string `koanf:"allow_origin"`
	AllowHeaders string `koanf:"allow_headers"`
	AllowMethods string `koanf:"allow_methods"`
}

// TelemetryConfig enables OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig is shared by every outbound client: genderize and the
// startup probe.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig shapes the exponential backoff between attempts.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms,gtefield=InitialInterval"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig sets when a client stops calling a failing service
// and how many probes it sends before trusting it again.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig sizes the idle connection pool.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// GenderizeConfig configures the name-based gender lookup.
// Timeout bounds the whole lookup, retries included.
type GenderizeConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url"     validate:"required_if=Enabled true,omitempty,url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout"      validate:"required,min=100ms"`
	MaxAttempts int           `koanf:"max_attempts" validate:"required,min=1,max=5"`
	CacheTTL    time.Duration `koanf:"cache_ttl"    validate:"min=0"`
}

// CacheConfig selects the lookup cache backend.
type CacheConfig struct {
	Driver   string `koanf:"driver"    validate:"required,oneof=memory redis none"`
	RedisURL string `koanf:"redis_url" validate:"required_if=Driver redis"`
}

// EventsConfig configures publication of quote events to Kafka.
type EventsConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Brokers  []string `koanf:"brokers"   validate:"required_if=Enabled true"`
	Topic    string   `koanf:"topic"     validate:"required_if=Enabled true"`
	ClientID string   `koanf:"client_id"`
}

// StartupConfig controls the background self check run after the server starts.
type StartupConfig struct {
	HealthCheck bool          `koanf:"health_check"`
	Delay       time.Duration `koanf:"delay"`
}

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "insurance-quote-service",
		"app.version":     "dev",
		"app.environment": "local",
		"app.serverless":  false,

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     true,
		"log.file.path":        filepath.Join("logs", LogFileName),
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"database.url":               "",
		"database.name":              "insurance.db",
		"database.max_open_conns":    10,
		"database.conn_max_lifetime": "30m",

		"cors.allow_origin":  "*",
		"cors.allow_headers": "Content-Type, X-Debug",
		"cors.allow_methods": "GET, POST, OPTIONS",

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "insurance-quote-service",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"genderize.enabled":      true,
		"genderize.base_url":     "https://api.genderize.io",
		"genderize.timeout":      "3s",
		"genderize.max_attempts": DefaultGenderizeMaxAttempts,
		"genderize.cache_ttl":    "24h",

		"cache.driver": "memory",

		"events.enabled":   false,
		"events.topic":     "cotacoes.created",
		"events.client_id": "insurance-quote-service",

		"startup.health_check": false,
		"startup.delay":        "1s",
	}
}

// legacyEnv maps the environment variables understood by earlier deployments
// of the service onto koanf keys. They are loaded after the APP_ variables.
var legacyEnv = map[string]string{
	"DATABASE_URL":         "database.url",
	"DB_USER":              "database.user",
	"DB_PASS":              "database.password",
	"DATA_DIR":             "database.data_dir",
	"DB_NAME":              "database.name",
	"LOG_LEVEL":            "log.level",
	"LOGS_PATH":            "log.file.path",
	"MAX_LOG_FILES":        "log.file.max_backups",
	"USE_FILE_LOGS":        "log.file.enabled",
	"SERVERLESS":           "app.serverless",
	"STARTUP_HEALTH_CHECK": "startup.health_check",
	"HOST":                 "server.host",
	"PORT":                 "server.port",
	"CORS_ALLOW_ORIGIN":    "cors.allow_origin",
	"CORS_ALLOW_HEADERS":   "cors.allow_headers",
	"CORS_ALLOW_METHODS":   "cors.allow_methods",
	"GENDERIZE_API_KEY":    "genderize.api_key",
	"REDIS_URL":            "cache.redis_url",
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Legacy environment variables (DATABASE_URL, PORT, ...)
//  2. Environment variables (APP_ prefix)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
//
// A .env file in the working directory is read first; it never overrides
// variables already set in the process environment.
func Load(profile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	err = k.Load(env.ProviderWithValue("", ".", legacyEnvValue), nil)
	if err != nil {
		return nil, fmt.Errorf("loading legacy env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.applyDerived()

	return &cfg, nil
}

// legacyEnvValue translates one legacy variable. Unknown or empty variables
// are skipped by returning an empty key.
func legacyEnvValue(key, value string) (string, any) {
	path, ok := legacyEnv[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", nil
	}

	switch key {
	case "USE_FILE_LOGS", "SERVERLESS", "STARTUP_HEALTH_CHECK":
		return path, parseFlag(value)
	case "LOG_LEVEL":
		return path, strings.ToLower(value)
	case "LOGS_PATH":
		return path, filepath.Join(value, LogFileName)
	default:
		return path, value
	}
}

// parseFlag accepts 1/true/yes in any case.
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true
	}

	b, err := strconv.ParseBool(strings.TrimSpace(s))

	return err == nil && b
}

// applyDerived fills settings that depend on other settings.
func (c *Config) applyDerived() {
	if c.App.Serverless {
		c.Log.File.Enabled = false
	}

	if c.Database.DataDir == "" {
		c.Database.DataDir = DefaultDataDir
		if c.App.Serverless {
			c.Database.DataDir = DefaultServerlessDataDir
		}
	}
}

// loadFileIfExists skips missing profile files; a file that exists must parse.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}
