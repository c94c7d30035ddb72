// Package database resolves the configured database URL into a driver and
// DSN and opens the *sql.DB used by the quote store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
)

// Dialect identifies the SQL flavor spoken by a Target.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

const (
	memoryPath       = ":memory:"
	defaultMySQLPort = "3306"
	sqlitePragmas    = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
)

// ErrUnsupportedURL is returned for database URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Target is a resolved database location.
type Target struct {
	Dialect Dialect

	// Driver is the database/sql driver name.
	Driver string

	// DSN is passed to sql.Open. It may contain credentials; log Display instead.
	DSN string

	// Path is the SQLite file path, or ":memory:".
	Path string

	// Display is a credential-free description for logs.
	Display string
}

// InMemory reports whether the target is a transient SQLite database.
func (t Target) InMemory() bool {
	return t.Dialect == DialectSQLite && t.Path == memoryPath
}

// Resolve turns the database configuration into a Target.
//
// Accepted URLs:
//
//	""                          SQLite file at DataDir/Name
//	sqlite:///relative/file.db  SQLite file (sqlite:////abs/file.db for absolute paths)
//	sqlite://:memory:           in-memory SQLite
//	postgres://, postgresql://  PostgreSQL through pgx
//	mysql://, mysql+<drv>://    MySQL
//	jdbc:mysql://               MySQL, with User/Password injected when both are set
func Resolve(cfg config.DatabaseConfig) (Target, error) {
	raw := strings.TrimSpace(cfg.URL)

	switch {
	case raw == "":
		return sqliteTarget(filepath.Join(cfg.DataDir, cfg.Name)), nil
	case strings.HasPrefix(raw, "sqlite:///"):
		return sqliteTarget(strings.TrimPrefix(raw, "sqlite:///")), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteTarget(strings.TrimPrefix(raw, "sqlite://")), nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return postgresTarget(raw, cfg)
	case strings.HasPrefix(raw, "jdbc:mysql://"):
		return mysqlTarget(strings.TrimPrefix(raw, "jdbc:"), cfg, true)
	case strings.HasPrefix(raw, "mysql://"), strings.HasPrefix(raw, "mysql+"):
		return mysqlTarget(raw, cfg, false)
	default:
		scheme, _, _ := strings.Cut(raw, ":")
		return Target{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
	}
}

func sqliteTarget(path string) Target {
	if path == "" {
		path = memoryPath
	}

	t := Target{
		Dialect: DialectSQLite,
		Driver:  "sqlite",
		Path:    path,
		Display: "sqlite:///" + path,
	}

	t.DSN = sqliteDSN(path)

	return t
}

func sqliteDSN(path string) string {
	if path == memoryPath {
		return memoryPath
	}

	return path + "?" + sqlitePragmas
}

func postgresTarget(raw string, cfg config.DatabaseConfig) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parsing postgres url: %w", err)
	}

	if u.User == nil && cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	return Target{
		Dialect: DialectPostgres,
		Driver:  "pgx",
		DSN:     u.String(),
		Display: displayURL(u),
	}, nil
}

func mysqlTarget(raw string, cfg config.DatabaseConfig, jdbc bool) (Target, error) {
	// mysql+pymysql:// and similar driver-qualified schemes
	if scheme, rest, ok := strings.Cut(raw, "://"); ok && strings.HasPrefix(scheme, "mysql+") {
		raw = "mysql://" + rest
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parsing mysql url: %w", err)
	}

	injectCreds := cfg.User != "" && cfg.Password != "" && (jdbc || u.User == nil)
	if injectCreds {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.ParseTime = true
	mc.DBName = strings.TrimPrefix(u.Path, "/")

	mc.Addr = u.Host
	if u.Port() == "" {
		mc.Addr = net.JoinHostPort(u.Hostname(), defaultMySQLPort)
	}

	if u.User != nil {
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
	}

	if q := u.Query(); len(q) > 0 {
		mc.Params = make(map[string]string, len(q))
		for k := range q {
			mc.Params[k] = q.Get(k)
		}
	}

	return Target{
		Dialect: DialectMySQL,
		Driver:  "mysql",
		DSN:     mc.FormatDSN(),
		Display: displayURL(u),
	}, nil
}

// displayURL drops the password, keeping the user name.
func displayURL(u *url.URL) string {
	c := *u
	if c.User != nil {
		c.User = url.User(c.User.Username())
	}

	return c.String()
}

// Open opens and pings the database described by t.
//
// For file-backed SQLite the parent directory is created. When it cannot be
// created the file is placed in the system temp directory instead and a
// warning is logged. The returned Target reflects the final location.
func Open(ctx context.Context, t Target, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, Target, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if t.Dialect == DialectSQLite && !t.InMemory() {
		t = ensureSQLiteDir(t, logger)
	}

	db, err := sql.Open(t.Driver, t.DSN)
	if err != nil {
		return nil, t, fmt.Errorf("opening %s database: %w", t.Dialect, err)
	}

	switch {
	case t.InMemory():
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	default:
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, t, fmt.Errorf("connecting to %s: %w", t.Display, err)
	}

	return db, t, nil
}

func ensureSQLiteDir(t Target, logger *slog.Logger) Target {
	dir := filepath.Dir(t.Path)
	if dir == "" || dir == "." {
		return t
	}

	err := os.MkdirAll(dir, 0o750)
	if err == nil {
		return t
	}

	fallback := filepath.Join(os.TempDir(), filepath.Base(t.Path))
	logger.Warn("could not create database directory, falling back to temp dir",
		slog.String("dir", dir),
		slog.String("fallback", fallback),
		slog.Any("error", err),
	)

	return sqliteTarget(fallback)
}
