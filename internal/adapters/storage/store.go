// Package storage implements ports.QuoteRepository on database/sql.
// SQLite, PostgreSQL and MySQL are supported; see the database platform
// package for URL resolution and driver registration.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/database"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// CheckerName is the name the store registers under in the health registry.
const CheckerName = ports.DatabaseCheckName

const entityQuote = "cotacao"

//go:embed schema/*.sql
var schemaFS embed.FS

const columns = `nome, cpf, sexo, dtnasc, capital, inicio_vig, fim_vig,
	taxa_base_anual, taxa_ajustada, vigencia_dias, vigencia_anos, premio,
	descricao, created_at`

const (
	insertQuery = `INSERT INTO cotacoes (` + columns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectQuery = `SELECT id, ` + columns + ` FROM cotacoes`
	countQuery  = `SELECT COUNT(*) FROM cotacoes`
)

// Compile-time interface checks.
var (
	_ ports.QuoteRepository = (*Store)(nil)
	_ ports.HealthChecker   = (*Store)(nil)
)

// Store is a SQL-backed quote repository.
type Store struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *slog.Logger
	now     func() time.Time

	// mu serializes writers; reads go straight to the pool.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Store on db. The schema is not touched; call Migrate.
func New(db *sql.DB, dialect database.Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Migrate creates the cotacoes table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + string(s.dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for dialect %q: %w", s.dialect, err)
	}

	if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("creating cotacoes table: %w", err)
	}

	s.logger.DebugContext(ctx, "schema ready", slog.String("dialect", string(s.dialect)))

	return nil
}

// Insert stores rec in its own transaction and returns it with ID and
// CreatedAt filled in.
func (s *Store) Insert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.CreatedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("beginning insert: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	args := []any{
		rec.Name, rec.CPF, string(rec.Sex),
		rec.BirthDate.Format(domain.DateLayout),
		rec.Capital,
		rec.CoverageStart.Format(domain.DateLayout),
		rec.CoverageEnd.Format(domain.DateLayout),
		rec.BaseRate, rec.AdjustedRate, rec.DurationDays, rec.DurationYears, rec.Premium,
		rec.Description,
		rec.CreatedAt.Format(time.RFC3339Nano),
	}

	id, err := s.insertRow(ctx, tx, args)
	if err != nil {
		return domain.QuoteRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("committing insert: %w", err)
	}

	rec.ID = id

	return rec, nil
}

func (s *Store) insertRow(ctx context.Context, tx *sql.Tx, args []any) (int64, error) {
	if s.dialect == database.DialectPostgres {
		var id int64

		err := tx.QueryRowContext(ctx, s.rebind(insertQuery)+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("inserting quote: %w", err)
		}

		return id, nil
	}

	res, err := tx.ExecContext(ctx, insertQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}

	return id, nil
}

// GetByID returns the record with the given decimal id.
func (s *Store) GetByID(ctx context.Context, id string) (domain.QuoteRecord, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 1 {
		return domain.QuoteRecord{}, domain.NewNotFoundError(entityQuote, id)
	}

	row := s.db.QueryRowContext(ctx, s.rebind(selectQuery+" WHERE id = ?"), n)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuoteRecord{}, domain.NewNotFoundError(entityQuote, id)
	}

	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("loading quote %d: %w", n, err)
	}

	return rec, nil
}

// List returns all records ordered by descending id.
func (s *Store) List(ctx context.Context) ([]domain.QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectQuery+" ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	recs := make([]domain.QuoteRecord, 0)

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}

	return recs, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting quotes: %w", err)
	}

	return n, nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return CheckerName
}

// Check implements ports.HealthChecker with a SELECT 1 round trip.
func (s *Store) Check(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.QuoteRecord, error) {
	var (
		rec                          domain.QuoteRecord
		sex, birth, start, end, when string
		description                  sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.CPF, &sex, &birth, &rec.Capital, &start, &end,
		&rec.BaseRate, &rec.AdjustedRate, &rec.DurationDays, &rec.DurationYears, &rec.Premium,
		&description, &when,
	)
	if err != nil {
		return domain.QuoteRecord{}, err
	}

	rec.Sex = domain.Sex(sex)
	rec.Description = description.String

	if rec.BirthDate, err = domain.ParseDate(birth); err != nil {
		return domain.QuoteRecord{}, err
	}

	if rec.CoverageStart, err = domain.ParseDate(start); err != nil {
		return domain.QuoteRecord{}, err
	}

	if rec.CoverageEnd, err = domain.ParseDate(end); err != nil {
		return domain.QuoteRecord{}, err
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, when); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("parsing created_at %q: %w", when, err)
	}

	return rec, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != database.DialectPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
