// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Database queries (that's repository adapters)
//   - Validation and pricing rules (that's the domain layer)
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// Event publish results.
const (
	publishOK      = "ok"
	publishFailed  = "error"
	publishSkipped = "skipped"
)

var (
	errInvalidPricing = errors.New("priced quote is inconsistent")
	errRecordNotSaved = errors.New("stored quote has no id")
)

// QuoteService orchestrates the quote use cases.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	repo      ports.QuoteRepository
	resolver  *SexResolver
	publisher ports.EventPublisher
	flags     ports.FeatureFlags
	metrics   *Metrics
	executor  *Executor
	logger    *slog.Logger
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository

	// Resolver defaults to title matching with the M fallback.
	Resolver *SexResolver

	// Publisher is optional.
	Publisher ports.EventPublisher

	// Flags is optional; every flag then takes its default.
	Flags ports.FeatureFlags

	Metrics *Metrics
	Logger  *slog.Logger
}

// NewQuoteService creates a new quote service.
// Panics if Repository is nil. Defaults logger to slog.Default() if nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("QuoteService: Repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewSexResolver(SexResolverConfig{Metrics: cfg.Metrics, Logger: logger})
	}

	return &QuoteService{
		repo:      cfg.Repository,
		resolver:  resolver,
		publisher: cfg.Publisher,
		flags:     cfg.Flags,
		metrics:   cfg.Metrics,
		executor:  NewExecutor(logger),
		logger:    logger,
	}
}

// Create validates and prices req, stores the record and returns it with
// its id and creation time. Validation failures carry domain field errors.
func (s *QuoteService) Create(ctx context.Context, req domain.QuoteRequest) (domain.QuoteRecord, error) {
	op := s.pricingOperation("create_quote")
	op.Archive = s.archive
	op.Respond = s.announce

	return Execute(ctx, s.executor, op, req)
}

// Preview validates and prices req without storing anything.
func (s *QuoteService) Preview(ctx context.Context, req domain.QuoteRequest) (domain.QuoteRecord, error) {
	return Execute(ctx, s.executor, s.pricingOperation("preview_quote"), req)
}

// Get returns the stored quote with the given id.
func (s *QuoteService) Get(ctx context.Context, id string) (domain.QuoteRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to fetch quote",
				slog.String("quote_id", id),
				slog.Any("error", err),
			)
		}

		return domain.QuoteRecord{}, err
	}

	return rec, nil
}

// List returns every stored quote, newest first.
func (s *QuoteService) List(ctx context.Context) ([]domain.QuoteRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list quotes", slog.Any("error", err))
		return nil, err
	}

	return records, nil
}

func (s *QuoteService) pricingOperation(name string) Operation[domain.QuoteRequest, domain.ValidatedQuote, domain.QuoteRecord, domain.QuoteRecord] {
	return Operation[domain.QuoteRequest, domain.ValidatedQuote, domain.QuoteRecord, domain.QuoteRecord]{
		Name:     name,
		Validate: s.validate,
		Perform:  s.price,
		Verify:   verifyPricing,
		Respond: func(_ context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
			return rec, nil
		},
	}
}

func (s *QuoteService) validate(_ context.Context, req domain.QuoteRequest) (domain.ValidatedQuote, error) {
	q, err := domain.ValidateQuote(req)
	if err != nil && s.metrics != nil {
		s.metrics.ValidationFailures.Inc()
	}

	return q, err
}

// price computes the premium from the declared sex, then resolves the sex
// code to store.
func (s *QuoteService) price(ctx context.Context, q domain.ValidatedQuote) (domain.QuoteRecord, error) {
	pricing := domain.CalculatePricing(q)

	sex := q.Sex()
	if s.flags == nil || !s.flags.IsEnabled(ctx, ports.FlagPreferDeclaredSex, false) {
		sex = s.resolver.Resolve(ctx, q.Name())
	}

	if sex != q.Sex() {
		logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "declared sex overridden",
			slog.String("declared", string(q.Sex())),
			slog.String("resolved", string(sex)),
		)
	}

	return domain.NewQuoteRecord(q, pricing, sex), nil
}

func verifyPricing(_ context.Context, q domain.ValidatedQuote, rec domain.QuoteRecord) error {
	switch {
	case !rec.Sex.Valid():
		return fmt.Errorf("%w: sex %q", errInvalidPricing, rec.Sex)
	case rec.DurationDays <= 0:
		return fmt.Errorf("%w: duration %d days", errInvalidPricing, rec.DurationDays)
	case !rec.Pricing.Finite() || rec.AdjustedRate <= 0 || rec.Premium < 0:
		return fmt.Errorf("%w: rate %v premium %v", errInvalidPricing, rec.AdjustedRate, rec.Premium)
	case rec.CPF != q.CPF():
		return fmt.Errorf("%w: cpf mismatch", errInvalidPricing)
	}

	return nil
}

func (s *QuoteService) archive(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	stored, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return domain.QuoteRecord{}, err
	}

	if stored.ID <= 0 {
		return domain.QuoteRecord{}, errRecordNotSaved
	}

	return stored, nil
}

// announce counts the stored quote and publishes its event. Publishing is
// best effort and never fails the request.
func (s *QuoteService) announce(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	if s.metrics != nil {
		s.metrics.QuotesCreated.Inc()
	}

	result := publishSkipped
	if s.publisher != nil {
		result = publishOK
		if err := s.publisher.Publish(ctx, QuoteCreated{Record: rec}); err != nil {
			result = publishFailed
			s.logger.WarnContext(ctx, "failed to publish quote event",
				slog.Int64("quote_id", rec.ID),
				slog.Any("error", err),
			)
		}
	}

	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(result).Inc()
	}

	s.logger.InfoContext(ctx, "quote created",
		slog.Int64("quote_id", rec.ID),
		slog.Float64("premio", rec.Premium),
	)

	return rec, nil
}
