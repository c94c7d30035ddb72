package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// DefaultLookupTimeout bounds a single name lookup.
const DefaultLookupTimeout = 3 * time.Second

const sexCachePrefix = "sexo:"

// unknownMarker is cached for names the lookup could not classify.
const unknownMarker = "?"

// SexResolverConfig contains the dependencies of a SexResolver.
type SexResolverConfig struct {
	// Lookup is optional. Without it, names without a title fall back to M.
	Lookup ports.GenderLookup

	// Cache is optional.
	Cache    ports.Cache
	CacheTTL time.Duration

	// Timeout bounds one lookup. Defaults to DefaultLookupTimeout.
	Timeout time.Duration

	Metrics *Metrics
	Logger  *slog.Logger
}

// SexResolver infers the sex code to store for a name.
// Resolution never fails: every path ends in M or F.
type SexResolver struct {
	lookup   ports.GenderLookup
	cache    ports.Cache
	cacheTTL time.Duration
	timeout  time.Duration
	metrics  *Metrics
	logger   *slog.Logger
}

// NewSexResolver creates a resolver.
func NewSexResolver(cfg SexResolverConfig) *SexResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	return &SexResolver{
		lookup:   cfg.Lookup,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		timeout:  timeout,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Resolve returns the sex code for name: a title match first, then the
// cached or live lookup, and M when nothing answers.
func (r *SexResolver) Resolve(ctx context.Context, name string) domain.Sex {
	if sex, ok := domain.SexFromTitle(name); ok {
		r.count(SourceTitle)
		return sex
	}

	if r.lookup == nil {
		r.count(SourceFallback)
		return domain.SexMale
	}

	key := sexCachePrefix + strings.ToLower(name)

	if gender, ok := r.fromCache(ctx, key); ok {
		if sex, ok := sexFromGender(gender); ok {
			r.count(SourceCache)
			return sex
		}

		r.count(SourceFallback)

		return domain.SexMale
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	gender, err := r.lookup.LookupGender(lookupCtx, name)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "gender lookup failed, using fallback",
			slog.Any("error", err),
		)
		r.count(SourceFallback)

		return domain.SexMale
	}

	r.store(ctx, key, gender)

	if sex, ok := sexFromGender(gender); ok {
		r.count(SourceLookup)
		return sex
	}

	r.count(SourceFallback)

	return domain.SexMale
}

func (r *SexResolver) fromCache(ctx context.Context, key string) (ports.Gender, bool) {
	if r.cache == nil {
		return "", false
	}

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !domain.IsNotFound(err) {
			r.logger.DebugContext(ctx, "sex cache read failed", slog.Any("error", err))
		}

		return "", false
	}

	if string(raw) == unknownMarker {
		return ports.GenderUnknown, true
	}

	return ports.Gender(raw), true
}

func (r *SexResolver) store(ctx context.Context, key string, gender ports.Gender) {
	if r.cache == nil {
		return
	}

	value := string(gender)
	if gender == ports.GenderUnknown {
		value = unknownMarker
	}

	if err := r.cache.Set(ctx, key, []byte(value), r.cacheTTL); err != nil {
		r.logger.DebugContext(ctx, "sex cache write failed", slog.Any("error", err))
	}
}

func (r *SexResolver) count(source string) {
	if r.metrics != nil {
		r.metrics.SexInference.WithLabelValues(source).Inc()
	}
}

func sexFromGender(g ports.Gender) (domain.Sex, bool) {
	switch g {
	case ports.GenderMale:
		return domain.SexMale, true
	case ports.GenderFemale:
		return domain.SexFemale, true
	default:
		return "", false
	}
}
