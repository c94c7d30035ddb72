package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/mocks"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

func TestSexResolver_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		setupMocks func(*mocks.MockGenderLookup, *mocks.MockCache)
		want       domain.Sex
		wantSource string
	}{
		{
			name:       "title wins without lookup",
			input:      "Dra. Ana Lima",
			setupMocks: func(*mocks.MockGenderLookup, *mocks.MockCache) {},
			want:       domain.SexFemale,
			wantSource: SourceTitle,
		},
		{
			name:  "cached answer",
			input: "Ana Lima",
			setupMocks: func(_ *mocks.MockGenderLookup, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "sexo:ana lima").Return([]byte("female"), nil)
			},
			want:       domain.SexFemale,
			wantSource: SourceCache,
		},
		{
			name:  "cached unknown falls back without lookup",
			input: "Kim Lee",
			setupMocks: func(_ *mocks.MockGenderLookup, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "sexo:kim lee").Return([]byte("?"), nil)
			},
			want:       domain.SexMale,
			wantSource: SourceFallback,
		},
		{
			name:  "lookup answer is cached",
			input: "Ana Lima",
			setupMocks: func(l *mocks.MockGenderLookup, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "sexo:ana lima").
					Return(nil, domain.NewNotFoundError("cache key", "sexo:ana lima"))
				l.EXPECT().LookupGender(mock.Anything, "Ana Lima").Return(ports.GenderFemale, nil)
				c.EXPECT().Set(mock.Anything, "sexo:ana lima", []byte("female"), time.Hour).Return(nil)
			},
			want:       domain.SexFemale,
			wantSource: SourceLookup,
		},
		{
			name:  "unknown answer is cached and falls back",
			input: "Kim Lee",
			setupMocks: func(l *mocks.MockGenderLookup, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "sexo:kim lee").
					Return(nil, domain.NewNotFoundError("cache key", "sexo:kim lee"))
				l.EXPECT().LookupGender(mock.Anything, "Kim Lee").Return(ports.GenderUnknown, nil)
				c.EXPECT().Set(mock.Anything, "sexo:kim lee", []byte("?"), time.Hour).Return(nil)
			},
			want:       domain.SexMale,
			wantSource: SourceFallback,
		},
		{
			name:  "lookup failure falls back and is not cached",
			input: "Ana Lima",
			setupMocks: func(l *mocks.MockGenderLookup, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "sexo:ana lima").
					Return(nil, domain.NewUnavailableError("redis", "down"))
				l.EXPECT().LookupGender(mock.Anything, "Ana Lima").
					Return(ports.GenderUnknown, domain.NewUnavailableError("genderize", "circuit open"))
			},
			want:       domain.SexMale,
			wantSource: SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := mocks.NewMockGenderLookup(t)
			cache := mocks.NewMockCache(t)
			tt.setupMocks(lookup, cache)

			metrics := NewMetrics(prometheus.NewRegistry())
			r := NewSexResolver(SexResolverConfig{
				Lookup:   lookup,
				Cache:    cache,
				CacheTTL: time.Hour,
				Metrics:  metrics,
				Logger:   discardLogger(),
			})

			assert.Equal(t, tt.want, r.Resolve(context.Background(), tt.input))
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.SexInference.WithLabelValues(tt.wantSource)), 0)
		})
	}
}

func TestSexResolver_LookupIsBoundedByTimeout(t *testing.T) {
	lookup := mocks.NewMockGenderLookup(t)
	lookup.EXPECT().LookupGender(mock.Anything, "Ana Lima").
		RunAndReturn(func(ctx context.Context, _ string) (ports.Gender, error) {
			<-ctx.Done()
			return ports.GenderUnknown, ctx.Err()
		})

	r := NewSexResolver(SexResolverConfig{Lookup: lookup, Timeout: 20 * time.Millisecond, Logger: discardLogger()})

	start := time.Now()
	got := r.Resolve(context.Background(), "Ana Lima")

	assert.Equal(t, domain.SexMale, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSexResolver_WithoutLookup(t *testing.T) {
	r := NewSexResolver(SexResolverConfig{})

	assert.Equal(t, DefaultLookupTimeout, r.timeout)
	assert.Equal(t, domain.SexMale, r.Resolve(context.Background(), "Ana Lima"))
	assert.Equal(t, domain.SexFemale, r.Resolve(context.Background(), "Sra. Ana Lima"))
}
