package clients

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
)

// fakeClock is a settable time source for breaker tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestBreaker(t *testing.T, cfg config.CircuitBreakerConfig) (*CircuitBreaker, *fakeClock, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("genderize", cfg, logger)
	cb.now = clock.Now

	return cb, clock, &logs
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		MaxFailures:   3,
		Timeout:       30 * time.Second,
		HalfOpenLimit: 2,
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestNewCircuitBreaker_ClampsLimits(t *testing.T) {
	cb := NewCircuitBreaker("genderize", config.CircuitBreakerConfig{}, nil)

	assert.Equal(t, 1, cb.cfg.MaxFailures)
	assert.Equal(t, 1, cb.cfg.HalfOpenLimit)
	assert.Equal(t, StateClosed, cb.State())

	// A single failure is enough with the clamped limit.
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(t, breakerConfig())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	ok, wait := cb.Allow()
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, wait)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _, _ := newTestBreaker(t, breakerConfig())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ReportsRemainingOpenTime(t *testing.T) {
	cb, clock, _ := newTestBreaker(t, breakerConfig())
	for range 3 {
		cb.RecordFailure()
	}

	clock.Advance(20 * time.Second)

	ok, wait := cb.Allow()
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, wait)
}

func TestCircuitBreaker_HalfOpenProbes(t *testing.T) {
	cb, clock, _ := newTestBreaker(t, breakerConfig())
	for range 3 {
		cb.RecordFailure()
	}

	clock.Advance(30 * time.Second)

	ok, _ := cb.Allow()
	require.True(t, ok)
	assert.Equal(t, StateHalfOpen, cb.State())

	ok, _ = cb.Allow()
	require.True(t, ok, "second probe fits the half-open limit")

	ok, wait := cb.Allow()
	assert.False(t, ok, "probe limit reached")
	assert.Zero(t, wait)

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())

	ok, _ = cb.Allow()
	assert.True(t, ok)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock, _ := newTestBreaker(t, breakerConfig())
	for range 3 {
		cb.RecordFailure()
	}

	clock.Advance(31 * time.Second)

	ok, _ := cb.Allow()
	require.True(t, ok)

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	ok, wait := cb.Allow()
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, wait)
}

func TestCircuitBreaker_Hold(t *testing.T) {
	t.Run("opens a closed breaker", func(t *testing.T) {
		cb, clock, _ := newTestBreaker(t, breakerConfig())

		cb.Hold(time.Hour)
		assert.Equal(t, StateOpen, cb.State())

		clock.Advance(59 * time.Minute)
		ok, wait := cb.Allow()
		assert.False(t, ok)
		assert.Equal(t, time.Minute, wait)

		clock.Advance(time.Minute)
		ok, _ = cb.Allow()
		assert.True(t, ok)
	})

	t.Run("extends a shorter open period", func(t *testing.T) {
		cb, _, _ := newTestBreaker(t, breakerConfig())
		for range 3 {
			cb.RecordFailure()
		}

		cb.Hold(2 * time.Minute)

		_, wait := cb.Allow()
		assert.Equal(t, 2*time.Minute, wait)
	})

	t.Run("never shortens a longer open period", func(t *testing.T) {
		cb, _, _ := newTestBreaker(t, breakerConfig())

		cb.Hold(time.Hour)
		cb.Hold(time.Second)

		_, wait := cb.Allow()
		assert.Equal(t, time.Hour, wait)
	})

	t.Run("reopens a half-open breaker", func(t *testing.T) {
		cb, clock, _ := newTestBreaker(t, breakerConfig())
		for range 3 {
			cb.RecordFailure()
		}

		clock.Advance(30 * time.Second)
		ok, _ := cb.Allow()
		require.True(t, ok)

		cb.Hold(5 * time.Second)
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestCircuitBreaker_LogsTransitions(t *testing.T) {
	cb, clock, logs := newTestBreaker(t, breakerConfig())
	for range 3 {
		cb.RecordFailure()
	}

	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), `"downstream":"genderize"`)
	assert.Contains(t, logs.String(), `"from":"closed"`)
	assert.Contains(t, logs.String(), `"to":"open"`)

	logs.Reset()
	clock.Advance(30 * time.Second)
	cb.Allow()

	assert.Contains(t, logs.String(), `"level":"INFO"`)
	assert.Contains(t, logs.String(), `"to":"half-open"`)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb, _, _ := newTestBreaker(t, config.CircuitBreakerConfig{
		MaxFailures:   1000,
		Timeout:       time.Second,
		HalfOpenLimit: 1,
	})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := cb.Allow(); !ok {
				return
			}
			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, StateClosed, cb.State())
}
