package clients

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
)

// State is the position of a circuit breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the open period ends.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calls to a downstream service after repeated failures.
//
//	closed    -> open       MaxFailures consecutive failures, or Hold
//	open      -> half-open  first Allow after the open period
//	half-open -> closed     HalfOpenLimit consecutive successes
//	half-open -> open       any failure
type CircuitBreaker struct {
	mu      sync.Mutex
	cfg     config.CircuitBreakerConfig
	service string
	logger  *slog.Logger
	now     func() time.Time

	state     State
	failures  int
	successes int
	inFlight  int
	openUntil time.Time
}

// NewCircuitBreaker creates a closed breaker for service.
func NewCircuitBreaker(service string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CircuitBreaker{
		cfg:     cfg,
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow reports whether a call may proceed. A rejected call also gets the
// time left before the breaker admits a probe; zero means probes are
// already in flight.
func (cb *CircuitBreaker) Allow() (bool, time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		now := cb.now()
		if now.Before(cb.openUntil) {
			return false, cb.openUntil.Sub(now)
		}

		cb.transition(StateHalfOpen)
		cb.inFlight = 1

		return true, 0

	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.HalfOpenLimit {
			return false, 0
		}

		cb.inFlight++

		return true, 0

	default:
		return true, 0
	}
}

// RecordSuccess records a call that reached the service and got an answer.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.inFlight--
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.transition(StateClosed)
		}
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.openFor(cb.cfg.Timeout)
		}

	case StateHalfOpen:
		cb.openFor(cb.cfg.Timeout)
	}
}

// Hold opens the breaker for at least d whatever its state. It is used when
// the service itself asks callers to back off.
func (cb *CircuitBreaker) Hold(d time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	until := cb.now().Add(d)
	if cb.state == StateOpen && cb.openUntil.After(until) {
		return
	}

	cb.openUntil = until
	cb.transition(StateOpen)
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// openFor must be called with the lock held.
func (cb *CircuitBreaker) openFor(d time.Duration) {
	cb.openUntil = cb.now().Add(d)
	cb.transition(StateOpen)
}

// transition must be called with the lock held.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.inFlight = 0

	level := slog.LevelInfo
	if to == StateOpen {
		level = slog.LevelWarn
	}

	cb.logger.Log(context.Background(), level, "circuit breaker state changed",
		slog.String("downstream", cb.service),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Time("open_until", cb.openUntil),
	)
}
