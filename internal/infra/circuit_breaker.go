package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CBState is the state of a CircuitBreaker: Closed (calls flow), Open (calls
// fail fast with ErrCircuitOpen) or HalfOpen (a single probe call is let
// through after OpenTimeout; its outcome closes or re-opens the breaker).
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute without calling through.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	SuccessThreshold int           // consecutive probe successes that close it
	OpenTimeout      time.Duration // time spent open before probing
}

// DefaultCBConfig is tuned for an SMTP relay: mail jobs are retried by the
// worker pool, so the breaker trips early and probes every 30s.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: "smtp", FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: 30 * time.Second}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// refresh moves Open to HalfOpen once the timeout elapsed. Caller holds mu.
func (cb *CircuitBreaker) refresh() {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transition(CBHalfOpen)
	}
}

// Execute runs fn unless the breaker is open or a half-open probe is already
// in flight; fn's error is returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn()
	cb.release(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	switch cb.state {
	case CBOpen:
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	wasProbe := cb.state == CBHalfOpen
	if wasProbe {
		cb.probing = false
	}

	if err != nil {
		cb.successes = 0
		cb.failures++
		if wasProbe || cb.failures >= cb.cfg.FailureThreshold {
			cb.openedAt = cb.now()
			cb.transition(CBOpen)
		}
		return
	}

	cb.failures = 0
	if wasProbe {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(CBClosed)
		}
	}
}

// transition logs and applies a state change. Caller holds mu.
func (cb *CircuitBreaker) transition(to CBState) {
	if cb.state == to {
		return
	}
	log.Warn().Str("breaker", cb.cfg.Name).Str("from", cb.state.String()).Str("to", to.String()).Msg("circuit breaker state change")
	cb.state = to
	cb.successes = 0
	if to != CBOpen {
		cb.failures = 0
	}
}
