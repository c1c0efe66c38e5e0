package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State of a breaker guarding one upstream provider
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// ErrOpen is returned while the breaker rejects calls
var ErrOpen = errors.New("circuit breaker is open")

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Config holds circuit breaker configuration
type Config struct {
	FailureThreshold int           // consecutive failures that open the breaker
	SuccessThreshold int           // half-open successes needed to close it
	Timeout          time.Duration // how long the breaker stays open before a trial call
}

// DefaultConfig returns the breaker used for TTS and LLM providers. A provider that
// fails five turns in a row is skipped for 30s so the fallback answers immediately.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// Stats is a point-in-time view of a breaker
type Stats struct {
	State     State
	Failures  int
	Successes int
	OpenedAt  time.Time
}

// CircuitBreaker stops calling a provider after repeated failures
type CircuitBreaker struct {
	mu        sync.Mutex
	config    Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
	onChange  func(from, to State)
}

func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// OnStateChange registers fn to run after every state transition. fn is
// called without the breaker's lock held.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onChange = fn
}

// Execute runs fn unless the breaker is open. A context that is already done
// returns its error without calling fn. A call abandoned because the caller
// cancelled (the caller hung up) is not counted against the provider; a
// deadline is.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cb.allow() {
		return ErrOpen
	}

	err := fn()
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return err
	}
	cb.record(err == nil)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	from := cb.state
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.Timeout {
		cb.state = StateHalfOpen
		cb.successes = 0
	}
	to := cb.state
	notify := cb.onChange
	cb.mu.Unlock()

	if notify != nil && from != to {
		notify(from, to)
	}
	return to != StateOpen
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	from := cb.state
	if success {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.state = StateClosed
			}
		}
	} else {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.state = StateOpen
			cb.openedAt = cb.now()
			cb.successes = 0
		}
	}
	to := cb.state
	notify := cb.onChange
	cb.mu.Unlock()

	if notify != nil && from != to {
		notify(from, to)
	}
}

// State returns the current state without advancing an expired open breaker
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{
		State:     cb.state,
		Failures:  cb.failures,
		Successes: cb.successes,
		OpenedAt:  cb.openedAt,
	}
}
