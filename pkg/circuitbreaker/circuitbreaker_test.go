package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	cb := New(cfg)
	cb.now = clock.now
	return cb, clock
}

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)
	if got := cb.State(); got != StateClosed {
		t.Fatalf("State() = %v after interleaved success, want closed", got)
	}

	_ = cb.Execute(ctx, fail)
	if got := cb.State(); got != StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	calls := 0
	err := cb.Execute(ctx, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("Execute() error = %v, want ErrOpen", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times while open, want 0", calls)
	}
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	tests := []struct {
		name      string
		trial     []func() error
		wantState State
	}{
		{"recovers after enough successes", []func() error{succeed, succeed}, StateClosed},
		{"stays half-open below threshold", []func() error{succeed}, StateHalfOpen},
		{"reopens on a failed trial call", []func() error{succeed, fail}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 30 * time.Second})
			ctx := context.Background()

			_ = cb.Execute(ctx, fail)
			clock.advance(10 * time.Second)
			if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrOpen) {
				t.Fatalf("Execute() before timeout error = %v, want ErrOpen", err)
			}

			clock.advance(30 * time.Second)
			for _, fn := range tt.trial {
				_ = cb.Execute(ctx, fn)
			}
			if got := cb.State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestCircuitBreaker_CallerCancellationIsNotAFailure(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	err := cb.Execute(ctx, func() error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("State() = %v after hang-up, want closed", got)
	}

	if err := cb.Execute(ctx, succeed); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() on done context error = %v, want context.Canceled", err)
	}

	deadline, cancelDeadline := context.WithTimeout(context.Background(), time.Hour)
	defer cancelDeadline()
	_ = cb.Execute(deadline, func() error { return context.DeadlineExceeded })
	if got := cb.State(); got != StateOpen {
		t.Errorf("State() = %v after provider timeout, want open", got)
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Second})

	var transitions []string
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
		_ = cb.Stats()
	})

	ctx := context.Background()
	_ = cb.Execute(ctx, fail)
	clock.advance(time.Second)
	_ = cb.Execute(ctx, succeed)

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
