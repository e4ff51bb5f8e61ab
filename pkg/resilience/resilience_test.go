package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: 20 * time.Millisecond})
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return boom })
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Execute while open = %v, want ErrCircuitOpen", err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := NewCircuitBreaker("redis-cache", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return now }
	boom := errors.New("boom")

	_ = cb.Execute(func() error { return boom })
	now = now.Add(time.Minute)
	_ = cb.Execute(func() error { return boom })
	now = now.Add(time.Minute)
	_ = cb.Execute(func() error { return nil })

	want := []string{"closed->open", "open->half-open", "half-open->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreaker("redis-cache", CircuitBreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(func() error { return context.Canceled })
	if cb.State() != StateClosed {
		t.Errorf("state = %v after a cancelled call, want closed", cb.State())
	}
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := Retry(context.Background(), "flaky", cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d", err, calls)
	}

	calls = 0
	fatal := errors.New("fatal")
	err = Retry(context.Background(), "permanent", cfg, func(context.Context) error {
		calls++
		return Permanent(fatal)
	})
	if err != fatal || calls != 1 {
		t.Errorf("err=%v calls=%d, want fatal after one call", err, calls)
	}

	calls = 0
	err = Retry(context.Background(), "exhausted", cfg, func(context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) || calls != 3 {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "cancelled", RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err=%v calls=%d, want context.Canceled after one call", err, calls)
	}
}

func TestBackoffCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second}.withDefaults()
	if d := cfg.backoff(10); d != 3*time.Second {
		t.Errorf("backoff(10) = %v, want the 3s cap", d)
	}
	if d := cfg.backoff(1); d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("backoff(1) = %v, want 1s ±10%%", d)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if err := WithTimeout(context.Background(), 0, "unbounded", func(context.Context) error { return nil }); err != nil {
		t.Errorf("err = %v", err)
	}
}
