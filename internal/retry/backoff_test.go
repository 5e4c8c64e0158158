package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSleeper records requested delays without waiting.
type fakeSleeper struct {
	delays []time.Duration
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("Expected MaxAttempts=3, got %d", cfg.MaxAttempts)
	}
	if cfg.BaseDelay != 2*time.Second {
		t.Errorf("Expected BaseDelay=2s, got %v", cfg.BaseDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %f", cfg.Multiplier)
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	sleeper := &fakeSleeper{}
	cfg := DefaultConfig()
	cfg.Sleep = sleeper.sleep

	result := Do(context.Background(), cfg, func() error { return nil }, nil)

	if !result.Success {
		t.Error("Expected success=true")
	}
	if result.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", result.Attempts)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("Expected no backoff delays, got %v", sleeper.delays)
	}
}

func TestDo_FailTwiceThenSucceed(t *testing.T) {
	sleeper := &fakeSleeper{}
	cfg := DefaultConfig()
	cfg.Sleep = sleeper.sleep

	attempts := 0
	result := Do(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("rate limit exceeded (429)")
		}
		return nil
	}, nil)

	if !result.Success {
		t.Errorf("Expected success, got error %v", result.LastError)
	}
	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}

	// Two backoff waits, 2^attempt seconds each, strictly increasing.
	if len(sleeper.delays) != 2 {
		t.Fatalf("Expected 2 delays, got %v", sleeper.delays)
	}
	if sleeper.delays[0] != 2*time.Second || sleeper.delays[1] != 4*time.Second {
		t.Errorf("Expected delays [2s 4s], got %v", sleeper.delays)
	}
}

func TestDo_FatalCredentialErrorStopsImmediately(t *testing.T) {
	sleeper := &fakeSleeper{}
	cfg := DefaultConfig()
	cfg.Sleep = sleeper.sleep

	calls := 0
	result := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("API key not valid. Please pass a valid API key.")
	}, nil)

	if result.Success {
		t.Error("Expected failure")
	}
	if !result.Fatal {
		t.Error("Expected fatal classification")
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt for a credential error, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("Expected no backoff for fatal error, got %v", sleeper.delays)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	sleeper := &fakeSleeper{}
	cfg := DefaultConfig()
	cfg.Sleep = sleeper.sleep

	lastErr := errors.New("service unavailable")
	result := Do(context.Background(), cfg, func() error { return lastErr }, nil)

	if result.Success || result.Fatal {
		t.Errorf("Expected transient exhaustion, got success=%v fatal=%v", result.Success, result.Fatal)
	}
	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}
	if !errors.Is(result.LastError, lastErr) {
		t.Errorf("Expected last error preserved, got %v", result.LastError)
	}
	if len(result.RetryReasons) != 3 {
		t.Errorf("Expected 3 retry reasons, got %d", len(result.RetryReasons))
	}
}

func TestDo_OnWaitReportsProgress(t *testing.T) {
	sleeper := &fakeSleeper{}
	cfg := DefaultConfig()
	cfg.Sleep = sleeper.sleep

	var waits []int
	result := Do(context.Background(), cfg, func() error {
		return errors.New("timeout")
	}, func(attempt int, delay time.Duration, err error) {
		waits = append(waits, attempt)
	})

	if result.Success {
		t.Error("Expected failure")
	}
	if len(waits) != 2 {
		t.Fatalf("Expected onWait for attempts 1 and 2, got %v", waits)
	}
	if waits[0] != 1 || waits[1] != 2 {
		t.Errorf("Expected waits [1 2], got %v", waits)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result := Do(ctx, cfg, func() error { return errors.New("timeout") }, nil)

	if result.Success {
		t.Error("Expected failure")
	}
	if !errors.Is(result.LastError, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", result.LastError)
	}
}

func TestIsFatalError(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{nil, false},
		{errors.New("API key not valid"), true},
		{errors.New("401 Unauthorized"), true},
		{errors.New("request entity too large"), true},
		{errors.New("input too long for model"), true},
		{errors.New("429 too many requests"), false},
		{errors.New("rate limit exceeded"), false},
		{errors.New("connection refused"), false},
		{errors.New("503 service unavailable"), false},
	}

	for _, tc := range cases {
		if got := IsFatalError(tc.err); got != tc.fatal {
			t.Errorf("IsFatalError(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
