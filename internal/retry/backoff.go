package retry

import (
	"context"
	"math"
	"strings"
	"time"
)

// Sleeper waits for the given duration or until the context is done.
// Tests inject a fake to observe delays without real waiting.
type Sleeper func(ctx context.Context, d time.Duration) error

// RealSleeper is the production Sleeper.
func RealSleeper(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Config configures retry behavior with exponential backoff.
type Config struct {
	MaxAttempts int           `json:"max_attempts"` // Total attempts including the first (default: 3)
	BaseDelay   time.Duration `json:"base_delay"`   // Delay after the first failed attempt (default: 2s)
	Multiplier  float64       `json:"multiplier"`   // Exponential backoff multiplier (default: 2.0)
	Sleep       Sleeper       `json:"-"`            // Wait implementation; nil means RealSleeper
}

// DefaultConfig returns the retry policy used for generation calls:
// three attempts with 2^attempt-second waits between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
	}
}

// Result describes how a retried operation ended.
type Result struct {
	Attempts      int           `json:"attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	LastError     error         `json:"-"`
	Success       bool          `json:"success"`
	Fatal         bool          `json:"fatal"` // Aborted on a non-retryable error
	RetryReasons  []string      `json:"retry_reasons"`
}

// Do executes the operation with sequential attempts and exponential
// backoff. Non-retryable errors (invalid credential, payload too large)
// abort immediately: retrying them cannot succeed. onWait, if non-nil,
// is invoked before each backoff delay so callers can surface progress.
func Do(ctx context.Context, cfg Config, operation func() error, onWait func(attempt int, delay time.Duration, err error)) Result {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig().BaseDelay
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = DefaultConfig().Multiplier
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = RealSleeper
	}

	startTime := time.Now()
	result := Result{RetryReasons: make([]string, 0)}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result.Attempts = attempt

		err := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(startTime)
			return result
		}

		result.LastError = err
		result.RetryReasons = append(result.RetryReasons, err.Error())

		if IsFatalError(err) {
			result.Fatal = true
			result.TotalDuration = time.Since(startTime)
			return result
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		delay := calculateDelay(cfg, attempt)
		if onWait != nil {
			onWait(attempt, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			result.LastError = serr
			result.TotalDuration = time.Since(startTime)
			return result
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateDelay returns baseDelay * multiplier^(attempt-1), which with
// the default 2s/2.0 policy is 2^attempt seconds for 1-based attempts.
func calculateDelay(cfg Config, attempt int) time.Duration {
	return time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
}

// fatalErrors are substrings of provider errors that no retry can fix:
// the credential is bad or the payload exceeds the provider's limit.
var fatalErrors = []string{
	"api key not valid",
	"api key expired",
	"invalid api key",
	"invalid credential",
	"missing credential",
	"invalid authentication",
	"incorrect api key",
	"permission denied",
	"unauthorized",
	"401",
	"403",
	"payload too large",
	"request entity too large",
	"413",
	"exceeds the maximum",
	"maximum context length",
	"token limit exceeded",
	"input too long",
}

// IsFatalError reports whether an error is non-retryable. Everything
// else, rate limiting included, is considered transient.
func IsFatalError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, fatal := range fatalErrors {
		if strings.Contains(errStr, fatal) {
			return true
		}
	}
	return false
}
