package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/formshift/internal/logging"
	"github.com/formshift/internal/retry"
)

// ResilientClient wraps a Client with retry logic and a per-credential
// rate limiter. Both the single-shot and the per-chunk generation paths
// go through this wrapper; neither duplicates the policy.
type ResilientClient struct {
	client      Client
	retryConfig retry.Config
	limiter     *rate.Limiter
	logger      *logging.GenerationLogger
}

// NewResilientClient creates a resilient wrapper around a client. A nil
// limiter disables client-side rate limiting.
func NewResilientClient(client Client, config retry.Config, limiter *rate.Limiter) *ResilientClient {
	return &ResilientClient{
		client:      client,
		retryConfig: config,
		limiter:     limiter,
		logger:      logging.GetCurrentLogger(),
	}
}

// NewResilientClientWithDefaults creates a resilient client with the
// default retry policy and no rate limiter.
func NewResilientClientWithDefaults(client Client) *ResilientClient {
	return NewResilientClient(client, retry.DefaultConfig(), nil)
}

// GenerateWithRetry performs the remote call with sequential attempts
// and exponential backoff. Credential and payload-size errors abort
// immediately. onProgress, if non-nil, receives a human-readable message
// for every backoff wait.
func (rc *ResilientClient) GenerateWithRetry(ctx context.Context, prompt, systemPrompt string, onProgress func(message string)) CallResult {
	var text string

	result := retry.Do(ctx, rc.retryConfig, func() error {
		if rc.limiter != nil {
			if err := rc.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		attemptStart := time.Now()
		response, err := rc.client.Generate(ctx, prompt, systemPrompt)
		if err != nil {
			if rc.logger != nil {
				rc.logger.LogError("remote generation call", err)
			}
			return err
		}

		if rc.logger != nil {
			rc.logger.Log("Remote call succeeded in %v (%d bytes)",
				time.Since(attemptStart).Round(time.Millisecond), len(response))
		}

		text = response
		return nil
	}, func(attempt int, delay time.Duration, err error) {
		message := fmt.Sprintf("attempt %d failed (%v), retrying in %s", attempt, err, delay)
		if rc.logger != nil {
			rc.logger.Log("%s", message)
		}
		if onProgress != nil {
			onProgress(message)
		}
	})

	call := CallResult{
		Success:  result.Success,
		Text:     text,
		Attempts: result.Attempts,
	}

	if !result.Success {
		call.ErrKind = ClassifyError(result.LastError)
		if result.Fatal {
			call.Err = result.LastError
		} else {
			call.Err = fmt.Errorf("generation failed after %d attempts: %w", result.Attempts, result.LastError)
		}
	}

	return call
}
