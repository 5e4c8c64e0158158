package llm

import (
	"context"
	"strings"

	"github.com/formshift/pkg/models"
)

// Client performs one remote generation call. Implementations own the
// credential; the pipeline only sees prompts and raw text.
type Client interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// CallResult is the outcome of a (possibly retried) generation call.
type CallResult struct {
	Success  bool
	Text     string
	Attempts int
	Err      error
	ErrKind  models.ErrorKind
}

// ClassifyError maps a provider error onto the taxonomy the pipeline
// depends on. The matching is substring-based because the providers
// behind langchaingo do not share a structured error type.
func ClassifyError(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorKindUnknown
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case containsAny(errStr, "api key", "credential", "unauthorized", "permission denied", "invalid authentication", "401", "403"):
		return models.ErrorKindCredential
	case containsAny(errStr, "payload too large", "request entity too large", "413", "exceeds the maximum", "maximum context length", "token limit", "input too long"):
		return models.ErrorKindPayloadTooLarge
	case containsAny(errStr, "rate limit", "too many requests", "quota", "429"):
		return models.ErrorKindRateLimited
	case containsAny(errStr, "connection", "timeout", "unavailable", "no such host", "broken pipe", "502", "503", "504"):
		return models.ErrorKindNetwork
	default:
		return models.ErrorKindUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
