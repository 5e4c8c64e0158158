package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formshift/internal/config"
)

func TestSummarizeConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.General.DefaultAI = "gemini"
	cfg.General.Target = "Oracle APEX"
	cfg.Generation.SingleMaxLines = 150
	cfg.Generation.ChunkedMaxLines = 400
	cfg.Generation.TargetLines = 50
	cfg.Generation.MaxAttempts = 3
	cfg.Generation.RequestsPerMin = 30
	cfg.AI = map[string]map[string]interface{}{
		"gemini": {"api_key": "k", "model": "gemini-2.5-flash"},
		"ollama": {"model": "llama3"},
	}

	summary := summarizeConfig(cfg)

	assert.Contains(t, summary, "gemini (model gemini-2.5-flash)")
	assert.Contains(t, summary, "Oracle APEX")
	assert.Contains(t, summary, "single <=150 lines, chunked <=400 lines")
	assert.Contains(t, summary, "Chunk target:      50 lines")
	assert.Contains(t, summary, "Retry attempts:    3")
	assert.Contains(t, summary, "Request rate:      30.0/min")
	assert.Contains(t, summary, "Configured AIs:    gemini, ollama")
}

func TestSummarizeConfig_MissingModelFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.General.DefaultAI = "openai"
	cfg.AI = map[string]map[string]interface{}{"openai": {"api_key": "k"}}

	summary := summarizeConfig(cfg)

	assert.Contains(t, summary, "openai (model provider default)")
	assert.False(t, strings.Contains(summary, "Configured AIs:    openai,"),
		"single provider should list alone")
}
