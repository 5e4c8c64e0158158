package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	General struct {
		DefaultAI string `koanf:"default_ai"`
		Target    string `koanf:"target"`
	} `koanf:"general"`

	AI map[string]map[string]interface{} `koanf:"ai"`

	Generation struct {
		SingleMaxLines  int     `koanf:"single_max_lines"`
		ChunkedMaxLines int     `koanf:"chunked_max_lines"`
		TargetLines     int     `koanf:"target_lines"`
		MaxAttempts     int     `koanf:"max_attempts"`
		RequestsPerMin  float64 `koanf:"requests_per_min"`
	} `koanf:"generation"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"general.default_ai":           "gemini",
		"general.target":               "Oracle APEX",
		"generation.single_max_lines":  150,
		"generation.chunked_max_lines": 400,
		"generation.target_lines":      100,
		"generation.max_attempts":      3,
		"generation.requests_per_min":  30.0,
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{"./formshift.toml", "$HOME/.formshift.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix FORMSHIFT_
	k.Load(env.Provider("FORMSHIFT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(s), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# FormShift Configuration

[general]
default_ai = "gemini"
target = "Oracle APEX"

[ai.gemini]
api_key = "your-gemini-api-key"
model = "gemini-2.5-flash"
temperature = 0.2

[ai.openai]
api_key = "your-openai-api-key"
model = "gpt-4o"

[generation]
single_max_lines = 150
chunked_max_lines = 400
target_lines = 100
max_attempts = 3
requests_per_min = 30.0
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.General.DefaultAI == "" {
		return fmt.Errorf("default AI provider is required")
	}

	aiConfig, ok := config.AI[config.General.DefaultAI]
	if !ok {
		return fmt.Errorf("configuration for AI provider %s not found", config.General.DefaultAI)
	}

	switch config.General.DefaultAI {
	case "gemini", "openai", "claude":
		if _, ok := aiConfig["api_key"]; !ok {
			return fmt.Errorf("%s api_key is required", config.General.DefaultAI)
		}
	case "ollama":
		// Local models need no credentials.
	default:
		return fmt.Errorf("unknown AI provider %s", config.General.DefaultAI)
	}

	if config.Generation.SingleMaxLines >= config.Generation.ChunkedMaxLines {
		return fmt.Errorf("single_max_lines must be below chunked_max_lines")
	}
	if config.Generation.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}

	return nil
}

// AIString returns a string option from the named AI section, or the
// fallback when missing.
func (c *Config) AIString(provider, key, fallback string) string {
	section, ok := c.AI[provider]
	if !ok {
		return fallback
	}
	if v, ok := section[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// AIFloat returns a numeric option from the named AI section, or the
// fallback when missing. TOML decodes numbers as float64 or int64
// depending on the literal.
func (c *Config) AIFloat(provider, key string, fallback float64) float64 {
	section, ok := c.AI[provider]
	if !ok {
		return fallback
	}
	switch v := section[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}
