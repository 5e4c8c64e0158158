package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/formshift/internal/config"
	"github.com/formshift/internal/llm"
)

// CheckCommand returns the check command
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configured AI credential with a minimal remote call",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ai",
				Aliases: []string{"a"},
				Usage:   "Override the AI provider to check",
			},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	aiName := cfg.General.DefaultAI
	if override := c.String("ai"); override != "" {
		aiName = override
	}

	provider, err := providerFor(aiName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Checking %s credential...\n", aiName)

	valid, err := llm.ValidateAPIKey(ctx, provider,
		cfg.AIString(aiName, "api_key", ""),
		cfg.AIString(aiName, "base_url", ""))
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	if !valid {
		return fmt.Errorf("the %s credential was rejected by the provider", aiName)
	}

	fmt.Printf("The %s credential is valid\n", aiName)
	return nil
}
