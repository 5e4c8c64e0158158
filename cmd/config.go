package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/formshift/internal/config"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "formshift.toml",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.InitConfig(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Configuration is valid")
	fmt.Print(summarizeConfig(cfg))
	return nil
}

// summarizeConfig renders the resolved settings so a validate run shows
// what the pipeline will actually use, env overrides included.
func summarizeConfig(cfg *config.Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  AI provider:       %s (model %s)\n",
		cfg.General.DefaultAI,
		cfg.AIString(cfg.General.DefaultAI, "model", "provider default"))
	fmt.Fprintf(&b, "  Target platform:   %s\n", cfg.General.Target)
	fmt.Fprintf(&b, "  Strategy limits:   single <=%d lines, chunked <=%d lines\n",
		cfg.Generation.SingleMaxLines, cfg.Generation.ChunkedMaxLines)
	fmt.Fprintf(&b, "  Chunk target:      %d lines\n", cfg.Generation.TargetLines)
	fmt.Fprintf(&b, "  Retry attempts:    %d\n", cfg.Generation.MaxAttempts)
	fmt.Fprintf(&b, "  Request rate:      %.1f/min\n", cfg.Generation.RequestsPerMin)

	if len(cfg.AI) > 0 {
		names := make([]string, 0, len(cfg.AI))
		for name := range cfg.AI {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "  Configured AIs:    %s\n", strings.Join(names, ", "))
	}

	return b.String()
}
