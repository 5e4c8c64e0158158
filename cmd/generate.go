package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/formshift/internal/analyzer"
	"github.com/formshift/internal/config"
	"github.com/formshift/internal/generator"
	"github.com/formshift/internal/llm"
	"github.com/formshift/internal/logging"
	"github.com/formshift/internal/prompts"
	"github.com/formshift/internal/retry"
	"github.com/formshift/pkg/models"
)

// GenerateCommand returns the generate command
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Convert an Oracle Forms source block to the target platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Name of the unit being converted",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Unit kind: trigger, program-unit, validation, or process",
				Value:   "trigger",
			},
			&cli.StringFlag{
				Name:    "ai",
				Aliases: []string{"a"},
				Usage:   "Override the AI provider to use",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the generated artifact to `FILE` instead of stdout",
			},
			&cli.StringSliceFlag{
				Name:  "table",
				Usage: "Table the unit touches (repeatable)",
			},
			&cli.StringFlag{
				Name:  "purpose",
				Usage: "One-line description of the screen's purpose",
			},
			&cli.StringSliceFlag{
				Name:  "rule",
				Usage: "Business rule the unit enforces (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print every progress transition",
			},
		},
		ArgsUsage: "SOURCE_FILE",
		Action:    runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: source file")
	}

	sourcePath := c.Args().Get(0)
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	unitName := c.String("name")
	if unitName == "" {
		unitName = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}

	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}

	verbose := c.Bool("verbose")
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	connector, err := createConnector(ctx, aiName, cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI connector: %w", err)
	}

	genLogger, err := logging.StartGenerationLogging(unitName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not start generation log: %v\n", err)
	} else {
		defer genLogger.Close()
	}

	retryConfig := retry.DefaultConfig()
	if attempts := cfg.Generation.MaxAttempts; attempts > 0 {
		retryConfig.MaxAttempts = attempts
	}

	var limiter *rate.Limiter
	if rpm := cfg.Generation.RequestsPerMin; rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(rpm/60.0), 1)
	}

	client := llm.NewResilientClient(connector, retryConfig, limiter)

	orch := generator.New(client)
	orch.Analyzer = analyzer.NewWithLimits(cfg.Generation.SingleMaxLines, cfg.Generation.ChunkedMaxLines, cfg.Generation.TargetLines)
	orch.Builder = prompts.NewBuilderForTarget(cfg.General.Target)

	result := orch.Generate(ctx, generator.Request{
		UnitName: unitName,
		Kind:     kind,
		Source:   string(source),
		Knowledge: models.KnowledgeContext{
			Tables:        c.StringSlice("table"),
			ScreenPurpose: c.String("purpose"),
			BusinessRules: c.StringSlice("rule"),
		},
		OnProgress: func(p models.GenerationProgress) {
			printProgress(p, verbose)
		},
	})

	if !result.Success {
		if result.PartialArtifact != "" {
			fmt.Println("\n=== Partial Artifact ===")
			fmt.Println(result.PartialArtifact)
		}
		return fmt.Errorf("generation failed (%s after %d attempts): %s",
			result.Error.Kind, result.Error.Attempts, result.Error.Message)
	}

	fmt.Printf("Converted %s in %s\n", unitName, result.Elapsed.Round(time.Millisecond))

	if result.Explanation != nil {
		printExplanation(result.Explanation)
	}

	if outputPath := c.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Artifact), 0644); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
		fmt.Printf("Wrote artifact to %s\n", outputPath)
		return nil
	}

	fmt.Println("\n=== Generated Artifact ===")
	fmt.Println(result.Artifact)
	return nil
}

func parseKind(s string) (models.UnitKind, error) {
	switch models.UnitKind(s) {
	case models.UnitKindTrigger, models.UnitKindProgramUnit, models.UnitKindValidation, models.UnitKindProcess:
		return models.UnitKind(s), nil
	default:
		return "", fmt.Errorf("unknown unit kind %q (expected trigger, program-unit, validation, or process)", s)
	}
}

func createConnector(ctx context.Context, aiName string, cfg *config.Config) (*llm.Connector, error) {
	provider, err := providerFor(aiName)
	if err != nil {
		return nil, err
	}

	return llm.NewConnector(ctx, llm.ConnectorOptions{
		Provider: provider,
		APIKey:   cfg.AIString(aiName, "api_key", ""),
		BaseURL:  cfg.AIString(aiName, "base_url", ""),
		ModelConfig: llm.ModelConfig{
			Model:       cfg.AIString(aiName, "model", defaultModelFor(provider)),
			Temperature: cfg.AIFloat(aiName, "temperature", 0.2),
			TopP:        cfg.AIFloat(aiName, "top_p", 0),
			MaxTokens:   int(cfg.AIFloat(aiName, "max_tokens", 0)),
		},
	})
}

func providerFor(aiName string) (llm.Provider, error) {
	switch aiName {
	case "openai":
		return llm.ProviderOpenAI, nil
	case "gemini":
		return llm.ProviderGemini, nil
	case "claude":
		return llm.ProviderClaude, nil
	case "ollama":
		return llm.ProviderOllama, nil
	default:
		return "", fmt.Errorf("unsupported AI provider: %s", aiName)
	}
}

func defaultModelFor(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "gpt-4o"
	case llm.ProviderGemini:
		return "gemini-2.5-flash"
	case llm.ProviderClaude:
		return "claude-sonnet-4-0"
	case llm.ProviderOllama:
		return "llama3"
	}
	return ""
}

func printProgress(p models.GenerationProgress, verbose bool) {
	switch p.Status {
	case models.StatusGenerating:
		if p.TotalUnits > 1 {
			fmt.Printf("[%s] chunk %d/%d: %s\n", p.Status, p.CurrentUnit, p.TotalUnits, p.Message)
		} else if verbose {
			fmt.Printf("[%s] %s\n", p.Status, p.Message)
		}
	case models.StatusError:
		fmt.Fprintf(os.Stderr, "[%s] %s\n", p.Status, p.Message)
	default:
		if verbose {
			fmt.Printf("[%s] %s\n", p.Status, p.Message)
		}
	}
}

func printExplanation(e *models.Explanation) {
	fmt.Println("\n=== Explanation ===")
	fmt.Println(e.Summary)
	if e.Purpose != "" {
		fmt.Printf("\nPurpose: %s\n", e.Purpose)
	}
	for i, step := range e.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	if len(e.Tables) > 0 {
		fmt.Printf("Tables: %s\n", strings.Join(e.Tables, ", "))
	}
	for _, note := range e.TargetNotes {
		fmt.Printf("Note: %s\n", note)
	}
}
