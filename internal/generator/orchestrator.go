package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formshift/internal/analyzer"
	"github.com/formshift/internal/assembler"
	"github.com/formshift/internal/llm"
	"github.com/formshift/internal/logging"
	"github.com/formshift/internal/parser"
	"github.com/formshift/internal/prompts"
	"github.com/formshift/pkg/models"
)

// Client is the retried remote-call boundary the orchestrator drives.
type Client interface {
	GenerateWithRetry(ctx context.Context, prompt, systemPrompt string, onProgress func(message string)) llm.CallResult
}

// Request describes one generation invocation. OnProgress, if non-nil,
// is called synchronously on every state transition.
type Request struct {
	UnitName   string
	Kind       models.UnitKind
	Source     string
	Knowledge  models.KnowledgeContext
	OnProgress func(models.GenerationProgress)
}

// Orchestrator coordinates size analysis, chunking, sequential remote
// calls, response parsing, and reassembly for one unit at a time. Each
// invocation owns its own state; orchestrators are safe to share across
// concurrent invocations.
type Orchestrator struct {
	Analyzer *analyzer.Analyzer
	Builder  *prompts.Builder

	client Client
}

// New creates an orchestrator with default analysis thresholds and
// prompt target.
func New(client Client) *Orchestrator {
	return &Orchestrator{
		Analyzer: analyzer.New(),
		Builder:  prompts.NewBuilder(),
		client:   client,
	}
}

// Generate runs the full pipeline for one source block and returns the
// final result. Remote failures never escape as errors: they surface in
// the result, with whatever the assembler could build from completed
// chunks attached as the partial artifact.
func (o *Orchestrator) Generate(ctx context.Context, req Request) models.GenerationResult {
	startTime := time.Now()
	generationID := uuid.New().String()[:8]
	logger := logging.GetCurrentLogger()

	emit := func(p models.GenerationProgress) {
		p.GenerationID = generationID
		if req.OnProgress != nil {
			req.OnProgress(p)
		}
	}

	emit(models.GenerationProgress{
		Status:  models.StatusAnalyzing,
		Message: fmt.Sprintf("analyzing %s", req.UnitName),
	})

	analysis := o.Analyzer.Analyze(req.Source)
	logger.Log("Unit %s: strategy=%s lines=%d est_tokens=%d chunks=%d",
		req.UnitName, analysis.Strategy, analysis.LineCount, analysis.EstimatedTokens, len(analysis.Chunks))

	if analysis.Strategy == models.StrategySingle {
		return o.generateSingle(ctx, req, emit, startTime)
	}
	return o.generateChunked(ctx, req, analysis.Chunks, emit, startTime)
}

// generateSingle handles blocks small enough for one remote call. The
// assembling state is skipped: the artifact is the banner plus the
// parsed code.
func (o *Orchestrator) generateSingle(ctx context.Context, req Request, emit func(models.GenerationProgress), startTime time.Time) models.GenerationResult {
	logger := logging.GetCurrentLogger()

	emit(models.GenerationProgress{
		Status:      models.StatusGenerating,
		CurrentUnit: 1,
		TotalUnits:  1,
		Message:     fmt.Sprintf("converting %s", req.UnitName),
	})

	prompt := o.Builder.BuildSingle(req.UnitName, req.Kind, req.Source, req.Knowledge)
	logger.LogRequest(req.UnitName, prompt)

	call := o.client.GenerateWithRetry(ctx, prompt, prompts.SystemPrompt, func(message string) {
		emit(models.GenerationProgress{
			Status:      models.StatusGenerating,
			CurrentUnit: 1,
			TotalUnits:  1,
			Message:     message,
		})
	})

	if !call.Success {
		return o.fail(req, emit, startTime, call, 1, 1, nil, "")
	}

	logger.LogResponse(req.UnitName, call.Text)
	parsed := parser.Parse(call.Text)
	artifact := assembler.Banner(req.UnitName) + "\n" + parsed.Code + "\n"

	emit(models.GenerationProgress{
		Status:      models.StatusComplete,
		CurrentUnit: 1,
		TotalUnits:  1,
		Message:     fmt.Sprintf("%s converted", req.UnitName),
	})

	return models.GenerationResult{
		Success:     true,
		Artifact:    artifact,
		Explanation: parsed.Explanation,
		Elapsed:     time.Since(startTime),
	}
}

// generateChunked converts each chunk sequentially, then reassembles.
// Chunks are never processed in parallel: the provider enforces
// per-credential rate limits and reassembly needs deterministic
// completion order.
func (o *Orchestrator) generateChunked(ctx context.Context, req Request, chunks []models.Chunk, emit func(models.GenerationProgress), startTime time.Time) models.GenerationResult {
	logger := logging.GetCurrentLogger()
	totalUnits := len(chunks)

	var (
		completed   []models.ChunkResult
		explanation *models.Explanation
	)

	for i, chunk := range chunks {
		currentUnit := i + 1
		label := fmt.Sprintf("%s chunk %d/%d", req.UnitName, currentUnit, totalUnits)

		emit(models.GenerationProgress{
			Status:      models.StatusGenerating,
			CurrentUnit: currentUnit,
			TotalUnits:  totalUnits,
			Message:     fmt.Sprintf("converting chunk %d/%d (%s)", currentUnit, totalUnits, chunk.Type),
		})

		prompt := o.Builder.BuildChunk(chunk.Code, chunk.Type, req.UnitName, req.Knowledge, i, totalUnits)
		logger.LogRequest(label, prompt)

		call := o.client.GenerateWithRetry(ctx, prompt, prompts.SystemPrompt, func(message string) {
			emit(models.GenerationProgress{
				Status:      models.StatusGenerating,
				CurrentUnit: currentUnit,
				TotalUnits:  totalUnits,
				Message:     message,
			})
		})

		if !call.Success {
			partial := ""
			if len(completed) > 0 {
				partial = assembler.Assemble(completed, req.UnitName)
			}
			return o.fail(req, emit, startTime, call, currentUnit, totalUnits, completed, partial)
		}

		logger.LogResponse(label, call.Text)
		parsed := parser.Parse(call.Text)
		completed = append(completed, models.ChunkResult{
			OriginalCode:  chunk.Code,
			GeneratedCode: parsed.Code,
			ChunkType:     chunk.Type,
			Order:         chunk.Order,
		})
		if explanation == nil {
			explanation = parsed.Explanation
		}
	}

	emit(models.GenerationProgress{
		Status:      models.StatusAssembling,
		CurrentUnit: totalUnits,
		TotalUnits:  totalUnits,
		Message:     fmt.Sprintf("assembling %d chunks", totalUnits),
	})

	artifact := assembler.Assemble(completed, req.UnitName)

	emit(models.GenerationProgress{
		Status:      models.StatusComplete,
		CurrentUnit: totalUnits,
		TotalUnits:  totalUnits,
		Message:     fmt.Sprintf("%s converted", req.UnitName),
	})

	return models.GenerationResult{
		Success:      true,
		Artifact:     artifact,
		Explanation:  explanation,
		ChunkResults: completed,
		Elapsed:      time.Since(startTime),
	}
}

// fail emits the error transition and builds the failure result,
// preserving completed chunk output.
func (o *Orchestrator) fail(req Request, emit func(models.GenerationProgress), startTime time.Time, call llm.CallResult, currentUnit, totalUnits int, completed []models.ChunkResult, partial string) models.GenerationResult {
	message := call.Err.Error()
	if totalUnits > 1 {
		message = fmt.Sprintf("chunk %d/%d: %v", currentUnit, totalUnits, call.Err)
	}

	logging.GetCurrentLogger().LogError(fmt.Sprintf("generation of %s", req.UnitName), call.Err)

	emit(models.GenerationProgress{
		Status:          models.StatusError,
		CurrentUnit:     currentUnit,
		TotalUnits:      totalUnits,
		Message:         message,
		PartialArtifact: partial,
	})

	return models.GenerationResult{
		Success:         false,
		ChunkResults:    completed,
		PartialArtifact: partial,
		Error: &models.ErrorDescriptor{
			Kind:     call.ErrKind,
			Message:  message,
			Attempts: call.Attempts,
		},
		Elapsed: time.Since(startTime),
	}
}
