package analyzer

import (
	"strings"

	"github.com/formshift/internal/chunker"
	"github.com/formshift/pkg/models"
)

const (
	// SingleMaxLines is the largest block generated with one remote call.
	SingleMaxLines = 150
	// ChunkedMaxLines is the largest block handled by plain chunking;
	// anything bigger goes multi-phase.
	ChunkedMaxLines = 400

	// multiPhaseTargetLines caps the chunk target for very large blocks
	// so each call stays well inside provider payload limits.
	multiPhaseTargetLines = 50

	// Rough characters-per-token approximation. Advisory only.
	charsPerToken = 4
)

// Analyzer classifies a source block by line count into a generation
// strategy. Thresholds are configurable but keep the boundary semantics:
// exactly SingleMax lines is still a single-call block. TargetLines is
// the chunk size aimed for on the chunked path; the multi-phase path
// never exceeds multiPhaseTargetLines regardless.
type Analyzer struct {
	SingleMax   int
	ChunkedMax  int
	TargetLines int
}

// New creates an Analyzer with the default thresholds.
func New() *Analyzer {
	return NewWithLimits(SingleMaxLines, ChunkedMaxLines, chunker.DefaultTargetLines)
}

// NewWithLimits creates an Analyzer with custom thresholds and chunk
// target. Zero or negative values fall back to the defaults.
func NewWithLimits(singleMax, chunkedMax, targetLines int) *Analyzer {
	if singleMax <= 0 {
		singleMax = SingleMaxLines
	}
	if chunkedMax <= 0 {
		chunkedMax = ChunkedMaxLines
	}
	if targetLines <= 0 {
		targetLines = chunker.DefaultTargetLines
	}
	return &Analyzer{SingleMax: singleMax, ChunkedMax: chunkedMax, TargetLines: targetLines}
}

// Analyze classifies the source and, for chunked strategies, attaches the
// semantic chunking. It is pure and never fails.
func (a *Analyzer) Analyze(source string) models.SizeAnalysis {
	lineCount := len(strings.Split(source, "\n"))

	analysis := models.SizeAnalysis{
		LineCount:       lineCount,
		EstimatedTokens: len(source) / charsPerToken,
	}

	switch {
	case lineCount <= a.SingleMax:
		analysis.Strategy = models.StrategySingle
	case lineCount <= a.ChunkedMax:
		analysis.Strategy = models.StrategyChunked
		analysis.Chunks = chunker.NewWithTarget(a.targetLines()).Chunk(source)
	default:
		analysis.Strategy = models.StrategyMultiPhase
		analysis.Chunks = chunker.NewWithTarget(a.multiPhaseTarget()).Chunk(source)
	}

	return analysis
}

func (a *Analyzer) targetLines() int {
	if a.TargetLines > 0 {
		return a.TargetLines
	}
	return chunker.DefaultTargetLines
}

func (a *Analyzer) multiPhaseTarget() int {
	target := a.targetLines()
	if target > multiPhaseTargetLines {
		return multiPhaseTargetLines
	}
	return target
}
