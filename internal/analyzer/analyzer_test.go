package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formshift/pkg/models"
)

func sourceWithLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "  v := v + 1;"
	}
	return strings.Join(lines, "\n")
}

func TestAnalyze_StrategyBoundaries(t *testing.T) {
	cases := []struct {
		lines    int
		strategy models.Strategy
	}{
		{1, models.StrategySingle},
		{50, models.StrategySingle},
		{150, models.StrategySingle},
		{151, models.StrategyChunked},
		{400, models.StrategyChunked},
		{401, models.StrategyMultiPhase},
		{1000, models.StrategyMultiPhase},
	}

	a := New()
	for _, tc := range cases {
		analysis := a.Analyze(sourceWithLines(tc.lines))
		assert.Equal(t, tc.strategy, analysis.Strategy, "%d lines", tc.lines)
		assert.Equal(t, tc.lines, analysis.LineCount)
	}
}

func TestAnalyze_SingleHasNoChunks(t *testing.T) {
	analysis := New().Analyze(sourceWithLines(150))

	assert.Equal(t, models.StrategySingle, analysis.Strategy)
	assert.Nil(t, analysis.Chunks)
}

func TestAnalyze_ChunkedAttachesChunks(t *testing.T) {
	analysis := New().Analyze(sourceWithLines(300))

	require.Equal(t, models.StrategyChunked, analysis.Strategy)
	require.NotEmpty(t, analysis.Chunks)

	for i, c := range analysis.Chunks {
		assert.Equal(t, i, c.Order)
	}
}

func TestAnalyze_MultiPhaseUsesTighterChunks(t *testing.T) {
	chunked := New().Analyze(sourceWithLines(400))
	multi := New().Analyze(sourceWithLines(800))

	require.Equal(t, models.StrategyMultiPhase, multi.Strategy)
	// Same density of content, roughly twice the lines, but the tighter
	// 50-line target should produce far more than twice the chunks.
	assert.Greater(t, len(multi.Chunks), 2*len(chunked.Chunks))
}

func TestAnalyze_ConfiguredTargetChangesChunkSizes(t *testing.T) {
	source := sourceWithLines(300)

	defaultChunks := New().Analyze(source).Chunks
	tightChunks := NewWithLimits(0, 0, 40).Analyze(source).Chunks

	require.NotEmpty(t, defaultChunks)
	require.NotEmpty(t, tightChunks)
	assert.Greater(t, len(tightChunks), len(defaultChunks))

	// Force flush bounds every chunk at 1.5x the configured target.
	for i, c := range tightChunks {
		lines := len(strings.Split(c.Code, "\n"))
		assert.LessOrEqual(t, lines, 60, "chunk %d", i)
	}
}

func TestAnalyze_MultiPhaseCapsConfiguredTarget(t *testing.T) {
	source := sourceWithLines(800)

	capped := NewWithLimits(0, 0, 200).Analyze(source)
	require.Equal(t, models.StrategyMultiPhase, capped.Strategy)

	// A 200-line target is capped at 50 on the multi-phase path, so no
	// chunk exceeds 75 lines (1.5x the cap).
	for i, c := range capped.Chunks {
		lines := len(strings.Split(c.Code, "\n"))
		assert.LessOrEqual(t, lines, 75, "chunk %d", i)
	}

	// A target below the cap tightens multi-phase chunks further.
	tight := NewWithLimits(0, 0, 20).Analyze(source)
	assert.Greater(t, len(tight.Chunks), len(capped.Chunks))
}

func TestAnalyze_TokenEstimate(t *testing.T) {
	source := strings.Repeat("abcd", 100) // 400 chars
	analysis := New().Analyze(source)

	assert.Equal(t, 100, analysis.EstimatedTokens)
}
