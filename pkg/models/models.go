package models

import (
	"time"
)

// UnitKind identifies what kind of Forms source block a unit is.
type UnitKind string

const (
	UnitKindTrigger     UnitKind = "trigger"
	UnitKindProgramUnit UnitKind = "program-unit"
	UnitKindValidation  UnitKind = "validation"
	UnitKindProcess     UnitKind = "process"
)

// SourceBlock is one generation target: the raw body of a trigger or
// program unit together with its declared name and kind. It is supplied
// by the caller and never modified by the pipeline.
type SourceBlock struct {
	Name   string   `json:"name"`
	Kind   UnitKind `json:"kind"`
	Source string   `json:"source"`
}

// Strategy is the coarse generation plan chosen from source size.
type Strategy string

const (
	StrategySingle     Strategy = "single"
	StrategyChunked    Strategy = "chunked"
	StrategyMultiPhase Strategy = "multi-phase"
)

// ChunkType classifies a contiguous slice of source text.
type ChunkType string

const (
	ChunkDeclarations      ChunkType = "declarations"
	ChunkValidation        ChunkType = "validation"
	ChunkBusinessLogic     ChunkType = "business-logic"
	ChunkDML               ChunkType = "dml"
	ChunkExceptionHandling ChunkType = "exception-handling"
	ChunkFull              ChunkType = "full"
)

// Chunk is a classified, ordered slice of a unit's source sized for one
// remote call. StartLine and EndLine are 1-based and inclusive; Order is
// a 0-based strictly increasing counter that defines reassembly order.
type Chunk struct {
	Code      string    `json:"code"`
	Type      ChunkType `json:"type"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`
	Order     int       `json:"order"`
}

// SizeAnalysis is the result of classifying a source block by size.
// EstimatedTokens is a character-count/4 approximation and is advisory
// only. Chunks is nil when Strategy is StrategySingle.
type SizeAnalysis struct {
	LineCount       int      `json:"line_count"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Strategy        Strategy `json:"strategy"`
	Chunks          []Chunk  `json:"chunks,omitempty"`
}

// KnowledgeContext carries caller-supplied domain metadata for prompt
// construction. The pipeline passes it through without inspecting it.
type KnowledgeContext struct {
	Tables         []string `json:"tables,omitempty"`
	ScreenPurpose  string   `json:"screen_purpose,omitempty"`
	BusinessRules  []string `json:"business_rules,omitempty"`
	TargetPatterns []string `json:"target_patterns,omitempty"`
}

// GenerationStatus is the orchestrator's observable state.
type GenerationStatus string

const (
	StatusIdle       GenerationStatus = "idle"
	StatusAnalyzing  GenerationStatus = "analyzing"
	StatusGenerating GenerationStatus = "generating"
	StatusAssembling GenerationStatus = "assembling"
	StatusComplete   GenerationStatus = "complete"
	StatusError      GenerationStatus = "error"
)

// GenerationProgress is pushed to the caller's progress callback on every
// state transition. It is emitted, not stored: transitions are not
// replayable after the fact.
type GenerationProgress struct {
	GenerationID    string           `json:"generation_id"`
	Status          GenerationStatus `json:"status"`
	CurrentUnit     int              `json:"current_unit"`
	TotalUnits      int              `json:"total_units"`
	Message         string           `json:"message"`
	PartialArtifact string           `json:"partial_artifact,omitempty"`
}

// ChunkResult pairs one chunk's original source with its generated code.
type ChunkResult struct {
	OriginalCode  string    `json:"original_code"`
	GeneratedCode string    `json:"generated_code"`
	ChunkType     ChunkType `json:"chunk_type"`
	Order         int       `json:"order"`
}

// ErrorKind is the remote error taxonomy the pipeline depends on.
type ErrorKind string

const (
	ErrorKindCredential      ErrorKind = "invalid-credential"
	ErrorKindPayloadTooLarge ErrorKind = "payload-too-large"
	ErrorKindRateLimited     ErrorKind = "rate-limited"
	ErrorKindNetwork         ErrorKind = "network"
	ErrorKindUnknown         ErrorKind = "unknown"
)

// ErrorDescriptor describes the terminal error of a failed generation.
type ErrorDescriptor struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Attempts int       `json:"attempts"`
}

// Explanation is the structured explanation optionally parsed from a
// model response. Every field is best-effort.
type Explanation struct {
	Summary       string   `json:"summary"`
	Purpose       string   `json:"purpose,omitempty"`
	Steps         []string `json:"steps,omitempty"`
	Tables        []string `json:"tables,omitempty"`
	UIFields      []string `json:"uiFields,omitempty"`
	BusinessRules []string `json:"businessRules,omitempty"`
	TargetNotes   []string `json:"targetNotes,omitempty"`
}

// GenerationResult is the final outcome of one generation invocation.
// On failure, PartialArtifact holds whatever the assembler could build
// from the chunks that completed before the error.
type GenerationResult struct {
	Success         bool             `json:"success"`
	Artifact        string           `json:"artifact,omitempty"`
	Explanation     *Explanation     `json:"explanation,omitempty"`
	ChunkResults    []ChunkResult    `json:"chunk_results,omitempty"`
	PartialArtifact string           `json:"partial_artifact,omitempty"`
	Error           *ErrorDescriptor `json:"error,omitempty"`
	Elapsed         time.Duration    `json:"elapsed"`
}
