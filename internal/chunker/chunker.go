package chunker

import (
	"regexp"
	"strings"

	"github.com/formshift/pkg/models"
)

const (
	// DefaultTargetLines is the chunk size the chunker aims for. A chunk
	// is force-flushed once it reaches flushFactor times this target so
	// that prompt size stays bounded even without semantic boundaries.
	DefaultTargetLines = 100

	flushFactor = 1.5
)

// Line classification patterns. These are keyword heuristics over Forms
// PL/SQL, not a grammar: UPDATE only counts as DML when SET appears on
// the same line, so multi-line UPDATE statements are not merged.
var (
	declareRe   = regexp.MustCompile(`(?i)\bDECLARE\b`)
	beginRe     = regexp.MustCompile(`(?i)\bBEGIN\b`)
	exceptionRe = regexp.MustCompile(`(?i)\bEXCEPTION\b`)

	insertRe   = regexp.MustCompile(`(?i)\bINSERT\s+INTO\b`)
	updateRe   = regexp.MustCompile(`(?i)\bUPDATE\b`)
	setRe      = regexp.MustCompile(`(?i)\bSET\b`)
	deleteRe   = regexp.MustCompile(`(?i)\bDELETE\s+FROM\b`)
	commitRe   = regexp.MustCompile(`(?i)\bCOMMIT\b`)
	rollbackRe = regexp.MustCompile(`(?i)\bROLLBACK\b`)

	raiseErrorRe = regexp.MustCompile(`(?i)\bRAISE_APPLICATION_ERROR\b`)
	messageRe    = regexp.MustCompile(`(?i)\b(FND_)?MESSAGE\s*\(`)
	nullCheckRe  = regexp.MustCompile(`(?i)\bIF\b.*\bIS\s+(NOT\s+)?NULL\b`)
)

// Chunker splits a source block into ordered, typed chunks using a small
// line-by-line state machine.
type Chunker struct {
	TargetLines int
}

// New creates a Chunker with the default target chunk size.
func New() *Chunker {
	return &Chunker{TargetLines: DefaultTargetLines}
}

// NewWithTarget creates a Chunker that aims for the given chunk size.
func NewWithTarget(targetLines int) *Chunker {
	if targetLines <= 0 {
		targetLines = DefaultTargetLines
	}
	return &Chunker{TargetLines: targetLines}
}

// accumulator holds the chunk currently being built.
type accumulator struct {
	typ       models.ChunkType
	lines     []string
	startLine int
}

// Chunk splits the source into a lossless, ordered partition of typed
// chunks. Concatenating the chunk codes in ascending order with newline
// separators reproduces the input exactly. Degenerate input produces a
// single full-type chunk spanning the whole text.
func (c *Chunker) Chunk(source string) []models.Chunk {
	lines := strings.Split(source, "\n")

	if strings.TrimSpace(source) == "" {
		return []models.Chunk{{
			Code:      source,
			Type:      models.ChunkFull,
			StartLine: 1,
			EndLine:   len(lines),
			Order:     0,
		}}
	}

	flushAt := int(float64(c.TargetLines) * flushFactor)
	if flushAt < 1 {
		flushAt = 1
	}

	var (
		chunks    []models.Chunk
		cur       *accumulator
		order     int
		carryType models.ChunkType
	)

	flush := func(endLine int) {
		if cur == nil || len(cur.lines) == 0 {
			cur = nil
			return
		}
		chunks = append(chunks, models.Chunk{
			Code:      strings.Join(cur.lines, "\n"),
			Type:      cur.typ,
			StartLine: cur.startLine,
			EndLine:   endLine,
			Order:     order,
		})
		order++
		cur = nil
	}

	open := func(typ models.ChunkType, startLine int) {
		flush(startLine - 1)
		cur = &accumulator{typ: typ, startLine: startLine}
		carryType = ""
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		// Rules are evaluated in priority order; first match wins.
		switch {
		case declareRe.MatchString(trimmed):
			open(models.ChunkDeclarations, lineNo)

		case beginRe.MatchString(trimmed) && (cur == nil || cur.typ == models.ChunkDeclarations):
			// BEGIN closes the declarations section. A nested BEGIN inside
			// an already-open chunk is ordinary content.
			open(models.ChunkBusinessLogic, lineNo)

		case exceptionRe.MatchString(trimmed):
			// Re-entrant: every EXCEPTION line restarts the chunk boundary.
			open(models.ChunkExceptionHandling, lineNo)

		case isDML(trimmed):
			if cur == nil || cur.typ != models.ChunkDML {
				open(models.ChunkDML, lineNo)
			}

		case isValidation(trimmed):
			if cur == nil || cur.typ != models.ChunkValidation {
				open(models.ChunkValidation, lineNo)
			}

		default:
			if cur == nil {
				typ := models.ChunkBusinessLogic
				if carryType != "" {
					// Continuation of a force-flushed chunk keeps its type.
					typ = carryType
				}
				open(typ, lineNo)
			}
		}

		cur.lines = append(cur.lines, line)

		if len(cur.lines) >= flushAt {
			carried := cur.typ
			flush(lineNo)
			carryType = carried
		}
	}

	flush(len(lines))

	if len(chunks) == 0 {
		return []models.Chunk{{
			Code:      source,
			Type:      models.ChunkFull,
			StartLine: 1,
			EndLine:   len(lines),
			Order:     0,
		}}
	}

	return chunks
}

// isDML reports whether a line contains a DML marker. UPDATE requires a
// co-occurring SET on the same line.
func isDML(line string) bool {
	if insertRe.MatchString(line) || deleteRe.MatchString(line) {
		return true
	}
	if updateRe.MatchString(line) && setRe.MatchString(line) {
		return true
	}
	return commitRe.MatchString(line) || rollbackRe.MatchString(line)
}

// isValidation reports whether a line contains a validation marker: an
// application-error raise, a vendor message call, or a conditional
// combined with a null check.
func isValidation(line string) bool {
	if raiseErrorRe.MatchString(line) {
		return true
	}
	if messageRe.MatchString(line) {
		return true
	}
	return nullCheckRe.MatchString(line)
}
