package prompts

import (
	"fmt"
	"strings"

	"github.com/formshift/pkg/models"
)

// SystemPrompt is the fixed instruction sent with every generation call.
const SystemPrompt = `You are an expert at migrating legacy Oracle Forms PL/SQL to modern target platforms. ` +
	`You convert trigger and program-unit bodies faithfully: same behavior, same data access, idiomatic target code. ` +
	`Respond with the converted code in a single fenced code block, followed by a fenced json block with the explanation structure you were given. ` +
	`Never invent tables or columns that are not present in the source or the provided context.`

// DefaultTarget is the platform conversions aim at unless configured
// otherwise.
const DefaultTarget = "Oracle APEX"

// Builder constructs generation prompts for whole units and for
// individual chunks.
type Builder struct {
	Target string
}

// NewBuilder creates a prompt builder for the default target platform.
func NewBuilder() *Builder {
	return &Builder{Target: DefaultTarget}
}

// NewBuilderForTarget creates a prompt builder for a custom target
// platform. An empty target falls back to the default.
func NewBuilderForTarget(target string) *Builder {
	if target == "" {
		target = DefaultTarget
	}
	return &Builder{Target: target}
}

// BuildSingle generates the prompt for converting a whole unit in one
// remote call.
func (b *Builder) BuildSingle(name string, kind models.UnitKind, code string, kc models.KnowledgeContext) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Convert the following Oracle Forms %s to %s.\n\n", kindLabel(kind), b.target()))
	prompt.WriteString(fmt.Sprintf("Unit name: %s\n\n", name))

	b.addKnowledgeContext(&prompt, kc)

	prompt.WriteString("# Source\n\n")
	prompt.WriteString("```plsql\n")
	prompt.WriteString(code)
	prompt.WriteString("\n```\n\n")

	b.addResponseFormat(&prompt)

	return prompt.String()
}

// BuildChunk generates the prompt for converting one chunk of a larger
// unit. The chunk index and total let the model keep fragment output
// composable: no surrounding BEGIN/END, declarations only where the
// chunk type calls for them.
func (b *Builder) BuildChunk(code string, chunkType models.ChunkType, name string, kc models.KnowledgeContext, chunkIndex, totalChunks int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Convert part %d of %d of the Oracle Forms unit %q to %s.\n", chunkIndex+1, totalChunks, name, b.target()))
	prompt.WriteString(fmt.Sprintf("This part contains the unit's %s.\n\n", chunkTypeLabel(chunkType)))

	prompt.WriteString("The output will be reassembled with the other parts, so:\n")
	prompt.WriteString("- Emit only the converted fragment, no surrounding BEGIN/END wrapper\n")
	prompt.WriteString("- Do not re-declare variables that belong to other parts\n")
	prompt.WriteString("- Keep statement order exactly as in the source\n\n")

	b.addKnowledgeContext(&prompt, kc)

	prompt.WriteString("# Source fragment\n\n")
	prompt.WriteString("```plsql\n")
	prompt.WriteString(code)
	prompt.WriteString("\n```\n\n")

	b.addResponseFormat(&prompt)

	return prompt.String()
}

// addKnowledgeContext renders the caller-supplied domain metadata.
func (b *Builder) addKnowledgeContext(prompt *strings.Builder, kc models.KnowledgeContext) {
	if len(kc.Tables) == 0 && kc.ScreenPurpose == "" && len(kc.BusinessRules) == 0 && len(kc.TargetPatterns) == 0 {
		return
	}

	prompt.WriteString("# Context\n\n")
	if kc.ScreenPurpose != "" {
		prompt.WriteString(fmt.Sprintf("Screen purpose: %s\n", kc.ScreenPurpose))
	}
	if len(kc.Tables) > 0 {
		prompt.WriteString(fmt.Sprintf("Tables involved: %s\n", strings.Join(kc.Tables, ", ")))
	}
	for _, rule := range kc.BusinessRules {
		prompt.WriteString(fmt.Sprintf("Business rule: %s\n", rule))
	}
	for _, pattern := range kc.TargetPatterns {
		prompt.WriteString(fmt.Sprintf("Preferred target pattern: %s\n", pattern))
	}
	prompt.WriteString("\n")
}

// addResponseFormat appends the fixed response structure instructions.
func (b *Builder) addResponseFormat(prompt *strings.Builder) {
	prompt.WriteString("# Response format\n\n")
	prompt.WriteString("First a fenced code block with the converted code, then a fenced json block:\n")
	prompt.WriteString("```json\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"summary\": \"One-sentence summary of what the code does\",\n")
	prompt.WriteString("  \"purpose\": \"Business purpose of the unit\",\n")
	prompt.WriteString("  \"steps\": [\"Ordered processing steps\"],\n")
	prompt.WriteString("  \"tables\": [\"Affected tables\"],\n")
	prompt.WriteString("  \"uiFields\": [\"Referenced form fields\"],\n")
	prompt.WriteString("  \"businessRules\": [\"Business rules enforced\"],\n")
	prompt.WriteString("  \"targetNotes\": [\"Implementation notes for the target platform\"]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("```\n")
}

func (b *Builder) target() string {
	if b.Target != "" {
		return b.Target
	}
	return DefaultTarget
}

func kindLabel(kind models.UnitKind) string {
	switch kind {
	case models.UnitKindTrigger:
		return "trigger"
	case models.UnitKindProgramUnit:
		return "program unit"
	case models.UnitKindValidation:
		return "validation block"
	case models.UnitKindProcess:
		return "process block"
	default:
		return "source block"
	}
}

func chunkTypeLabel(chunkType models.ChunkType) string {
	switch chunkType {
	case models.ChunkDeclarations:
		return "variable declarations"
	case models.ChunkValidation:
		return "validation logic"
	case models.ChunkBusinessLogic:
		return "business logic"
	case models.ChunkDML:
		return "data-manipulation statements"
	case models.ChunkExceptionHandling:
		return "exception handling"
	case models.ChunkFull:
		return "entire body"
	default:
		return "source"
	}
}
