package assembler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/formshift/pkg/models"
)

const sectionIndent = "  "

var nonIdentifierRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Banner returns the draft header that every generated artifact starts
// with, naming the unit and flagging the output for review.
func Banner(unitName string) string {
	var b strings.Builder
	b.WriteString("-- ============================================================\n")
	b.WriteString(fmt.Sprintf("-- %s (generated draft)\n", unitName))
	b.WriteString("-- Produced by an automated conversion. Review before use.\n")
	b.WriteString("-- ============================================================\n")
	return b.String()
}

// Assemble merges ordered per-chunk generation results into one
// artifact. Grouping is by chunk type with a fixed section order;
// within each group results keep their ascending chunk order. The
// function is pure: the same ordered input always yields byte-identical
// output.
func Assemble(results []models.ChunkResult, unitName string) string {
	sorted := make([]models.ChunkResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	groups := make(map[models.ChunkType][]models.ChunkResult)
	for _, r := range sorted {
		groups[r.ChunkType] = append(groups[r.ChunkType], r)
	}

	var b strings.Builder
	b.WriteString(Banner(unitName))
	b.WriteString("\n")

	if declarations := groups[models.ChunkDeclarations]; len(declarations) > 0 {
		writeSection(&b, declarations)
		b.WriteString("\n")
	}

	b.WriteString("BEGIN\n")

	writeSection(&b, groups[models.ChunkValidation])

	// business-logic and full passthrough chunks form one group.
	var body []models.ChunkResult
	body = append(body, groups[models.ChunkBusinessLogic]...)
	body = append(body, groups[models.ChunkFull]...)
	sort.SliceStable(body, func(i, j int) bool { return body[i].Order < body[j].Order })
	writeSection(&b, body)

	writeSection(&b, groups[models.ChunkDML])

	if handlers := groups[models.ChunkExceptionHandling]; len(handlers) > 0 {
		b.WriteString("EXCEPTION\n")
		writeSection(&b, handlers)
	}

	b.WriteString(fmt.Sprintf("END %s;\n", sanitizeUnitName(unitName)))

	return b.String()
}

// writeSection emits each result's generated code with the uniform
// section indentation.
func writeSection(b *strings.Builder, results []models.ChunkResult) {
	for _, r := range results {
		code := strings.TrimRight(r.GeneratedCode, "\n")
		if code == "" {
			continue
		}
		for _, line := range strings.Split(code, "\n") {
			if line == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString(sectionIndent)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

// sanitizeUnitName lower-cases the unit name and replaces every run of
// non-identifier characters so the closing marker is a legal identifier.
func sanitizeUnitName(unitName string) string {
	sanitized := nonIdentifierRe.ReplaceAllString(unitName, "_")
	return strings.ToLower(strings.Trim(sanitized, "_"))
}
