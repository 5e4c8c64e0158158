package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedCodeBlock(t *testing.T) {
	raw := "Here is the converted procedure:\n" +
		"```sql\n" +
		"BEGIN\n  NULL;\nEND;\n" +
		"```\n" +
		"Let me know if you need changes."

	parsed := Parse(raw)

	assert.Equal(t, "BEGIN\n  NULL;\nEND;", parsed.Code)
	assert.Nil(t, parsed.Explanation)
}

func TestParse_NoFencedBlockReturnsRawText(t *testing.T) {
	raw := "BEGIN\n  NULL;\nEND;"

	parsed := Parse(raw)

	assert.Equal(t, raw, parsed.Code)
	assert.Nil(t, parsed.Explanation)
}

func TestParse_CodeAndExplanation(t *testing.T) {
	raw := "```plsql\n" +
		"INSERT INTO audit_log (id) VALUES (1);\n" +
		"```\n\n" +
		"```json\n" +
		`{"summary": "Audits order changes", "purpose": "compliance", "steps": ["insert audit row"], "tables": ["audit_log"]}` + "\n" +
		"```\n"

	parsed := Parse(raw)

	assert.Equal(t, "INSERT INTO audit_log (id) VALUES (1);", parsed.Code)
	require.NotNil(t, parsed.Explanation)
	assert.Equal(t, "Audits order changes", parsed.Explanation.Summary)
	assert.Equal(t, []string{"insert audit row"}, parsed.Explanation.Steps)
	assert.Equal(t, []string{"audit_log"}, parsed.Explanation.Tables)
}

func TestParse_MalformedExplanationIsRepaired(t *testing.T) {
	raw := "```sql\nCOMMIT;\n```\n" +
		"```json\n" +
		`{"summary": "Commits the transaction", "steps": ["commit",]}` + "\n" + // trailing comma
		"```\n"

	parsed := Parse(raw)

	assert.Equal(t, "COMMIT;", parsed.Code)
	require.NotNil(t, parsed.Explanation)
	assert.Equal(t, "Commits the transaction", parsed.Explanation.Summary)
}

func TestParse_UnrepairableExplanationIsAbsent(t *testing.T) {
	raw := "```sql\nCOMMIT;\n```\n" +
		"```json\nnot json at all\n```\n"

	parsed := Parse(raw)

	assert.Equal(t, "COMMIT;", parsed.Code)
	assert.Nil(t, parsed.Explanation)
}

func TestParse_OnlyJSONBlock(t *testing.T) {
	raw := "```json\n{\"config\": true}\n```"

	parsed := Parse(raw)

	// Not an explanation, so the first fenced block is the code.
	assert.Equal(t, `{"config": true}`, parsed.Code)
	assert.Nil(t, parsed.Explanation)
}

func TestParse_EmptyResponse(t *testing.T) {
	parsed := Parse("")

	assert.Equal(t, "", parsed.Code)
	assert.Nil(t, parsed.Explanation)
}
