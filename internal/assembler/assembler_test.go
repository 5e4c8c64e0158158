package assembler

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formshift/pkg/models"
)

func sampleResults() []models.ChunkResult {
	return []models.ChunkResult{
		{GeneratedCode: "v_total NUMBER := 0;", ChunkType: models.ChunkDeclarations, Order: 0},
		{GeneratedCode: "v_total := v_total + 1;", ChunkType: models.ChunkBusinessLogic, Order: 1},
		{GeneratedCode: "IF v_id IS NULL THEN\n  RAISE_APPLICATION_ERROR(-20001, 'missing id');\nEND IF;", ChunkType: models.ChunkValidation, Order: 2},
		{GeneratedCode: "INSERT INTO audit_log (id) VALUES (v_id);", ChunkType: models.ChunkDML, Order: 3},
		{GeneratedCode: "WHEN OTHERS THEN NULL;", ChunkType: models.ChunkExceptionHandling, Order: 4},
	}
}

func TestAssemble_SectionOrderIsFixed(t *testing.T) {
	artifact := Assemble(sampleResults(), "POST-INSERT")

	declIdx := strings.Index(artifact, "v_total NUMBER")
	beginIdx := strings.Index(artifact, "BEGIN")
	validationIdx := strings.Index(artifact, "RAISE_APPLICATION_ERROR")
	bodyIdx := strings.Index(artifact, "v_total := v_total + 1;")
	dmlIdx := strings.Index(artifact, "INSERT INTO audit_log")
	exceptionIdx := strings.Index(artifact, "EXCEPTION")
	endIdx := strings.Index(artifact, "END post_insert;")

	require.NotEqual(t, -1, declIdx)
	require.NotEqual(t, -1, endIdx)

	// declarations -> BEGIN -> validations -> business logic -> dml ->
	// exception handlers -> END, regardless of chunk production order.
	assert.Less(t, declIdx, beginIdx)
	assert.Less(t, beginIdx, validationIdx)
	assert.Less(t, validationIdx, bodyIdx)
	assert.Less(t, bodyIdx, dmlIdx)
	assert.Less(t, dmlIdx, exceptionIdx)
	assert.Less(t, exceptionIdx, endIdx)
}

func TestAssemble_BannerNamesUnitAndFlagsDraft(t *testing.T) {
	artifact := Assemble(sampleResults(), "WHEN-VALIDATE-ITEM")

	assert.Contains(t, artifact, "WHEN-VALIDATE-ITEM (generated draft)")
	assert.Contains(t, artifact, "Review before use")
}

func TestAssemble_IsIdempotent(t *testing.T) {
	results := sampleResults()

	first := Assemble(results, "POST-INSERT")
	second := Assemble(results, "POST-INSERT")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("assemble is not idempotent (-first +second):\n%s", diff)
	}
}

func TestAssemble_InputOrderDoesNotChangeOutput(t *testing.T) {
	results := sampleResults()
	reversed := make([]models.ChunkResult, len(results))
	for i, r := range results {
		reversed[len(results)-1-i] = r
	}

	assert.Equal(t, Assemble(results, "unit"), Assemble(reversed, "unit"))
}

func TestAssemble_MissingExceptionSectionOmitted(t *testing.T) {
	results := []models.ChunkResult{
		{GeneratedCode: "NULL;", ChunkType: models.ChunkBusinessLogic, Order: 0},
	}

	artifact := Assemble(results, "unit")

	assert.NotContains(t, artifact, "EXCEPTION")
}

func TestAssemble_FullChunksGroupWithBusinessLogic(t *testing.T) {
	results := []models.ChunkResult{
		{GeneratedCode: "-- full passthrough", ChunkType: models.ChunkFull, Order: 0},
		{GeneratedCode: "COMMIT;", ChunkType: models.ChunkDML, Order: 1},
	}

	artifact := Assemble(results, "unit")

	assert.Less(t, strings.Index(artifact, "full passthrough"), strings.Index(artifact, "COMMIT;"))
}

func TestAssemble_RepeatedTypesKeepAscendingOrder(t *testing.T) {
	results := []models.ChunkResult{
		{GeneratedCode: "-- first validation", ChunkType: models.ChunkValidation, Order: 0},
		{GeneratedCode: "-- body", ChunkType: models.ChunkBusinessLogic, Order: 1},
		{GeneratedCode: "-- second validation", ChunkType: models.ChunkValidation, Order: 2},
	}

	artifact := Assemble(results, "unit")

	assert.Less(t,
		strings.Index(artifact, "first validation"),
		strings.Index(artifact, "second validation"))
}

func TestSanitizeUnitName(t *testing.T) {
	cases := map[string]string{
		"POST-INSERT":        "post_insert",
		"WHEN-VALIDATE-ITEM": "when_validate_item",
		"My Proc (v2)":       "my_proc_v2",
		"already_lower":      "already_lower",
		"trailing-":          "trailing",
	}

	for in, want := range cases {
		assert.Equal(t, want, sanitizeUnitName(in), "input %q", in)
	}
}

func TestAssemble_EmptyResultsStillProducesSkeleton(t *testing.T) {
	artifact := Assemble(nil, "empty-unit")

	assert.Contains(t, artifact, "empty-unit (generated draft)")
	assert.Contains(t, artifact, "BEGIN")
	assert.Contains(t, artifact, "END empty_unit;")
}
