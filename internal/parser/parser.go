package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/formshift/pkg/models"
)

// Parsed is the structured view of a raw model response. Code is always
// populated; Explanation is best-effort and nil when the response has no
// recognizable explanation section.
type Parsed struct {
	Code        string
	Explanation *models.Explanation
}

var fencedBlockRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)[ \t]*\n(.*?)```")

// Parse extracts generated code and an optional structured explanation
// from a free-text model response. It never fails: worst case the whole
// response is returned verbatim as code.
func Parse(raw string) Parsed {
	parsed := Parsed{Code: raw}

	matches := fencedBlockRe.FindAllStringSubmatch(raw, -1)

	// The code is the first fenced block that is not the explanation
	// JSON; without any fenced block the whole response is the code.
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if tag == "json" {
			continue
		}
		parsed.Code = strings.TrimSuffix(m[2], "\n")
		break
	}

	parsed.Explanation = parseExplanation(matches)
	if parsed.Code == raw && len(matches) > 0 {
		// Every fenced block is json-tagged; fall back to the first one
		// so the code is still the first fenced block's contents.
		parsed.Code = strings.TrimSuffix(matches[0][2], "\n")
	}

	return parsed
}

// parseExplanation looks for a json-tagged fenced block that unmarshals
// into an Explanation, repairing malformed JSON first. Absence or
// malformation is not an error.
func parseExplanation(matches [][]string) *models.Explanation {
	for _, m := range matches {
		if strings.ToLower(m[1]) != "json" {
			continue
		}

		jsonStr := strings.TrimSpace(m[2])

		var explanation models.Explanation
		if err := json.Unmarshal([]byte(jsonStr), &explanation); err != nil {
			repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
			if repairErr != nil {
				continue
			}
			if err := json.Unmarshal([]byte(repaired), &explanation); err != nil {
				continue
			}
		}

		if explanation.Summary == "" && explanation.Purpose == "" && len(explanation.Steps) == 0 {
			continue
		}
		return &explanation
	}

	return nil
}
