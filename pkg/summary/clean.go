package summary

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrEmptySummary is returned when the model produced no usable text.
var ErrEmptySummary = eris.New("summary: empty response")

// Clean normalizes model output into plain prose: markdown fences and
// heading markers are stripped, whitespace is collapsed. The text is never
// interpreted or executed, only reformatted.
func Clean(text string) (string, error) {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "#")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}

	out := strings.Join(kept, " ")
	out = strings.Join(strings.Fields(out), " ")
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}
