package rewriter

import (
	"strings"

	"ysconv/internal/namer"
)

// minLintLength filters out short and placeholder-only .lst lines from the
// space lint; a line holding real paths is always longer than this.
const minLintLength = 20

// rewriteLST handles addon list files, which hold space-separated path
// columns. Every line goes through path normalization; a lint pass then
// flags columns that still look like a path broken in two by a space, since
// those need a human decision.
//
// Scenery lists (sce*.lst) carry a display name in the first column. It is
// normalized like everything else but exempt from the lint, since it is not
// a path and legitimately has no extension.
func rewriteLST(name string, lines []string) ([]string, []Warning) {
	isScenery := strings.HasPrefix(strings.ToLower(name), "sce")

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = namer.NormalizePath(line)
	}

	var warnings []Warning
	for i, line := range out {
		if len(line) <= minLintLength {
			continue
		}
		for col, field := range strings.Split(line, " ") {
			if len(field) <= 2 {
				// Two characters or fewer is a placeholder for an
				// intentionally absent file in that column.
				continue
			}
			if isScenery && col == 0 {
				continue
			}
			tail := field
			if len(field) > 6 {
				tail = field[len(field)-6:]
			}
			if !strings.Contains(tail, ".") {
				warnings = append(warnings, Warning{Line: i + 1, Field: field})
			}
		}
	}

	return out, warnings
}
