package rewriter

import (
	"ysconv/internal/namer"
)

// acpPathLines is how many leading lines of a carrier properties file hold
// path references.
const acpPathLines = 4

// rewriteACP handles aircraft carrier property files. The format is
// positional: the first four lines are paths, the rest is numeric data.
func rewriteACP(name string, lines []string) ([]string, []Warning) {
	out := make([]string, len(lines))
	copy(out, lines)

	for i := 0; i < len(out) && i < acpPathLines; i++ {
		out[i] = namer.NormalizePath(out[i])
	}

	return out, nil
}
