package rewriter

import (
	"strings"

	"ysconv/internal/namer"
)

// fldRefExtensions are the file kinds a .fld may reference externally. FIL
// lines pointing at anything else are embedded elements, not paths.
var fldRefExtensions = []string{".fld", ".pc2", ".ter", ".srf"}

// rewriteFLD handles scenery field files. External references appear on
// quoted FIL lines; names declared by PCK lines are defined inside the file
// and are never rewritten.
func rewriteFLD(name string, lines []string) ([]string, []Warning) {
	internal := make(map[string]bool)
	for _, line := range lines {
		if strings.HasPrefix(line, "PCK ") && strings.Contains(line, `"`) {
			if parts := strings.Split(line, `"`); len(parts) >= 2 {
				internal[parts[1]] = true
			}
		}
	}

	out := make([]string, len(lines))
	copy(out, lines)

	for i, line := range lines {
		if !strings.HasPrefix(line, "FIL") || !strings.Contains(line, ".") {
			continue
		}
		if !containsAnyFold(line, fldRefExtensions...) {
			continue
		}

		var ref string
		if strings.Contains(line, `"`) {
			parts := strings.Split(line, `"`)
			if len(parts) < 2 {
				continue
			}
			ref = parts[1]
		} else if len(line) > 4 {
			ref = line[4:]
		} else {
			continue
		}

		if internal[ref] {
			continue
		}
		out[i] = `FIL "` + namer.NormalizePath(ref) + `"`
	}

	return out, nil
}
