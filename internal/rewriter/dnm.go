package rewriter

import (
	"strings"

	"ysconv/internal/namer"
)

// rewriteDNM handles dynamic model files. FIL lines reference external .srf
// meshes and are rewritten; names declared by PCK lines are embedded in the
// file itself and must keep their exact spelling, so FIL references to them
// are left untouched.
func rewriteDNM(name string, lines []string) ([]string, []Warning) {
	internal := make(map[string]bool)
	for _, line := range lines {
		if strings.HasPrefix(line, "PCK ") {
			if pck := dnmPackedName(line); pck != "" {
				internal[pck] = true
			}
		}
	}

	out := make([]string, len(lines))
	copy(out, lines)

	for i, line := range lines {
		if !strings.HasPrefix(line, "FIL ") || len(line) <= 4 {
			continue
		}
		ref := line[4:]
		if internal[ref] {
			continue
		}
		out[i] = "FIL " + namer.NormalizePath(ref)
	}

	return out, nil
}

// dnmPackedName extracts the embedded mesh name from a "PCK <name> <size>"
// line. The name may contain spaces; the final field is always the byte
// count of the packed block.
func dnmPackedName(line string) string {
	fields := strings.Fields(line)
	switch {
	case len(fields) >= 3:
		return strings.Join(fields[1:len(fields)-1], " ")
	case len(fields) == 2:
		return fields[1]
	default:
		return ""
	}
}
