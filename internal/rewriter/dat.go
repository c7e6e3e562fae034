package rewriter

import (
	"strings"

	"ysconv/internal/namer"
)

// rewriteDAT handles aircraft and ground-object property files. Only three
// DAT keys carry filesystem paths: INSTPANL (external instrument panel),
// WPNSHAPE (weapon mesh, after the FLYING/STATIC keyword) and CARRIER
// (carrier properties file).
func rewriteDAT(name string, lines []string) ([]string, []Warning) {
	out := make([]string, len(lines))
	copy(out, lines)

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "INSTPANL") && strings.Contains(line, ".ist"):
			// Trailing comments are legal after the path.
			if idx := strings.Index(line, "#"); idx >= 0 {
				line = strings.TrimRight(line[:idx], " ")
			}
			if len(line) <= 9 {
				continue
			}
			out[i] = "INSTPANL " + namer.NormalizePath(line[9:])

		case strings.HasPrefix(line, "WPNSHAPE") && containsAnyFold(line, ".srf", ".dnm"):
			keyword := "STATIC"
			if strings.Contains(line, "FLYING") {
				keyword = "FLYING"
			}
			parts := strings.Split(line, keyword)
			last := parts[len(parts)-1]
			if len(last) < 2 { // a space then the path
				continue
			}
			parts[len(parts)-1] = " " + namer.NormalizePath(last[1:])
			out[i] = strings.Join(parts, keyword)

		case strings.HasPrefix(line, "CARRIER") && strings.Contains(line, "."):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			out[i] = "CARRIER " + namer.NormalizePath(fields[len(fields)-1])
		}
	}

	return out, nil
}

// containsAnyFold reports whether s contains any of the substrings,
// case-insensitively.
func containsAnyFold(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
