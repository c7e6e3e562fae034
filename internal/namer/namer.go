// Package namer implements filename and path normalization for ysconv.
package namer

import (
	"strings"
)

// extensionTokens are the YSFlight file extensions (without dot) that may be
// followed by a legitimate space inside a path reference, e.g. in .lst lines
// where several paths sit on one line.
var extensionTokens = []string{"srf", "dnm", "acp", "dat", "fld", "stp", "yfs"}

// locationTokens are the well-known addon root directories that may be
// preceded by a legitimate space in .lst lines.
var locationTokens = []string{"user", "aircraft", "ground", "scenery"}

// NormalizeName converts an on-disk file or directory name into its
// cross-platform canonical form: lowercase with spaces replaced by
// underscores. It is a pure function and idempotent.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// IsNormalized reports whether a name is already in canonical form.
func IsNormalized(name string) bool {
	return name == NormalizeName(name)
}

// NormalizePath converts a path reference found inside a YSFlight text file
// into its canonical form. It lowercases, converts backslashes to forward
// slashes, and replaces spaces with underscores except where the addon file
// format requires one: immediately after an extension token (a .lst line may
// hold several paths separated by single spaces) or immediately before a
// location token. Idempotent.
func NormalizePath(path string) string {
	path = strings.ToLower(path)
	path = strings.ReplaceAll(path, "\\", "/")

	if strings.Contains(path, " ") {
		path = replaceInvalidSpaces(path)
	}

	// An extension token directly followed by an underscore means a
	// separator space was swallowed on an earlier, less careful pass.
	// Restore it.
	for _, ext := range extensionTokens {
		path = strings.ReplaceAll(path, ext+"_", ext+" ")
	}

	// Same for "<ext>_<location>" where the separator before a location
	// token was turned into an underscore.
	for _, loc := range locationTokens {
		if !strings.Contains(path, "_"+loc) {
			continue
		}
		for _, ext := range extensionTokens {
			path = strings.ReplaceAll(path, ext+"_"+loc, ext+" "+loc)
		}
	}

	return path
}

// replaceInvalidSpaces walks every space in path and keeps only those that
// the addon formats allow: after an extension token or before a location
// token. All other spaces become underscores.
func replaceInvalidSpaces(path string) string {
	out := []byte(path)
	for i := 0; i < len(out); i++ {
		if out[i] != ' ' {
			continue
		}
		if spaceAllowed(path, i) {
			continue
		}
		out[i] = '_'
	}
	return string(out)
}

// spaceAllowed reports whether the space at index idx of path is part of the
// file format rather than an unsafe filename character.
func spaceAllowed(path string, idx int) bool {
	if idx > 3 {
		for _, ext := range extensionTokens {
			if strings.HasSuffix(path[:idx], ext) {
				return true
			}
		}
	}
	rest := path[idx+1:]
	for _, loc := range locationTokens {
		if strings.HasPrefix(rest, loc) {
			return true
		}
	}
	return false
}
