// Package rewriter rewrites path references inside YSFlight addon text files.
package rewriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ysconv/internal/scanner"
)

// DecodeError reports a file whose content could not be decoded as UTF-8
// text. The file is left untouched; the user is expected to repair the
// offending bytes and run the tool again.
type DecodeError struct {
	Path string // relative to the conversion root
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s as UTF-8 text", e.Path)
}

// Warning flags a field inside a .lst line that still looks like a path
// broken by a space. These are reported for manual review, never auto-fixed.
type Warning struct {
	Line  int    // 1-based line number
	Field string // the suspicious field
}

// Result describes the outcome of rewriting a single file.
type Result struct {
	RelPath  string
	Handled  bool // extension appears in the handler table
	Changed  bool // content differed after rewriting
	Warnings []Warning
}

// handlerFunc rewrites the decoded lines of one file. Implementations must
// not mutate the input slice.
type handlerFunc func(name string, lines []string) ([]string, []Warning)

// handlers is the explicit extension table. Only files listed here are
// opened; everything else (textures, meshes, archives) is left alone.
var handlers = map[string]handlerFunc{
	".dat": rewriteDAT,
	".dnm": rewriteDNM,
	".lst": rewriteLST,
	".fld": rewriteFLD,
	".acp": rewriteACP,
}

// Handled reports whether a filename's extension has a content handler.
func Handled(name string) bool {
	_, ok := handlers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Rewriter applies content handlers to files on disk.
type Rewriter struct {
	DryRun bool
}

// New creates a Rewriter. With dryRun set, files are read and analyzed but
// never written back.
func New(dryRun bool) *Rewriter {
	return &Rewriter{DryRun: dryRun}
}

// Rewrite processes a single file. Files without a handler are reported as
// unhandled and skipped. A *DecodeError is returned for content that is not
// valid UTF-8; the caller reports it and continues with the next file.
func (r *Rewriter) Rewrite(entry scanner.FileEntry) (*Result, error) {
	handler, ok := handlers[strings.ToLower(filepath.Ext(entry.Name))]
	if !ok {
		return &Result{RelPath: entry.RelPath}, nil
	}

	data, err := os.ReadFile(entry.FullPath)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, &DecodeError{Path: entry.RelPath}
	}

	lines := splitLines(string(data))
	rewritten, warnings := handler(entry.Name, lines)

	result := &Result{
		RelPath:  entry.RelPath,
		Handled:  true,
		Warnings: warnings,
	}

	output := joinLines(rewritten)
	if output == string(data) {
		return result, nil
	}
	result.Changed = true

	if r.DryRun {
		return result, nil
	}
	if err := os.WriteFile(entry.FullPath, []byte(output), 0644); err != nil {
		return nil, err
	}
	return result, nil
}

// splitLines splits content into lines without terminators. CRLF endings are
// normalized to LF on write-back; the addon formats are LF-tolerant and a
// stray \r inside a path field would survive normalization otherwise.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// joinLines restores terminators, ensuring a trailing newline.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
