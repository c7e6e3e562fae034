// Package orchestrator coordinates the conversion pipeline for ysconv.
package orchestrator

import (
	"errors"
	"fmt"
	"path/filepath"

	"ysconv/internal/audit"
	"ysconv/internal/config"
	"ysconv/internal/namer"
	"ysconv/internal/output"
	"ysconv/internal/renamer"
	"ysconv/internal/rewriter"
	"ysconv/internal/scanner"
)

// Result represents the outcome of processing a single entry.
type Result struct {
	RelPath   string
	Renamed   bool
	Rewritten bool
	Error     error
}

// DecodeFailure identifies a file that could not be decoded as text.
type DecodeFailure struct {
	RelPath  string
	FullPath string
}

// Orchestrator runs the conversion pipeline over one root directory.
type Orchestrator struct {
	root    string
	cfg     *config.Configuration
	out     *output.Output
	dryRun  bool
	journal *audit.Writer
}

// New creates an Orchestrator. out must not be nil.
func New(root string, cfg *config.Configuration, out *output.Output, dryRun bool) *Orchestrator {
	return &Orchestrator{
		root:   root,
		cfg:    cfg,
		out:    out,
		dryRun: dryRun,
	}
}

// JournalDir resolves the journal directory against the conversion root.
func (o *Orchestrator) JournalDir() string {
	dir := o.cfg.Journal.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(o.root, dir)
	}
	return dir
}

// Run executes the whole pipeline: scan, build the name map, rewrite file
// contents, apply renames. One bad file never aborts the run; only an
// inaccessible root is fatal.
func (o *Orchestrator) Run() (*Summary, error) {
	opts := scanner.ScanOptions{
		SymlinkPolicy:  o.cfg.SymlinkPolicy,
		IgnorePatterns: o.cfg.IgnorePatterns,
	}
	tree, err := scanner.Scan(o.root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", o.root, err)
	}
	o.root = tree.Root

	summary := &Summary{
		TotalFiles: len(tree.Files),
		TotalDirs:  len(tree.Dirs),
		DryRun:     o.dryRun,
	}

	// The name map must be complete before any rewrite so every reference
	// is resolved against the same view of the tree.
	nameMap := namer.Build(tree.Dirs, tree.Files)
	summary.Collisions = nameMap.Collisions()

	o.openJournal()
	defer o.closeJournal()

	for _, collision := range summary.Collisions {
		o.out.Error("Name collision in %s: %v all normalize to %q; none renamed",
			collision.Dir, collision.Names, collision.Target)
		o.record(audit.Event{
			Type:   audit.EventCollision,
			Path:   collision.Dir,
			Target: collision.Target,
			Detail: fmt.Sprintf("%v", collision.Names),
		})
	}

	pinned := o.rewriteFiles(tree, summary)
	for _, scanErr := range tree.Errors {
		summary.Results = append(summary.Results, Result{RelPath: scanErr.Path, Error: scanErr})
		o.out.Error("Cannot read %s: subtree skipped", scanErr.Path)
		pinned[scanErr.Path] = true
	}
	o.applyRenames(tree, nameMap, pinned, summary)

	o.record(audit.Event{Type: audit.EventRunEnd, Detail: summary.String()})

	return summary, nil
}

// rewriteFiles runs the content handlers over every file in the tree. It
// returns the relative paths of undecodable files; those are reported under
// their current name, so renaming them would detach them from the report the
// user is acting on.
func (o *Orchestrator) rewriteFiles(tree *scanner.Tree, summary *Summary) map[string]bool {
	rw := rewriter.New(o.dryRun)
	undecodable := make(map[string]bool)

	o.out.StartProgress(len(tree.Files))
	defer o.out.EndProgress()

	for i, file := range tree.Files {
		o.out.UpdateProgress(i+1, "Rewriting")

		result, err := rw.Rewrite(file)
		if err != nil {
			var decodeErr *rewriter.DecodeError
			if errors.As(err, &decodeErr) {
				undecodable[file.RelPath] = true
				summary.DecodeFailures = append(summary.DecodeFailures, DecodeFailure{
					RelPath:  file.RelPath,
					FullPath: file.FullPath,
				})
				o.out.Error("Unable to process %s", file.RelPath)
				o.out.Error("  Check for non-unicode text in this file and delete bad characters, then run again.")
				o.record(audit.Event{Type: audit.EventDecodeSkip, Path: file.RelPath})
				continue
			}
			summary.Results = append(summary.Results, Result{RelPath: file.RelPath, Error: err})
			o.out.Error("Error rewriting %s: %v", file.RelPath, err)
			continue
		}

		for _, warning := range result.Warnings {
			o.out.Error("Possible broken path in %s line %d: %q", file.RelPath, warning.Line, warning.Field)
			summary.LintWarnings++
		}

		if result.Changed {
			summary.Rewritten++
			o.out.Verbose("rewrote %s", file.RelPath)
			o.record(audit.Event{Type: audit.EventRewrite, Path: file.RelPath})
			summary.Results = append(summary.Results, Result{RelPath: file.RelPath, Rewritten: true})
		}
	}
	return undecodable
}

// applyRenames renames files first, then directories deepest first, so no
// rename invalidates a path computed during the scan. Pinned entries keep
// their current name, along with every directory on the way to them, so the
// paths reported for them still resolve after the run.
func (o *Orchestrator) applyRenames(tree *scanner.Tree, nameMap *namer.NameMap, pinned map[string]bool, summary *Summary) {
	rn := renamer.New(o.dryRun)

	skip := make(map[string]bool, len(pinned))
	for relPath := range pinned {
		skip[relPath] = true
		for dir := filepath.Dir(relPath); dir != "." && !skip[dir]; dir = filepath.Dir(dir) {
			skip[dir] = true
		}
	}

	apply := func(fullPath, relPath, name string) {
		if nameMap.Exempt(relPath) || skip[relPath] {
			return
		}
		target, ok := nameMap.Target(relPath)
		if !ok || target == name {
			return
		}

		renamed, err := rn.Apply(fullPath, name, target)
		if err != nil {
			summary.Results = append(summary.Results, Result{RelPath: relPath, Error: err})
			o.out.Error("Cannot rename %s: %v", relPath, err)
			return
		}
		if renamed {
			summary.Renamed++
			o.out.Verbose("renamed %s -> %s", relPath, target)
			o.record(audit.Event{Type: audit.EventRename, Path: relPath, Target: target})
			summary.Results = append(summary.Results, Result{RelPath: relPath, Renamed: true})
		}
	}

	for _, file := range tree.Files {
		apply(file.FullPath, file.RelPath, file.Name)
	}
	for _, dir := range tree.Dirs {
		apply(dir.FullPath, dir.RelPath, dir.Name)
	}
}

// ProcessFile re-runs the pipeline for one file, used by watch mode after
// the user repairs a previously undecodable file. The rename uses the pure
// normalization function directly; a single-file fix cannot introduce a new
// sibling collision that the full run would not already have reported.
func (o *Orchestrator) ProcessFile(fullPath string) (*Result, error) {
	relPath, err := filepath.Rel(o.root, fullPath)
	if err != nil {
		relPath = fullPath
	}
	name := filepath.Base(fullPath)
	entry := scanner.FileEntry{Name: name, FullPath: fullPath, RelPath: relPath}

	result := &Result{RelPath: relPath}

	rwResult, err := rewriter.New(o.dryRun).Rewrite(entry)
	if err != nil {
		return nil, err
	}
	result.Rewritten = rwResult.Changed

	renamed, err := renamer.New(o.dryRun).Apply(fullPath, name, namer.NormalizeName(name))
	if err != nil {
		result.Error = err
		return result, nil
	}
	result.Renamed = renamed

	return result, nil
}

// openJournal starts a journal run unless journaling is disabled or this is
// a dry run. Journal failures downgrade to a warning; conversion continues.
func (o *Orchestrator) openJournal() {
	if o.dryRun || o.cfg.Journal.Disabled {
		return
	}
	writer, err := audit.NewWriter(o.JournalDir())
	if err != nil {
		o.out.Error("Warning: journal disabled: %v", err)
		return
	}
	if _, err := writer.StartRun(audit.RunKindConvert); err != nil {
		o.out.Error("Warning: journal disabled: %v", err)
		writer.Close()
		return
	}
	o.journal = writer
}

func (o *Orchestrator) record(event audit.Event) {
	if o.journal == nil {
		return
	}
	if event.Type == audit.EventRunEnd {
		o.journal.EndRun(event.Detail)
		return
	}
	if err := o.journal.Record(event); err != nil {
		o.out.Error("Warning: journal write failed: %v", err)
		o.journal.Close()
		o.journal = nil
	}
}

func (o *Orchestrator) closeJournal() {
	if o.journal != nil {
		o.journal.Close()
		o.journal = nil
	}
}

// Root returns the absolute conversion root once Run has resolved it.
func (o *Orchestrator) Root() string {
	return o.root
}
