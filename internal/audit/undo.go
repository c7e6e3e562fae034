package audit

import (
	"fmt"
	"os"
	"path/filepath"
)

// UndoResult contains the outcome of an undo operation.
type UndoResult struct {
	TargetRunID RunID       // the conversion run that was undone
	Restored    int         // renames reversed
	Failed      int         // renames that could not be reversed
	Rewrites    int         // content rewrites in the run (not reversible)
	Failures    []UndoError // details of failures
}

// UndoError describes one rename that could not be reversed.
type UndoError struct {
	Path    string // relative path the entry had before the original rename
	Target  string // the name the conversion gave it
	Message string
}

// Undo reverses the renames of the most recent conversion run, newest event
// first, so directory renames are unwound before the renames of entries that
// lived inside them. Content rewrites cannot be reversed from the journal
// and are only counted.
//
// writer may be nil (journaling disabled); the undo then simply is not
// journaled itself.
func Undo(reader *Reader, writer *Writer, root string) (*UndoResult, error) {
	targetRun, events, err := reader.LastConvertRun()
	if err != nil {
		return nil, err
	}

	result := &UndoResult{TargetRunID: targetRun}

	if writer != nil {
		if _, err := writer.StartRun(RunKindUndo); err != nil {
			writer = nil // journaling failed; undo proceeds regardless
		}
	}

	for i := len(events) - 1; i >= 0; i-- {
		event := events[i]
		switch event.Type {
		case EventRewrite:
			result.Rewrites++
			continue
		case EventRename:
		default:
			continue
		}

		originalName := filepath.Base(event.Path)
		dir := filepath.Join(root, filepath.Dir(event.Path))
		currentPath := filepath.Join(dir, event.Target)
		restoredPath := filepath.Join(dir, originalName)

		if _, err := os.Lstat(currentPath); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, UndoError{
				Path:    event.Path,
				Target:  event.Target,
				Message: fmt.Sprintf("entry no longer at %s", currentPath),
			})
			continue
		}

		if err := os.Rename(currentPath, restoredPath); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, UndoError{
				Path:    event.Path,
				Target:  event.Target,
				Message: err.Error(),
			})
			continue
		}

		result.Restored++
		if writer != nil {
			writer.Record(Event{
				Type:   EventRename,
				Path:   filepath.Join(filepath.Dir(event.Path), event.Target),
				Target: originalName,
				Detail: "undo of run " + string(targetRun),
			})
		}
	}

	if writer != nil {
		writer.EndRun(fmt.Sprintf("undo of %s: %d restored, %d failed", targetRun, result.Restored, result.Failed))
	}

	return result, nil
}
