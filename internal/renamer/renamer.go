// Package renamer applies normalized names to files and directories on disk.
package renamer

import (
	"fmt"
	"os"
	"path/filepath"
)

// RenameErrorType represents the type of rename error.
type RenameErrorType string

const (
	// SourceNotFound indicates the entry to rename no longer exists.
	SourceNotFound RenameErrorType = "SOURCE_NOT_FOUND"
	// TargetExists indicates a different entry already occupies the target name.
	TargetExists RenameErrorType = "TARGET_EXISTS"
	// PermissionDenied indicates insufficient permissions for the rename.
	PermissionDenied RenameErrorType = "PERMISSION_DENIED"
)

// RenameError represents an error that occurred while renaming an entry.
type RenameError struct {
	Type RenameErrorType
	Path string
	Err  error
}

func (e *RenameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// Renamer renames entries in place to their normalized names.
//
// Callers must order the work so a rename never invalidates a path computed
// earlier: files first (a file rename only changes its own base name), then
// directories deepest first.
type Renamer struct {
	DryRun bool
}

// New creates a Renamer. With dryRun set, Apply reports what would happen
// without touching the disk.
func New(dryRun bool) *Renamer {
	return &Renamer{DryRun: dryRun}
}

// Apply renames the entry at fullPath to target within the same directory.
// It returns true when a rename happened (or would happen under dry-run) and
// false when the name is already normalized. It refuses to clobber a
// distinct entry that already occupies the target name.
func (r *Renamer) Apply(fullPath, name, target string) (bool, error) {
	if name == target {
		return false, nil
	}

	targetPath := filepath.Join(filepath.Dir(fullPath), target)

	sourceInfo, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &RenameError{Type: SourceNotFound, Path: fullPath, Err: err}
		}
		return false, err
	}

	// On a case-insensitive filesystem the target "exists" during a pure
	// case-change rename because it is the source itself; only a genuinely
	// distinct entry blocks the rename.
	if targetInfo, err := os.Lstat(targetPath); err == nil {
		if !os.SameFile(sourceInfo, targetInfo) {
			return false, &RenameError{Type: TargetExists, Path: targetPath}
		}
	}

	if r.DryRun {
		return true, nil
	}

	if err := os.Rename(fullPath, targetPath); err != nil {
		if os.IsPermission(err) {
			return false, &RenameError{Type: PermissionDenied, Path: fullPath, Err: err}
		}
		return false, err
	}
	return true, nil
}
