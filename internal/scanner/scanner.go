// Package scanner handles directory tree discovery for ysconv.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// RootNotFound indicates the root directory does not exist or is not a directory.
	RootNotFound ScanErrorType = "ROOT_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read a directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with the "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
)

// Symlink policy constants
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// ScanError represents an error that occurred during tree discovery.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanOptions configures discovery behavior.
type ScanOptions struct {
	SymlinkPolicy  string   // "follow", "skip", or "error"
	IgnorePatterns []string // Glob patterns matched against base names; matches are pruned
}

// DefaultScanOptions returns the default scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SymlinkPolicy:  SymlinkPolicySkip,
		IgnorePatterns: nil,
	}
}

// FileEntry represents a file found during discovery.
type FileEntry struct {
	Name     string // Base name only
	FullPath string // Absolute path
	RelPath  string // Path relative to the scanned root
}

// DirEntry represents a directory found during discovery.
type DirEntry struct {
	Name     string // Base name only
	FullPath string // Absolute path
	RelPath  string // Path relative to the scanned root
	Depth    int    // Number of path components between the root and this directory
}

// Tree holds every entry discovered under a root. Files are sorted by
// relative path; Dirs are ordered deepest first so that renaming a directory
// never invalidates the paths of entries still to be renamed inside it.
type Tree struct {
	Root   string
	Files  []FileEntry
	Dirs   []DirEntry
	Errors []*ScanError // unreadable subdirectories, pruned from the walk
}

// Scan walks the whole tree rooted at root and returns every file and
// directory beneath it. Inability to access the root itself is the only
// fatal condition; an unreadable subdirectory is recorded in Tree.Errors and
// its subtree pruned, so the rest of the tree is still processed.
func Scan(root string, opts ScanOptions) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScanError{Type: RootNotFound, Path: root, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: root, Err: err}
		}
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		switch opts.SymlinkPolicy {
		case SymlinkPolicyError:
			return nil, &ScanError{
				Type: SymlinkError,
				Path: root,
				Err:  errors.New("root is a symlink"),
			}
		case SymlinkPolicySkip:
			return &Tree{Root: absRoot}, nil
		case SymlinkPolicyFollow:
			info, err = os.Stat(absRoot)
			if err != nil {
				return nil, err
			}
		}
	}

	if !info.IsDir() {
		return nil, &ScanError{
			Type: RootNotFound,
			Path: root,
			Err:  errors.New("path is not a directory"),
		}
	}

	tree := &Tree{Root: absRoot}
	if err := scanDirectory(tree, absRoot, ".", 0, opts); err != nil {
		return nil, err
	}

	sort.Slice(tree.Files, func(i, j int) bool {
		return tree.Files[i].RelPath < tree.Files[j].RelPath
	})
	// Deepest first; ties broken by relative path for determinism.
	sort.Slice(tree.Dirs, func(i, j int) bool {
		if tree.Dirs[i].Depth != tree.Dirs[j].Depth {
			return tree.Dirs[i].Depth > tree.Dirs[j].Depth
		}
		return tree.Dirs[i].RelPath < tree.Dirs[j].RelPath
	})

	return tree, nil
}

// scanDirectory collects entries under one directory and recurses. Only the
// root's own read failure is fatal; deeper failures prune that subtree.
func scanDirectory(tree *Tree, dir, relDir string, depth int, opts ScanOptions) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		switch {
		case relDir == ".":
			if os.IsPermission(err) {
				return &ScanError{Type: PermissionDenied, Path: dir, Err: err}
			}
			return err
		case os.IsNotExist(err):
			return nil // directory vanished mid-scan
		case os.IsPermission(err):
			tree.Errors = append(tree.Errors, &ScanError{Type: PermissionDenied, Path: relDir, Err: err})
			return nil
		default:
			return err
		}
	}

	for _, entry := range entries {
		if ignored(entry.Name(), opts.IgnorePatterns) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())
		relPath := filepath.Join(relDir, entry.Name())

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // entry vanished mid-scan
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch opts.SymlinkPolicy {
			case SymlinkPolicyError:
				return &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}
			case SymlinkPolicySkip:
				continue
			case SymlinkPolicyFollow:
				info, err = os.Stat(fullPath)
				if err != nil {
					continue // broken symlink
				}
			}
		}

		if info.IsDir() {
			tree.Dirs = append(tree.Dirs, DirEntry{
				Name:     entry.Name(),
				FullPath: fullPath,
				RelPath:  relPath,
				Depth:    depth,
			})
			if err := scanDirectory(tree, fullPath, relPath, depth+1, opts); err != nil {
				return err
			}
			continue
		}

		tree.Files = append(tree.Files, FileEntry{
			Name:     entry.Name(),
			FullPath: fullPath,
			RelPath:  relPath,
		})
	}

	return nil
}

// ignored reports whether name matches any of the ignore patterns.
func ignored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
