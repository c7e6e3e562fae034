package namer

import (
	"path/filepath"
	"sort"

	"ysconv/internal/scanner"
)

// Collision reports two or more sibling entries whose names normalize to the
// same target. Renaming any of them would clobber the others on a
// case-insensitive filesystem, so all members are exempted from renaming.
type Collision struct {
	Dir    string   // directory relative to the root ("." for the root itself)
	Names  []string // original names, sorted
	Target string   // the normalized name they collapse to
}

// NameMap is the original→normalized lookup for every entry in a tree. It is
// built once, before any content rewrite or rename, so cross-references are
// resolved consistently across the whole run.
type NameMap struct {
	targets    map[string]string // relative path → normalized base name
	exempt     map[string]bool   // relative paths excluded from renaming
	collisions []Collision
}

// Build computes the normalized name for every directory and file entry and
// detects sibling collisions. It must complete before any rewrite begins.
func Build(dirs []scanner.DirEntry, files []scanner.FileEntry) *NameMap {
	m := &NameMap{
		targets: make(map[string]string, len(dirs)+len(files)),
		exempt:  make(map[string]bool),
	}

	// Group entries by (parent directory, normalized name). Directories and
	// files share the namespace: a directory "Foo" and a file "foo" in the
	// same parent collide too.
	groups := make(map[[2]string][]string)
	add := func(relPath, name string) {
		normalized := NormalizeName(name)
		m.targets[relPath] = normalized
		key := [2]string{filepath.Dir(relPath), normalized}
		groups[key] = append(groups[key], relPath)
	}
	for _, d := range dirs {
		add(d.RelPath, d.Name)
	}
	for _, f := range files {
		add(f.RelPath, f.Name)
	}

	var keys [][2]string
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	for _, key := range keys {
		members := groups[key]
		names := make([]string, 0, len(members))
		for _, rel := range members {
			m.exempt[rel] = true
			names = append(names, filepath.Base(rel))
		}
		sort.Strings(names)
		m.collisions = append(m.collisions, Collision{
			Dir:    key[0],
			Names:  names,
			Target: key[1],
		})
	}

	return m
}

// Target returns the normalized base name for the entry at relPath.
func (m *NameMap) Target(relPath string) (string, bool) {
	t, ok := m.targets[relPath]
	return t, ok
}

// Exempt reports whether the entry at relPath is excluded from renaming
// because its normalized name collides with a sibling's.
func (m *NameMap) Exempt(relPath string) bool {
	return m.exempt[relPath]
}

// Collisions returns all detected sibling collisions in deterministic order.
func (m *NameMap) Collisions() []Collision {
	return m.collisions
}

// Len returns the number of entries in the map.
func (m *NameMap) Len() int {
	return len(m.targets)
}
