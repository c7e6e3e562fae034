package orchestrator

import (
	"fmt"

	"ysconv/internal/namer"
)

// Summary represents the overall results of a conversion run.
type Summary struct {
	TotalFiles     int
	TotalDirs      int
	Renamed        int
	Rewritten      int
	LintWarnings   int
	DecodeFailures []DecodeFailure
	Collisions     []namer.Collision
	Results        []Result
	DryRun         bool
}

// HasErrors reports whether anything in the run needs the user's attention:
// undecodable files, name collisions, or per-entry failures.
func (s *Summary) HasErrors() bool {
	if len(s.DecodeFailures) > 0 || len(s.Collisions) > 0 {
		return true
	}
	for _, result := range s.Results {
		if result.Error != nil {
			return true
		}
	}
	return false
}

// Clean reports whether the run changed nothing, i.e. the tree was already
// fully converted.
func (s *Summary) Clean() bool {
	return s.Renamed == 0 && s.Rewritten == 0
}

// String returns a one-line formatted summary.
func (s *Summary) String() string {
	msg := fmt.Sprintf("Processed %d files and %d directories: renamed %d, rewrote %d",
		s.TotalFiles, s.TotalDirs, s.Renamed, s.Rewritten)
	if s.DryRun {
		msg = fmt.Sprintf("Processed %d files and %d directories: would rename %d, would rewrite %d",
			s.TotalFiles, s.TotalDirs, s.Renamed, s.Rewritten)
	}
	if len(s.DecodeFailures) > 0 {
		msg += fmt.Sprintf(", %d not decodable", len(s.DecodeFailures))
	}
	if len(s.Collisions) > 0 {
		msg += fmt.Sprintf(", %d name collisions", len(s.Collisions))
	}
	if s.LintWarnings > 0 {
		msg += fmt.Sprintf(", %d list-file warnings", s.LintWarnings)
	}
	return msg
}
