package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRuns is returned when the journal holds no conversion run to undo.
var ErrNoRuns = errors.New("journal contains no conversion runs")

// Reader loads events back out of a journal.
type Reader struct {
	path string
}

// NewReader creates a Reader for the journal in dir.
func NewReader(dir string) *Reader {
	return &Reader{path: filepath.Join(dir, JournalFileName)}
}

// Events returns every parseable event in journal order. Malformed lines
// (e.g. a truncated final line after a crash) are skipped, not fatal.
func (r *Reader) Events() ([]Event, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var events []Event
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return events, nil
}

// LastConvertRun returns the events of the most recent conversion run, in
// journal order. Undo runs are never themselves a target for undo.
func (r *Reader) LastConvertRun() (RunID, []Event, error) {
	events, err := r.Events()
	if err != nil {
		return "", nil, err
	}

	var target RunID
	for _, event := range events {
		if event.Type == EventRunStart && event.Kind == RunKindConvert {
			target = event.RunID
		}
	}
	if target == "" {
		return "", nil, ErrNoRuns
	}

	var run []Event
	for _, event := range events {
		if event.RunID == target {
			run = append(run, event)
		}
	}
	return target, run, nil
}
