package audit

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JournalFileName is the journal file created inside the journal directory.
const JournalFileName = "ysconv-journal.jsonl"

// Writer appends events to the journal. It is append-only and flushes after
// every event so a crash mid-run loses at most the event being written.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	runID  RunID
}

// NewWriter opens (creating if needed) the journal in dir.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	path := filepath.Join(dir, JournalFileName)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &Writer{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// GenerateRunID generates a new UUID v4 format run ID.
func GenerateRunID() (RunID, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x40 // version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant RFC 4122

	return RunID(fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])), nil
}

// StartRun writes a RUN_START event and makes the new run current.
func (w *Writer) StartRun(kind RunKind) (RunID, error) {
	runID, err := GenerateRunID()
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.runID = runID
	return runID, w.appendLocked(Event{Type: EventRunStart, Kind: kind})
}

// Record appends an event to the current run. Timestamp and run ID are
// filled in by the writer.
func (w *Writer) Record(event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.appendLocked(event)
}

// EndRun writes a RUN_END event carrying a summary detail line.
func (w *Writer) EndRun(detail string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.appendLocked(Event{Type: EventRunEnd, Detail: detail})
}

// Close flushes and closes the journal file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func (w *Writer) appendLocked(event Event) error {
	event.Timestamp = time.Now()
	event.RunID = w.runID

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}
	if _, err := w.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write journal event: %w", err)
	}
	return w.writer.Flush()
}
