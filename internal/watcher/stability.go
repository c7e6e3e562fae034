package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileUnstable is returned when a file keeps changing size past the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits for a file's size to stop changing, which signals
// that whatever editor or extractor produced it has finished writing.
type StabilityChecker struct {
	threshold time.Duration // size must remain unchanged this long
	timeout   time.Duration
	interval  time.Duration
}

// NewStabilityChecker creates a checker with a 30s timeout and a poll
// interval derived from the threshold.
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return &StabilityChecker{
		threshold: threshold,
		timeout:   30 * time.Second,
		interval:  interval,
	}
}

// WaitForStable blocks until the file size has been unchanged for the
// threshold duration, or fails with ErrFileUnstable after the timeout.
func (s *StabilityChecker) WaitForStable(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	lastSize, err := fileSize(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ErrFileUnstable
		case <-ticker.C:
			size, err := fileSize(path)
			if err != nil {
				return err
			}
			if size != lastSize {
				lastSize = size
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
