package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileUnstable is returned when a file keeps changing size past the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits for an input file to stop growing before a re-run
// reads it, so a run does not see a half-written file.
type StabilityChecker struct {
	threshold time.Duration // How long the size must stay unchanged
	timeout   time.Duration // Give up after this long
	interval  time.Duration // Sampling period
}

// NewStabilityChecker creates a checker; the sampling interval is a quarter
// of threshold, at least 10ms.
func NewStabilityChecker(threshold, timeout time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return &StabilityChecker{threshold: threshold, timeout: timeout, interval: interval}
}

// WaitForStable blocks until path's size has been unchanged for the
// threshold. A missing file counts as stable: the run that follows reports
// it like any other unreadable input.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	if s.threshold <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lastSize, ok, err := fileSize(path)
	if err != nil || !ok {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			size, ok, err := fileSize(path)
			if err != nil || !ok {
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

func fileSize(path string) (size int64, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return info.Size(), true, nil
}
