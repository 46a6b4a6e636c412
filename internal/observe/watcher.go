package observe

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Watcher observes PID lifecycle. Nothing else.
type Watcher struct {
	pid      int
	interval time.Duration
}

// NewWatcher creates a watcher for a PID polling at interval (default 1s).
func NewWatcher(pid int, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		pid:      pid,
		interval: interval,
	}
}

// PID returns the watched process ID.
func (w *Watcher) PID() int {
	return w.pid
}

// Exists checks if PID still exists
func (w *Watcher) Exists() bool {
	return PIDExists(w.pid)
}

// StartTime returns when the watched process was created.
func (w *Watcher) StartTime() (time.Time, error) {
	if w.pid <= 0 {
		return time.Time{}, fmt.Errorf("invalid PID: %d", w.pid)
	}
	p, err := process.NewProcess(int32(w.pid))
	if err != nil {
		return time.Time{}, fmt.Errorf("process %d: %w", w.pid, err)
	}
	ms, err := p.CreateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read start time of %d: %w", w.pid, err)
	}
	return time.UnixMilli(ms), nil
}

// Wait blocks until the process exits or ctx is done.
// Exit codes of processes we did not spawn are not observable.
func (w *Watcher) Wait(ctx context.Context) error {
	if !w.Exists() {
		return fmt.Errorf("process %d does not exist", w.pid)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !w.Exists() {
				return nil
			}
		}
	}
}

// PIDExists reports whether pid is a live process. A zombie waiting to be
// reaped by its parent has already exited and counts as gone.
func PIDExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil || !exists {
		return false
	}

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		// Status is not available everywhere; existence is enough.
		return true
	}
	return !slices.Contains(status, process.Zombie)
}
