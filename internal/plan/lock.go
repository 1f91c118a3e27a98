package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFileName = "run.lock"

// ErrLocked is returned when another live process holds the run lock.
var ErrLocked = errors.New("plan is already running")

// PlanLock is a pid file that keeps two `plan run` invocations from
// executing the same plan at once.
type PlanLock struct {
	path string
}

// NewPlanLock creates a lock manager for the given plan directory.
func NewPlanLock(planDir string) *PlanLock {
	return &PlanLock{path: filepath.Join(planDir, lockFileName)}
}

// Acquire takes the lock. A lock file left behind by a dead process, or one
// without a readable pid, is removed and acquisition is retried once.
func (l *PlanLock) Acquire() error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
			f.Close()
			if writeErr != nil {
				os.Remove(l.path)
				return fmt.Errorf("failed to write lock file: %w", writeErr)
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		held, pid, err := l.holder()
		if err != nil {
			return err
		}
		if held {
			return fmt.Errorf("%w (PID %d)", ErrLocked, pid)
		}
	}
	return fmt.Errorf("%w: lock taken by another process during retry", ErrLocked)
}

// Release removes the lock file. Releasing an absent lock is not an error.
func (l *PlanLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock. Stale lock files
// are cleaned up as a side effect.
func (l *PlanLock) IsLocked() (bool, error) {
	held, _, err := l.holder()
	return held, err
}

// holder inspects the lock file. A stale or unparseable lock file is removed
// and reported as not held. An empty file belongs to an acquirer that has not
// written its pid yet and counts as held.
func (l *PlanLock) holder() (bool, int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		// created but the pid is not written yet
		return true, 0, nil
	}
	pid, parseErr := strconv.Atoi(content)
	if parseErr == nil && processExists(pid) {
		return true, pid, nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return false, 0, fmt.Errorf("failed to remove stale lock file: %w", err)
	}
	return false, 0, nil
}

// processExists sends signal 0 to pid, which checks existence without
// delivering a signal.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
