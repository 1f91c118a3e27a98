package plan

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

func readLockPID(t *testing.T, dir string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, lockFileName))
	if err != nil {
		t.Fatalf("failed to read lock file: %v", err)
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		t.Fatalf("failed to parse PID from lock file: %v", err)
	}
	return pid
}

func TestPlanLock_Acquire(t *testing.T) {
	dir := t.TempDir()

	if err := NewPlanLock(dir).Acquire(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pid := readLockPID(t, dir); pid != os.Getpid() {
		t.Errorf("lock file PID mismatch: got %d, want %d", pid, os.Getpid())
	}
}

func TestPlanLock_HeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()

	// our own pid always counts as alive
	lockPath := filepath.Join(dir, lockFileName)
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		t.Fatalf("failed to create lock file: %v", err)
	}

	lock := NewPlanLock(dir)
	err := lock.Acquire()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	locked, err := lock.IsLocked()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locked {
		t.Error("IsLocked should report true")
	}
}

func TestPlanLock_StaleOrInvalidLockIsReplaced(t *testing.T) {
	for name, content := range map[string]string{
		"dead process": "99999999",
		"invalid pid":  "not-a-pid",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			lockPath := filepath.Join(dir, lockFileName)
			if err := os.WriteFile(lockPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to create lock file: %v", err)
			}

			if err := NewPlanLock(dir).Acquire(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pid := readLockPID(t, dir); pid != os.Getpid() {
				t.Errorf("lock file PID mismatch: got %d, want %d", pid, os.Getpid())
			}
		})
	}
}

func TestPlanLock_IsLocked_CleansStaleLock(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, lockFileName)
	if err := os.WriteFile(lockPath, []byte("99999999"), 0644); err != nil {
		t.Fatalf("failed to create lock file: %v", err)
	}

	locked, err := NewPlanLock(dir).IsLocked()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locked {
		t.Error("stale lock should not count as held")
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("stale lock file should be removed")
	}
}

func TestPlanLock_ConcurrentAcquire(t *testing.T) {
	dir := t.TempDir()

	const workers = 10
	var wg sync.WaitGroup
	var acquired atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := NewPlanLock(dir).Acquire(); err == nil {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := acquired.Load(); n != 1 {
		t.Errorf("expected exactly 1 successful acquire, got %d", n)
	}
}

func TestPlanLock_ReleaseAndReacquire(t *testing.T) {
	dir := t.TempDir()
	lock := NewPlanLock(dir)

	// releasing an unheld lock is fine
	if err := lock.Release(); err != nil {
		t.Fatalf("unexpected error releasing unheld lock: %v", err)
	}

	if err := lock.Acquire(); err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); !os.IsNotExist(err) {
		t.Error("lock file should be removed after release")
	}
	if err := lock.Acquire(); err != nil {
		t.Fatalf("failed to re-acquire lock after release: %v", err)
	}
}
