package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireWritesPID(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "glazier.pid")
	l, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = l.Release() })

	b, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		t.Fatalf("lock file does not contain a PID: %q", b)
	}
	if pid != os.Getpid() {
		t.Errorf("lock file PID = %d, want %d", pid, os.Getpid())
	}
}

func TestAcquireReleaseReacquire(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "glazier.pid")
	l, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Double release is a no-op.
	if err := l.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}

	l2, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("re-Acquire after release: %v", err)
	}
	_ = l2.Release()
}

func TestAcquireConflictNamesHolder(t *testing.T) {
	// flock is per file description, not per process, so a second open in
	// the same process still conflicts.
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "glazier.pid")
	l, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = l.Release() })

	_, err = Acquire(lockPath)
	if err == nil {
		t.Fatal("second Acquire must fail while lock is held")
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("pid %d", os.Getpid())) {
		t.Errorf("conflict error %q should name the holding pid", err)
	}
}

func TestDefaultPathIsPerInstance(t *testing.T) {
	t.Parallel()

	a := DefaultPath("inst-a")
	b := DefaultPath("inst-b")
	if a == b {
		t.Error("instances must get distinct lock paths")
	}
	if filepath.Base(a) != "inst-a.pid" {
		t.Errorf("lock file name = %s, want inst-a.pid", filepath.Base(a))
	}
}
