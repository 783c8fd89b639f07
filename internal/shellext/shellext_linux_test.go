//go:build linux

package shellext

import (
	"os"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/mattjoyce/glazier/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

func withTempDataHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestIntegrator_RegisterWritesDesktopEntry(t *testing.T) {
	withTempDataHome(t)
	i := NewIntegrator()

	if !i.Register() {
		t.Fatal("Register returned false")
	}

	b, err := os.ReadFile(entryPath())
	if err != nil {
		t.Fatalf("desktop entry not written: %v", err)
	}
	if !strings.Contains(string(b), "Name=Open with Glazier") {
		t.Errorf("unexpected desktop entry contents:\n%s", b)
	}

	// Re-register overwrites rather than fails.
	if !i.Register() {
		t.Error("second Register returned false")
	}
}

func TestIntegrator_UnregisterIsIdempotent(t *testing.T) {
	withTempDataHome(t)
	i := NewIntegrator()

	// Absent entry still counts as success.
	if !i.Unregister() {
		t.Error("Unregister of absent entry returned false")
	}

	if !i.Register() {
		t.Fatal("Register returned false")
	}
	if !i.Unregister() {
		t.Error("Unregister returned false")
	}
	if _, err := os.Stat(entryPath()); !os.IsNotExist(err) {
		t.Error("desktop entry still present after Unregister")
	}
}
