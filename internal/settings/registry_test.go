package settings

import (
	"os"
	"testing"
	"time"

	"github.com/mattjoyce/glazier/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

func TestRegistry_RegisterAndSet(t *testing.T) {
	r := NewRegistry()

	mouseEnabled := true
	if err := r.Register("mouse_enabled", BoolVar(&mouseEnabled)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.Set("mouse_enabled", "false"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mouseEnabled {
		t.Error("setter did not update the bound variable")
	}

	got, err := r.Get("mouse_enabled")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "false" {
		t.Errorf("Get = %q, want false", got)
	}
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := NewRegistry()
	v := false
	if err := r.Register("x", BoolVar(&v)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("x", BoolVar(&v)); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistry_UnknownSetting(t *testing.T) {
	r := NewRegistry()
	if err := r.Set("no_such", "1"); err == nil {
		t.Error("Set on unknown name must fail")
	}
	if _, err := r.Get("no_such"); err == nil {
		t.Error("Get on unknown name must fail")
	}
}

func TestRegistry_ParseFailureKeepsOldValue(t *testing.T) {
	r := NewRegistry()
	length := 0.3
	if err := r.Register("scroll_animation_length", FloatVar(&length)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.Set("scroll_animation_length", "fast"); err == nil {
		t.Fatal("expected parse error")
	}
	if length != 0.3 {
		t.Errorf("value changed to %v on failed parse, want 0.3 preserved", length)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	a, b := "", time.Duration(0)
	_ = r.Register("zeta", StringVar(&a))
	_ = r.Register("alpha", DurationVar(&b))

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Names = %v, want [alpha zeta]", names)
	}
}

func TestRegistry_ApplySkipsBadEntries(t *testing.T) {
	r := NewRegistry()
	enabled := false
	timeout := 5 * time.Second
	_ = r.Register("enabled", BoolVar(&enabled))
	_ = r.Register("timeout", DurationVar(&timeout))

	applied := r.Apply(map[string]string{
		"enabled": "true",
		"timeout": "not-a-duration",
		"unknown": "1",
	})

	if applied != 1 {
		t.Errorf("Apply = %d, want 1", applied)
	}
	if !enabled {
		t.Error("valid entry was not applied")
	}
	if timeout != 5*time.Second {
		t.Error("failed entry must leave previous value")
	}
}
