// Package settings holds runtime-tunable values behind an explicit
// registry. Components register each setting by name with a typed getter
// and setter; there is no reflective or generated wiring, so the full set
// of live settings is greppable from the Register call sites.
package settings

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mattjoyce/glazier/internal/log"
)

// Getter reports a setting's current value in string form.
type Getter func() string

// Setter parses raw and applies it. A parse failure must leave the
// previous value untouched.
type Setter func(raw string) error

// Var pairs the accessors for one setting. Build one with the *Var
// helpers, or by hand for settings with side effects.
type Var struct {
	Get Getter
	Set Setter
}

// Registry maps setting names to their accessors. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Var
	logger  *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Var),
		logger:  log.WithComponent("settings"),
	}
}

// Register adds a named setting. Registering the same name twice is a
// wiring bug and returns an error.
func (r *Registry) Register(name string, v Var) error {
	if name == "" {
		return fmt.Errorf("setting name must be non-empty")
	}
	if v.Get == nil || v.Set == nil {
		return fmt.Errorf("setting %q needs both accessors", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("setting %q already registered", name)
	}
	r.entries[name] = v
	return nil
}

// Set parses and applies a new value for a registered setting.
func (r *Registry) Set(name, raw string) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	if err := e.Set(raw); err != nil {
		return fmt.Errorf("setting %q: %w", name, err)
	}
	r.logger.Debug("setting updated", "name", name, "value", raw)
	return nil
}

// Get returns the current value of a registered setting.
func (r *Registry) Get(name string) (string, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown setting %q", name)
	}
	return e.Get(), nil
}

// Names returns all registered setting names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets every value in values. Unknown names and parse failures are
// logged and skipped; the remaining values still apply. Returns the count
// of settings applied.
func (r *Registry) Apply(values map[string]string) int {
	applied := 0
	for name, raw := range values {
		if err := r.Set(name, raw); err != nil {
			r.logger.Warn("ignoring setting", "name", name, "error", err)
			continue
		}
		applied++
	}
	return applied
}

// BoolVar binds a setting to p. Accepts strconv.ParseBool forms.
func BoolVar(p *bool) Var {
	var mu sync.Mutex
	return Var{
		Get: func() string {
			mu.Lock()
			defer mu.Unlock()
			return strconv.FormatBool(*p)
		},
		Set: func(raw string) error {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("not a boolean: %q", raw)
			}
			mu.Lock()
			*p = v
			mu.Unlock()
			return nil
		},
	}
}

// FloatVar binds a setting to p.
func FloatVar(p *float64) Var {
	var mu sync.Mutex
	return Var{
		Get: func() string {
			mu.Lock()
			defer mu.Unlock()
			return strconv.FormatFloat(*p, 'g', -1, 64)
		},
		Set: func(raw string) error {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", raw)
			}
			mu.Lock()
			*p = v
			mu.Unlock()
			return nil
		},
	}
}

// StringVar binds a setting to p.
func StringVar(p *string) Var {
	var mu sync.Mutex
	return Var{
		Get: func() string {
			mu.Lock()
			defer mu.Unlock()
			return *p
		},
		Set: func(raw string) error {
			mu.Lock()
			*p = raw
			mu.Unlock()
			return nil
		},
	}
}

// DurationVar binds a setting to p. Accepts time.ParseDuration forms.
func DurationVar(p *time.Duration) Var {
	var mu sync.Mutex
	return Var{
		Get: func() string {
			mu.Lock()
			defer mu.Unlock()
			return p.String()
		},
		Set: func(raw string) error {
			v, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("not a duration: %q", raw)
			}
			mu.Lock()
			*p = v
			mu.Unlock()
			return nil
		},
	}
}
