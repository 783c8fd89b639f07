// Package shellext manages OS shell integration: an "Open with Glazier"
// entry in the desktop environment's file handlers. Registration is
// best-effort; the dispatch contract only requires reporting success.
package shellext

import (
	"log/slog"

	"github.com/mattjoyce/glazier/internal/log"
)

// Integrator registers and removes the shell entry. Both calls are
// idempotent: Register over an existing entry rewrites it, Unregister of
// an absent entry reports success.
type Integrator struct {
	logger *slog.Logger
}

func NewIntegrator() *Integrator {
	return &Integrator{logger: log.WithComponent("shellext")}
}

// Register installs the shell entry and reports success.
func (i *Integrator) Register() bool {
	if err := platformRegister(); err != nil {
		i.logger.Warn("failed to register shell integration", "error", err)
		return false
	}
	i.logger.Info("shell integration registered")
	return true
}

// Unregister removes the shell entry and reports success. A missing entry
// counts as success.
func (i *Integrator) Unregister() bool {
	if err := platformUnregister(); err != nil {
		i.logger.Warn("failed to unregister shell integration", "error", err)
		return false
	}
	return true
}
