package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/glazier/internal/log"
	"github.com/mattjoyce/glazier/internal/session"
)

// Minimum usable editor grid. Resize requests below this are floored.
const (
	minGridWidth  = 10
	minGridHeight = 3
)

// ShellIntegrator installs and removes the platform's shell-integration
// entries. Both calls report success; failure detail is the integrator's to
// log.
type ShellIntegrator interface {
	Register() bool
	Unregister() bool
}

// Executor maps each command variant to its remote call. A returned error
// means a call that must always succeed against a live session failed: an
// invariant violation fatal to that one execution, never to the pipeline.
// Best-effort variants (Quit, FileDrop) swallow remote failures; shell
// integration failures are logged and mirrored to the session's error
// channel but never abort.
type Executor struct {
	sess   session.API
	shell  ShellIntegrator
	logger *slog.Logger
}

func NewExecutor(sess session.API, shell ShellIntegrator) *Executor {
	return &Executor{
		sess:   sess,
		shell:  shell,
		logger: log.WithComponent("execute"),
	}
}

func (e *Executor) Execute(ctx context.Context, c Command) error {
	switch c := c.(type) {
	case Quit:
		// Best-effort: the session may already be gone.
		_ = e.sess.Command(ctx, "qa!")
		return nil

	case Resize:
		width := int64(max(c.Width, minGridWidth))
		height := int64(max(c.Height, minGridHeight))
		if err := e.sess.TryResize(ctx, width, height); err != nil {
			return fmt.Errorf("resize to %dx%d: %w", width, height, err)
		}
		return nil

	case Keyboard:
		e.logger.Debug("keyboard input sent", "input", c.Input)
		if err := e.sess.Input(ctx, c.Input); err != nil {
			return fmt.Errorf("keyboard input: %w", err)
		}
		return nil

	case MouseButton:
		if err := e.sess.InputMouse(ctx, "left", c.Action, "", c.Grid, c.Row, c.Col); err != nil {
			return fmt.Errorf("mouse %s: %w", c.Action, err)
		}
		return nil

	case Scroll:
		if err := e.sess.InputMouse(ctx, "wheel", c.Direction, "", c.Grid, c.Row, c.Col); err != nil {
			return fmt.Errorf("scroll %s: %w", c.Direction, err)
		}
		return nil

	case Drag:
		if err := e.sess.InputMouse(ctx, "left", "drag", "", c.Grid, c.Row, c.Col); err != nil {
			return fmt.Errorf("mouse drag: %w", err)
		}
		return nil

	case FocusLost:
		if err := e.sess.Command(ctx, "if exists('#FocusLost') | doautocmd <nomodeline> FocusLost | endif"); err != nil {
			return fmt.Errorf("focus lost hook: %w", err)
		}
		return nil

	case FocusGained:
		if err := e.sess.Command(ctx, "if exists('#FocusGained') | doautocmd <nomodeline> FocusGained | endif"); err != nil {
			return fmt.Errorf("focus gained hook: %w", err)
		}
		return nil

	case FileDrop:
		// Best-effort: a path the session can't open is not our failure.
		_ = e.sess.Command(ctx, "e "+c.Path)
		return nil

	case RegisterShellExt:
		if !e.shell.Unregister() {
			e.reportShellExt(ctx, "could not remove previous shell integration entry, it may still be registered")
		}
		if !e.shell.Register() {
			e.reportShellExt(ctx, "could not register shell integration entry, it may already exist or permissions are missing")
		}
		return nil

	case UnregisterShellExt:
		if !e.shell.Unregister() {
			e.reportShellExt(ctx, "could not remove shell integration entry, it may already be gone")
		}
		return nil

	default:
		// The variant set is closed; reaching this is a programming error.
		return fmt.Errorf("no execution mapping for command %q", c.Kind())
	}
}

// reportShellExt surfaces an integration failure as a diagnostic: logged,
// and mirrored to the session's error channel when reachable.
func (e *Executor) reportShellExt(ctx context.Context, msg string) {
	e.logger.Warn(msg)
	_ = e.sess.ErrWriteln(ctx, msg)
}
