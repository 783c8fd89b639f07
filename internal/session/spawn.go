package session

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// terminationGracePeriod is the time we wait after SIGTERM before SIGKILL.
const terminationGracePeriod = 5 * time.Second

// Process is a spawned editor subprocess together with its RPC client.
type Process struct {
	*Client

	runID  string
	cmd    *exec.Cmd
	logger *slog.Logger

	waitCh chan error
}

// Spawn starts the editor binary with the given arguments, wires its stdio
// into an RPC client, and returns once the process is running. The caller
// owns the process and must Close it.
func Spawn(ctx context.Context, bin string, args []string, logger *slog.Logger) (*Process, error) {
	if bin == "" {
		return nil, fmt.Errorf("editor binary is empty")
	}

	cmd := exec.Command(bin, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	logger.Debug("spawning editor", "bin", bin, "args", args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start editor process: %w", err)
	}

	p := &Process{
		Client: newClient(stdin, stdout, logger),
		runID:  uuid.NewString(),
		cmd:    cmd,
		logger: logger,
		waitCh: make(chan error, 1),
	}

	go func() {
		p.waitCh <- cmd.Wait()
	}()

	logger.Info("editor session started", "run_id", p.runID, "pid", cmd.Process.Pid)
	return p, nil
}

// RunID identifies this session run.
func (p *Process) RunID() string { return p.runID }

// Pid returns the editor process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Close terminates the editor process: SIGTERM, a grace period, then
// SIGKILL if it is still running. The remote quit should already have been
// requested through the pipeline; Close only enforces process exit.
func (p *Process) Close() error {
	select {
	case err := <-p.waitCh:
		// Already exited (e.g. it honored a quit command).
		return p.exitResult(err)
	default:
	}

	if p.cmd.Process != nil {
		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			p.logger.Warn("failed to send SIGTERM to editor", "error", err)
		}
	}

	grace := time.NewTimer(terminationGracePeriod)
	defer grace.Stop()

	select {
	case err := <-p.waitCh:
		return p.exitResult(err)
	case <-grace.C:
		p.logger.Warn("editor did not exit after SIGTERM, sending SIGKILL")
		if p.cmd.Process != nil {
			if err := p.cmd.Process.Kill(); err != nil {
				p.logger.Error("failed to send SIGKILL to editor", "error", err)
			}
		}
		return p.exitResult(<-p.waitCh)
	}
}

func (p *Process) exitResult(err error) error {
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.logger.Info("editor exited", "run_id", p.runID, "exit_code", exitErr.ExitCode())
			return nil
		}
		return fmt.Errorf("wait for editor process: %w", err)
	}
	p.logger.Info("editor exited", "run_id", p.runID, "exit_code", 0)
	return nil
}
