package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/glazier/internal/auth"
	"github.com/mattjoyce/glazier/internal/command"
	"github.com/mattjoyce/glazier/internal/config"
	"github.com/mattjoyce/glazier/internal/control"
	"github.com/mattjoyce/glazier/internal/dispatch"
	"github.com/mattjoyce/glazier/internal/events"
	"github.com/mattjoyce/glazier/internal/lock"
	"github.com/mattjoyce/glazier/internal/log"
	"github.com/mattjoyce/glazier/internal/session"
	"github.com/mattjoyce/glazier/internal/settings"
	"github.com/mattjoyce/glazier/internal/shellext"
	"github.com/mattjoyce/glazier/internal/state"
	"github.com/mattjoyce/glazier/internal/storage"
	"github.com/mattjoyce/glazier/internal/tui/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "open":
		os.Exit(runOpen(args))
	case "input":
		os.Exit(runInput(args))
	case "watch":
		os.Exit(runWatch(args))
	case "sessions":
		os.Exit(runSessions(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "version":
		fmt.Printf("glazier version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`glazier - headless command bridge for an embedded editor

Usage:
  glazier <command> [flags]

Daemon:
  start             Spawn the editor and run the dispatch pipeline

Client (talks to a running daemon's control API):
  open <path>       Open a file in the editor
  input <keys>      Send raw key input to the editor
  watch             Live TUI over session health and the event stream

Operations:
  sessions          List recent editor session runs for this instance

Config:
  config check      Validate configuration
  config show       Print the resolved configuration

General:
  version           Show version information
  help              Show this help message
`)
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glazier config <check|show> [--config PATH]")
		return 1
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "show":
		return runConfigShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func loadConfigFromFlag(configPath string) (*config.Config, string, error) {
	if configPath == "" {
		discovered, err := config.DiscoverConfig()
		if err != nil {
			return nil, "", err
		}
		configPath = discovered
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, path, err := loadConfigFromFlag(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
		return 1
	}

	instanceID, err := config.InstanceID(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
		return 1
	}

	fmt.Printf("OK: %s\n", path)
	fmt.Printf("Instance: %s\n", instanceID)
	return 0
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("config show", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, _, err := loadConfigFromFlag(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render config: %v\n", err)
		return 1
	}
	fmt.Print(string(out))
	return 0
}

// geometryPersister saves successful resize deliveries so the next daemon
// run can restore the editor to its last grid size.
type geometryPersister struct {
	inner      dispatch.Executor
	store      *state.Store
	instanceID string
}

func (g *geometryPersister) Execute(ctx context.Context, c command.Command) error {
	err := g.inner.Execute(ctx, c)
	if err == nil {
		if r, ok := c.(command.Resize); ok {
			saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = g.store.SaveGeometry(saveCtx, g.instanceID, state.Geometry{
				Width:  r.Width,
				Height: r.Height,
			})
		}
	}
	return err
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, path, err := loadConfigFromFlag(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("glazier starting", "version", version, "config", path)

	instanceID, err := config.InstanceID(cfg)
	if err != nil {
		logger.Error("failed to derive instance id", "error", err)
		return 1
	}

	pidLockPath := lock.DefaultPath(instanceID)
	pidLock, err := lock.Acquire(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLockPath, "instance", instanceID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.State.Path, "error", err)
		return 1
	}
	defer db.Close()
	st := state.NewStore(db)

	hub := events.NewHub(256)

	proc, err := session.Spawn(ctx, cfg.Editor.Bin, cfg.Editor.Args, log.WithComponent("session"))
	if err != nil {
		logger.Error("failed to spawn editor", "bin", cfg.Editor.Bin, "error", err)
		return 1
	}
	// Probe the session so a wedged editor fails fast instead of at the
	// first real command.
	probeCtx, probeCancel := context.WithTimeout(ctx, cfg.Editor.StartupTimeout)
	err = proc.Command(probeCtx, "let g:glazier_attached = 1")
	probeCancel()
	if err != nil {
		logger.Error("editor did not respond within startup timeout", "error", err)
		_ = proc.Close()
		return 1
	}

	if err := st.RecordSessionStart(ctx, proc.RunID(), instanceID, cfg.Editor.Bin, proc.Pid()); err != nil {
		logger.Warn("failed to record session start", "error", err)
	}
	hub.Publish(events.TypeSessionStarted, map[string]any{
		"run_id": proc.RunID(),
		"pid":    proc.Pid(),
	})

	registry := settings.NewRegistry()
	registerDaemonSettings(registry, cfg)
	if n := registry.Apply(cfg.Settings); n > 0 {
		logger.Info("applied configured settings", "count", n)
	}

	var exec dispatch.Executor = command.NewExecutor(proc, shellext.NewIntegrator())
	exec = &geometryPersister{inner: exec, store: st, instanceID: instanceID}

	inbound := make(chan command.Command, 64)
	pipeline := dispatch.New(inbound, exec, hub)

	// Restore the last known grid size before any live traffic.
	if g, ok, err := st.LoadGeometry(ctx, instanceID); err == nil && ok {
		inbound <- command.Resize{Width: g.Width, Height: g.Height}
		logger.Info("restored window geometry", "width", g.Width, "height", g.Height)
	}
	if cfg.Shell.Enabled {
		inbound <- command.RegisterShellExt{}
	}

	pipelineDone := make(chan error, 1)
	go func() { pipelineDone <- pipeline.Run(ctx) }()

	errCh := make(chan error, 1)
	ctrlDone := make(chan struct{})
	stopControl := func() {}
	if cfg.Control.Enabled {
		tokens := make([]auth.TokenConfig, 0, len(cfg.Control.Auth.Tokens))
		for _, t := range cfg.Control.Auth.Tokens {
			tokens = append(tokens, auth.TokenConfig{Token: t.Token, Scopes: t.Scopes})
		}
		ctrl := control.New(control.Config{
			Listen: cfg.Control.Listen,
			APIKey: cfg.Control.Auth.APIKey,
			Tokens: tokens,
		}, inbound, hub, proc, func() (int, int) { return pipeline.Depths() }, registry, instanceID)

		ctrlCtx, ctrlCancel := context.WithCancel(ctx)
		stopControl = ctrlCancel
		go func() {
			defer close(ctrlDone)
			if err := ctrl.Start(ctrlCtx); err != nil && err != context.Canceled {
				select {
				case errCh <- fmt.Errorf("control: %w", err):
				default:
				}
			}
		}()
		logger.Info("control server enabled", "listen", cfg.Control.Listen)
	} else {
		close(ctrlDone)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("glazier running (press Ctrl+C to stop)")

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		exitCode = 1
	case err := <-pipelineDone:
		logger.Error("pipeline stopped unexpectedly", "error", err)
		pipelineDone <- err
		exitCode = 1
	}

	// Stop the control surface first so no handler can submit into a
	// channel we are about to close.
	stopControl()
	<-ctrlDone

	// Cooperative shutdown: ask the editor to quit, then close intake and
	// let the pipeline drain what it accepted.
	select {
	case inbound <- command.Quit{}:
	default:
		logger.Warn("inbound buffer full, skipping quit command")
	}
	close(inbound)
	select {
	case <-pipelineDone:
	case <-time.After(drainTimeout(registry)):
		logger.Warn("pipeline did not drain in time")
	}

	sessionErr := proc.Close()
	runLog := log.WithRun(proc.RunID())
	if sessionErr != nil {
		runLog.Warn("editor session ended with error", "error", sessionErr)
	} else {
		runLog.Info("editor session ended")
	}
	hub.Publish(events.TypeSessionExited, map[string]any{"run_id": proc.RunID()})
	endCtx, endCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer endCancel()
	if err := st.RecordSessionEnd(endCtx, proc.RunID(), sessionErr); err != nil {
		logger.Warn("failed to record session end", "error", err)
	}

	cancel()
	logger.Info("glazier stopped")
	return exitCode
}

// registerDaemonSettings wires the runtime-tunable values. Each setting is
// registered explicitly; the config file's settings block can override the
// initial values by name.
func registerDaemonSettings(registry *settings.Registry, cfg *config.Config) {
	logLevel := cfg.Service.LogLevel
	_ = registry.Register("log_level", settings.Var{
		Get: func() string { return logLevel },
		Set: func(raw string) error {
			switch raw {
			case "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("invalid log level %q", raw)
			}
			logLevel = raw
			log.Setup(raw)
			return nil
		},
	})

	shellEnabled := cfg.Shell.Enabled
	_ = registry.Register("shell_integration_enabled", settings.BoolVar(&shellEnabled))

	// How long shutdown waits for accepted commands to finish executing.
	drain := defaultDrainTimeout
	_ = registry.Register("drain_timeout", settings.DurationVar(&drain))

	// Front-end hints: stored here and served over the control API so
	// attached clients shape the command streams they produce. They never
	// influence dispatch.
	scrollAnimationLength := 0.3
	_ = registry.Register("scroll_animation_length", settings.FloatVar(&scrollAnimationLength))
	guifont := ""
	_ = registry.Register("guifont", settings.StringVar(&guifont))
}

const defaultDrainTimeout = 10 * time.Second

// drainTimeout reads the runtime drain_timeout setting, falling back to the
// default when it is unreadable.
func drainTimeout(registry *settings.Registry) time.Duration {
	v, err := registry.Get("drain_timeout")
	if err != nil {
		return defaultDrainTimeout
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultDrainTimeout
	}
	return d
}

// --- CLIENT COMMANDS ---

type clientFlags struct {
	url   string
	token string
}

func parseClientFlags(name string, args []string) (clientFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	url := fs.String("url", "http://127.0.0.1:8791", "Control API base URL")
	token := fs.String("token", os.Getenv("GLAZIER_TOKEN"), "Bearer token (defaults to $GLAZIER_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return clientFlags{}, nil, err
	}
	return clientFlags{url: strings.TrimRight(*url, "/"), token: *token}, fs.Args(), nil
}

func postJSON(cf clientFlags, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, cf.url+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if cf.token != "" {
		req.Header.Set("Authorization", "Bearer "+cf.token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return nil
}

func runOpen(args []string) int {
	cf, rest, err := parseClientFlags("open", args)
	if err != nil || len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: glazier open <path> [--url URL] [--token TOKEN]")
		return 1
	}

	absPath, err := filepath.Abs(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve path: %v\n", err)
		return 1
	}

	if err := postJSON(cf, "/open", map[string]string{"path": absPath}); err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		return 1
	}
	fmt.Printf("opened %s\n", absPath)
	return 0
}

func runInput(args []string) int {
	cf, rest, err := parseClientFlags("input", args)
	if err != nil || len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: glazier input <keys> [--url URL] [--token TOKEN]")
		return 1
	}

	if err := postJSON(cf, "/input", map[string]string{"keys": rest[0]}); err != nil {
		fmt.Fprintf(os.Stderr, "input failed: %v\n", err)
		return 1
	}
	return 0
}

func runWatch(args []string) int {
	cf, _, err := parseClientFlags("watch", args)
	if err != nil {
		return 1
	}

	p := tea.NewProgram(watch.New(cf.url, cf.token))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
		return 1
	}
	return 0
}

func runSessions(args []string) int {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, _, err := loadConfigFromFlag(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	instanceID, err := config.InstanceID(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to derive instance id: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open state database: %v\n", err)
		return 1
	}
	defer db.Close()

	recs, err := state.NewStore(db).RecentSessions(ctx, instanceID, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sessions: %v\n", err)
		return 1
	}
	if len(recs) == 0 {
		fmt.Println("No recorded sessions.")
		return 0
	}

	fmt.Print(formatSessions(recs))
	return 0
}

// formatSessions renders session runs newest-first as a fixed-width table.
func formatSessions(recs []state.SessionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s  %-20s  %-7s  %-10s  %s\n", "RUN", "STARTED", "PID", "DURATION", "RESULT")
	for _, r := range recs {
		duration := "running"
		result := "-"
		if r.EndedAt != nil {
			duration = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
			result = "clean"
			if r.ExitError != "" {
				result = r.ExitError
			}
		}
		fmt.Fprintf(&b, "%-14s  %-20s  %-7d  %-10s  %s\n",
			r.RunID,
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Pid,
			duration,
			result,
		)
	}
	return b.String()
}
