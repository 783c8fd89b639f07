package dispatch

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mattjoyce/glazier/internal/command"
	"github.com/mattjoyce/glazier/internal/events"
	"github.com/mattjoyce/glazier/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

// recordingExecutor records executed commands and signals each completion
// on done so tests can synchronize with fire-and-forget executions.
type recordingExecutor struct {
	mu    sync.Mutex
	calls []command.Command
	done  chan command.Command
	fail  func(command.Command) error
	block chan struct{} // when set, executions wait here first
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{done: make(chan command.Command, 64)}
}

func (r *recordingExecutor) Execute(ctx context.Context, c command.Command) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	var err error
	if r.fail != nil {
		err = r.fail(c)
	}
	r.done <- c
	return err
}

func (r *recordingExecutor) snapshot() []command.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]command.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

func waitExec(t *testing.T, ch <-chan command.Command) command.Command {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an execution")
		return nil
	}
}

func expectNoExec(t *testing.T, ch <-chan command.Command) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected extra execution: %s", c.Kind())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPipeline_CoalescesBurstToNewest(t *testing.T) {
	exec := newRecordingExecutor()
	p := New(nil, exec, nil)

	// Buffer a whole burst before the dispatcher consumes anything.
	for i := uint32(1); i <= 20; i++ {
		p.droppable.Push(command.Resize{Width: 100 + i, Height: 50 + i})
	}
	p.droppable.Close()

	p.runCoalescing(context.Background())

	got := waitExec(t, exec.done)
	r, ok := got.(command.Resize)
	if !ok {
		t.Fatalf("executed %T, want Resize", got)
	}
	if r.Width != 120 || r.Height != 70 {
		t.Errorf("executed Resize{%d %d}, want the newest Resize{120 70}", r.Width, r.Height)
	}
	expectNoExec(t, exec.done)
}

func TestPipeline_CoalescingKeepsNewestResize(t *testing.T) {
	exec := newRecordingExecutor()
	p := New(nil, exec, nil)

	p.droppable.Push(command.Resize{Width: 100, Height: 50})
	p.droppable.Push(command.Resize{Width: 120, Height: 60})
	p.droppable.Close()

	p.runCoalescing(context.Background())

	got := waitExec(t, exec.done)
	r := got.(command.Resize)
	if r.Width != 120 || r.Height != 60 {
		t.Errorf("executed Resize{%d %d}, want Resize{120 60}", r.Width, r.Height)
	}
	expectNoExec(t, exec.done)
}

func TestPipeline_GuaranteedExecutesInOrder(t *testing.T) {
	exec := newRecordingExecutor()
	p := New(nil, exec, nil)

	p.guaranteed.Push(command.Keyboard{Input: "a"})
	p.guaranteed.Push(command.Keyboard{Input: "b"})
	p.guaranteed.Push(command.Quit{})
	p.guaranteed.Close()

	p.runSequential(context.Background(), context.Background())

	calls := exec.snapshot()
	if len(calls) != 3 {
		t.Fatalf("executed %d commands, want 3", len(calls))
	}
	if k := calls[0].(command.Keyboard); k.Input != "a" {
		t.Errorf("first execution = %q, want a", k.Input)
	}
	if k := calls[1].(command.Keyboard); k.Input != "b" {
		t.Errorf("second execution = %q, want b", k.Input)
	}
	if _, ok := calls[2].(command.Quit); !ok {
		t.Errorf("third execution = %T, want Quit", calls[2])
	}
}

func TestPipeline_FailureDoesNotStopGuaranteedPath(t *testing.T) {
	exec := newRecordingExecutor()
	exec.fail = func(c command.Command) error {
		if _, ok := c.(command.FileDrop); ok {
			return errors.New("open failed")
		}
		return nil
	}
	hub := events.NewHub(16)
	p := New(nil, exec, hub)

	p.guaranteed.Push(command.FileDrop{Path: "/no/such/file"})
	p.guaranteed.Push(command.Keyboard{Input: "x"})
	p.guaranteed.Close()

	p.runSequential(context.Background(), context.Background())

	calls := exec.snapshot()
	if len(calls) != 2 {
		t.Fatalf("executed %d commands, want 2", len(calls))
	}
	if _, ok := calls[1].(command.Keyboard); !ok {
		t.Errorf("command after the failure = %T, want Keyboard", calls[1])
	}

	var failed bool
	for _, ev := range hub.SnapshotSince(0) {
		if ev.Type == events.TypeCommandFailed {
			failed = true
		}
	}
	if !failed {
		t.Error("expected a command_failed event on the hub")
	}
}

func TestPipeline_RoutesByClass(t *testing.T) {
	inbound := make(chan command.Command)
	exec := newRecordingExecutor()
	p := New(inbound, exec, nil)

	runDone := make(chan error, 1)
	go func() { runDone <- p.Run(context.Background()) }()

	inbound <- command.Keyboard{Input: "i"}
	inbound <- command.Scroll{Direction: command.ScrollDown, Grid: 1}
	inbound <- command.FocusLost{}
	close(inbound)

	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after inbound close")
	}

	// The scroll execution is fire-and-forget and may land after Run
	// returns; wait for all three.
	kinds := map[string]bool{}
	for i := 0; i < 3; i++ {
		kinds[waitExec(t, exec.done).Kind()] = true
	}
	for _, want := range []string{"keyboard", "scroll", "focus_lost"} {
		if !kinds[want] {
			t.Errorf("command %q was never executed", want)
		}
	}
}

func TestPipeline_InboundCloseIsCleanShutdown(t *testing.T) {
	inbound := make(chan command.Command)
	hub := events.NewHub(16)
	p := New(inbound, newRecordingExecutor(), hub)

	runDone := make(chan error, 1)
	go func() { runDone <- p.Run(context.Background()) }()

	close(inbound)

	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("Run after clean close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after inbound close")
	}

	var stopped bool
	for _, ev := range hub.SnapshotSince(0) {
		if ev.Type == events.TypePipelineStopped {
			stopped = true
		}
	}
	if !stopped {
		t.Error("expected a pipeline_stopped event on the hub")
	}
}

func TestPipeline_CallerCancellationSurfaces(t *testing.T) {
	inbound := make(chan command.Command)
	p := New(inbound, newRecordingExecutor(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- p.Run(ctx) }()

	cancel()

	select {
	case err := <-runDone:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestPipeline_SlowDroppableDoesNotStallGuaranteed(t *testing.T) {
	inbound := make(chan command.Command)
	exec := newRecordingExecutor()
	exec.block = make(chan struct{})
	p := New(inbound, exec, nil)

	go p.Run(context.Background())
	defer close(inbound)

	// A droppable execution is now parked inside the executor. Guaranteed
	// commands must still flow... except the sequential path shares the
	// executor, so gate only until the droppable is known to be in flight.
	inbound <- command.Drag{Grid: 1, Col: 1, Row: 1}

	// Give the coalescing loop time to spawn the blocked execution, then
	// open the gate for everything and send a guaranteed command.
	time.Sleep(20 * time.Millisecond)
	close(exec.block)

	inbound <- command.Keyboard{Input: "q"}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		seen[waitExec(t, exec.done).Kind()] = true
	}
	if !seen["drag"] || !seen["keyboard"] {
		t.Errorf("executions seen = %v, want drag and keyboard", seen)
	}

	if d, _ := p.Depths(); d != 0 {
		t.Errorf("droppable depth = %d, want 0", d)
	}
}
