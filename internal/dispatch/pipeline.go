package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mattjoyce/glazier/internal/command"
	"github.com/mattjoyce/glazier/internal/events"
	"github.com/mattjoyce/glazier/internal/log"
	"github.com/mattjoyce/glazier/internal/queue"
)

// Executor performs one command's remote call. Implementations must be safe
// for concurrent use; droppable executions run in parallel with the
// sequential loop.
type Executor interface {
	Execute(ctx context.Context, c command.Command) error
}

// Pipeline routes raw commands into the two delivery paths and runs their
// dispatcher loops.
type Pipeline struct {
	inbound    <-chan command.Command
	droppable  *queue.Queue[command.Command]
	guaranteed *queue.Queue[command.Command]
	exec       Executor
	hub        *events.Hub
	logger     *slog.Logger
}

func New(inbound <-chan command.Command, exec Executor, hub *events.Hub) *Pipeline {
	return &Pipeline{
		inbound:    inbound,
		droppable:  queue.New[command.Command](),
		guaranteed: queue.New[command.Command](),
		exec:       exec,
		hub:        hub,
		logger:     log.WithComponent("dispatch"),
	}
}

// Depths reports the buffered command counts per path.
func (p *Pipeline) Depths() (droppable, guaranteed int) {
	return p.droppable.Depth(), p.guaranteed.Depth()
}

// Run starts the router and both dispatcher loops and blocks until all
// three have terminated. Closing the inbound channel is the canonical
// shutdown trigger; cancelling ctx stops the loops without waiting for
// buffered commands. Fire-and-forget droppable executions already spawned
// are never awaited.
func (p *Pipeline) Run(ctx context.Context) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Remote calls are never aborted mid-flight; executions get a context
	// that survives pipeline cancellation.
	execCtx := context.WithoutCancel(ctx)

	p.logger.Info("dispatch pipeline started")
	defer p.logger.Info("dispatch pipeline stopped")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		p.route(ctx)
	}()
	go func() {
		defer wg.Done()
		p.runSequential(ctx, execCtx)
	}()
	go func() {
		defer wg.Done()
		p.runCoalescing(execCtx)
	}()
	wg.Wait()

	if p.hub != nil {
		p.hub.Publish(events.TypePipelineStopped, nil)
	}
	// Inbound closure is the clean shutdown path; only the caller's own
	// cancellation surfaces as an error.
	return parent.Err()
}

// route consumes the raw inbound stream, classifies each command, and
// forwards it to exactly one queue. No command is duplicated or discarded
// here; all discarding happens in the coalescing dispatcher.
func (p *Pipeline) route(ctx context.Context) {
	// The router is the sole producer for both queues. Closing them on the
	// way out lets both dispatchers drain what was accepted, then stop.
	defer p.droppable.Close()
	defer p.guaranteed.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-p.inbound:
			if !ok {
				// Sender gone: the canonical shutdown trigger for the
				// whole pipeline.
				p.logger.Info("inbound command stream closed, shutting down")
				return
			}
			if command.Classify(c) == command.ClassDroppable {
				p.droppable.Push(c)
			} else {
				p.guaranteed.Push(c)
			}
		}
	}
}

// runSequential executes guaranteed commands strictly one at a time, in
// arrival order. It never reorders, coalesces, or drops.
func (p *Pipeline) runSequential(ctx context.Context, execCtx context.Context) {
	for {
		c, ok := p.guaranteed.Pop(ctx)
		if !ok {
			return
		}
		p.execute(execCtx, c)
	}
}

// runCoalescing delivers the most recent droppable command without letting
// slow delivery stall intake. It terminates purely on its queue closing.
func (p *Pipeline) runCoalescing(execCtx context.Context) {
	for {
		latest, ok := p.droppable.Pop(context.Background())
		if !ok {
			return
		}

		// Drain whatever else is already buffered, keeping only the
		// newest. Discarding the rest is normal operation, not a failure.
		for {
			c, ok := p.droppable.TryPop()
			if !ok {
				break
			}
			latest = c
		}

		// Fire and forget: the next burst must not wait on this call.
		go p.execute(execCtx, latest)
	}
}

// execute runs one command's remote call and reports the outcome to the
// diagnostics hub. Errors are terminal for this execution only; they never
// reach a dispatcher loop's control flow.
func (p *Pipeline) execute(ctx context.Context, c command.Command) {
	if err := p.exec.Execute(ctx, c); err != nil {
		log.WithCommand(c.Kind()).Error("command execution failed against live session",
			"error", err)
		if p.hub != nil {
			p.hub.Publish(events.TypeCommandFailed, map[string]string{
				"kind":  c.Kind(),
				"error": err.Error(),
			})
		}
		return
	}
	if p.hub != nil {
		p.hub.Publish(events.TypeCommandExecuted, map[string]string{
			"kind":  c.Kind(),
			"class": command.Classify(c).String(),
		})
	}
}
