// Package dispatch is the command delivery pipeline between the front-end
// command stream and the editor session.
//
// Commands arrive on a single raw channel and are routed by delivery class
// into two unbounded FIFO queues:
//
//   - Droppable commands (resize, scroll, drag) carry pure state where only
//     the newest value matters. The coalescing dispatcher collapses each
//     burst to the single most recent command and hands it to a
//     fire-and-forget execution goroutine, so slow remote calls never stall
//     intake.
//   - Guaranteed commands (everything else) are executed strictly one at a
//     time, in submission order, each completing before the next begins.
//
// Ordering is guaranteed only within the guaranteed path. There is no
// ordering between the two paths, nor among concurrently spawned droppable
// executions.
//
// Shutdown is cooperative: closing the raw inbound channel closes both
// internal queues; each dispatcher drains what was already accepted and
// then terminates. Execution failures
// never feed back into loop control flow; a fatal call failure aborts only
// that one execution and is logged as an invariant violation. Spawned
// droppable executions are not tracked or awaited at shutdown.
package dispatch
