package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mattjoyce/glazier/internal/protocol"
)

// ErrClosed is returned for calls issued after the session ended.
var ErrClosed = errors.New("session closed")

// Client is a line-oriented RPC client over the editor's stdio. One writer
// goroutine at a time holds writeMu; a single reader goroutine correlates
// responses to pending calls by id. Safe for concurrent use.
type Client struct {
	logger *slog.Logger

	writeMu sync.Mutex
	stdin   io.Writer

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan *protocol.Response

	done     chan struct{}
	readErr  error
	doneOnce sync.Once
}

func newClient(stdin io.Writer, stdout io.Reader, logger *slog.Logger) *Client {
	c := &Client{
		logger:  logger,
		stdin:   stdin,
		pending: make(map[int64]chan *protocol.Response),
		done:    make(chan struct{}),
	}
	go c.readLoop(stdout)
	return c
}

// Done is closed once the response stream has ended. Calls issued after that
// fail with ErrClosed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) call(ctx context.Context, method string, params ...any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	id := c.nextID.Add(1)
	ch := make(chan *protocol.Response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := &protocol.Request{ID: id, Method: method, Params: params}
	if params == nil {
		req.Params = []any{}
	}

	c.writeMu.Lock()
	err := protocol.EncodeRequest(c.stdin, req)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case resp := <-ch:
		if err := resp.Err(); err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
		return nil
	}
}

func (c *Client) readLoop(stdout io.Reader) {
	dec := json.NewDecoder(stdout)
	for {
		resp, err := protocol.DecodeResponse(dec)
		if err != nil {
			if err != io.EOF {
				c.logger.Warn("response stream ended abnormally", "error", err)
			}
			c.shutdown(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		c.mu.Unlock()
		if !ok {
			// Caller gave up (context cancelled) or the editor replied
			// to an id it was never sent.
			c.logger.Debug("dropping response with no pending call", "id", resp.ID)
			continue
		}
		ch <- resp
	}
}

func (c *Client) shutdown(err error) {
	c.doneOnce.Do(func() {
		c.readErr = err
		close(c.done)
	})
}

// Command runs an ex command in the editor.
func (c *Client) Command(ctx context.Context, cmd string) error {
	return c.call(ctx, methodCommand, cmd)
}

// Input forwards keyboard input notation verbatim.
func (c *Client) Input(ctx context.Context, keys string) error {
	return c.call(ctx, methodInput, keys)
}

// InputMouse forwards a mouse event for a grid cell. Row comes before
// column on the wire, matching the editor's API.
func (c *Client) InputMouse(ctx context.Context, button, action, modifier string, grid uint64, row, col uint32) error {
	return c.call(ctx, methodInputMouse, button, action, modifier, int64(grid), int64(row), int64(col))
}

// TryResize requests a UI grid resize.
func (c *Client) TryResize(ctx context.Context, width, height int64) error {
	return c.call(ctx, methodTryResize, width, height)
}

// ErrWriteln writes a message to the editor's error channel.
func (c *Client) ErrWriteln(ctx context.Context, msg string) error {
	return c.call(ctx, methodErrWriteln, msg)
}
