package session

import "context"

// API is the remote-session surface the command layer executes against. The
// implementation must tolerate concurrent calls from multiple goroutines;
// the dispatch pipeline shares one session across every execution task.
type API interface {
	// Command runs an ex command in the editor.
	Command(ctx context.Context, cmd string) error
	// Input forwards keyboard input notation verbatim.
	Input(ctx context.Context, keys string) error
	// InputMouse forwards a mouse event for a grid cell.
	InputMouse(ctx context.Context, button, action, modifier string, grid uint64, row, col uint32) error
	// TryResize requests a UI grid resize.
	TryResize(ctx context.Context, width, height int64) error
	// ErrWriteln writes a message to the editor's error channel.
	ErrWriteln(ctx context.Context, msg string) error
}

// Remote method names understood by the embedded editor.
const (
	methodCommand    = "nvim_command"
	methodInput      = "nvim_input"
	methodInputMouse = "nvim_input_mouse"
	methodTryResize  = "nvim_ui_try_resize"
	methodErrWriteln = "nvim_err_writeln"
)
