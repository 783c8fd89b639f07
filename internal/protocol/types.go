package protocol

import "fmt"

// Request is one procedure call, written to the editor process as a single
// JSON line on stdin.
type Request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Response is the editor's reply to one Request, read as a single JSON line
// from stdout. Exactly one of Result or Error is meaningful.
type Response struct {
	ID     int64      `json:"id"`
	Result any        `json:"result,omitempty"`
	Error  *CallError `json:"error,omitempty"`
}

// CallError is a remote call failure as reported by the editor.
type CallError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("remote call failed (code %d): %s", e.Code, e.Message)
}

// Err returns the response error, or nil on success.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}
