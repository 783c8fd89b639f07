package control

// InputRequest is the body of POST /input.
type InputRequest struct {
	Keys string `json:"keys"`
}

// OpenRequest is the body of POST /open.
type OpenRequest struct {
	Path string `json:"path"`
}

// ResizeRequest is the body of POST /resize.
type ResizeRequest struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// ScrollRequest is the body of POST /scroll.
type ScrollRequest struct {
	Direction string `json:"direction"`
	Grid      uint64 `json:"grid"`
	Col       uint32 `json:"col"`
	Row       uint32 `json:"row"`
}

// FocusRequest is the body of POST /focus.
type FocusRequest struct {
	Gained bool `json:"gained"`
}

// SetSettingRequest is the body of PUT /settings/{name}.
type SetSettingRequest struct {
	Value string `json:"value"`
}

// SettingEntry is one row of GET /settings.
type SettingEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AcceptedResponse acknowledges an accepted command.
type AcceptedResponse struct {
	Status  string `json:"status"`
	Command string `json:"command"`
}

// HealthzResponse is the payload of GET /healthz.
type HealthzResponse struct {
	Status          string `json:"status"`
	InstanceID      string `json:"instance_id"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	SessionRunID    string `json:"session_run_id,omitempty"`
	SessionPid      int    `json:"session_pid,omitempty"`
	DroppableDepth  int    `json:"droppable_depth"`
	GuaranteedDepth int    `json:"guaranteed_depth"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
