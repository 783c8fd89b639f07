package control

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/glazier/internal/command"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		InstanceID:    s.instanceID,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.sess != nil {
		resp.SessionRunID = s.sess.RunID()
		resp.SessionPid = s.sess.Pid()
	}
	if s.depths != nil {
		resp.DroppableDepth, resp.GuaranteedDepth = s.depths()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleInput handles POST /input.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Keys == "" {
		s.writeError(w, http.StatusBadRequest, "keys is required")
		return
	}

	s.accept(w, r, command.Keyboard{Input: req.Keys})
}

// handleOpen handles POST /open.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if !filepath.IsAbs(req.Path) {
		s.writeError(w, http.StatusBadRequest, "path must be absolute")
		return
	}

	s.accept(w, r, command.FileDrop{Path: req.Path})
}

// handleResize handles POST /resize.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Width == 0 || req.Height == 0 {
		s.writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	s.accept(w, r, command.Resize{Width: req.Width, Height: req.Height})
}

// handleScroll handles POST /scroll.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req ScrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	switch req.Direction {
	case command.ScrollUp, command.ScrollDown, command.ScrollLeft, command.ScrollRight:
	default:
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("direction must be one of up, down, left, right (got %q)", req.Direction))
		return
	}

	s.accept(w, r, command.Scroll{
		Direction: req.Direction,
		Grid:      req.Grid,
		Col:       req.Col,
		Row:       req.Row,
	})
}

// handleFocus handles POST /focus.
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var c command.Command
	if req.Gained {
		c = command.FocusGained{}
	} else {
		c = command.FocusLost{}
	}
	s.accept(w, r, c)
}

// handleQuit handles POST /quit.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	s.accept(w, r, command.Quit{})
}

// handleListSettings handles GET /settings.
func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.writeError(w, http.StatusNotFound, "settings registry not configured")
		return
	}

	names := s.registry.Names()
	entries := make([]SettingEntry, 0, len(names))
	for _, name := range names {
		value, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		entries = append(entries, SettingEntry{Name: name, Value: value})
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// handleSetSetting handles PUT /settings/{name}.
func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.writeError(w, http.StatusNotFound, "settings registry not configured")
		return
	}

	name := chi.URLParam(r, "name")
	var req SetSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.registry.Set(name, req.Value); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SettingEntry{Name: name, Value: req.Value})
}

// accept submits a command and acknowledges it. Acceptance means queued,
// not executed; delivery follows the command's class semantics.
func (s *Server) accept(w http.ResponseWriter, r *http.Request, c command.Command) {
	if err := s.submit(r.Context(), c); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "pipeline unavailable")
		return
	}
	s.writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted", Command: c.Kind()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
