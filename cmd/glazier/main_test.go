package main

import (
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/glazier/internal/state"
)

func TestFormatSessions(t *testing.T) {
	started := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	ended := started.Add(42 * time.Second)
	crashed := started.Add(3 * time.Second)

	recs := []state.SessionRecord{
		{RunID: "run-live", Pid: 3001, StartedAt: started},
		{RunID: "run-clean", Pid: 3002, StartedAt: started, EndedAt: &ended},
		{RunID: "run-crash", Pid: 3003, StartedAt: started, EndedAt: &crashed, ExitError: "exit status 1"},
	}

	out := formatSessions(recs)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), out)
	}

	for _, col := range []string{"RUN", "STARTED", "PID", "DURATION", "RESULT"} {
		if !strings.Contains(lines[0], col) {
			t.Errorf("header missing %q: %s", col, lines[0])
		}
	}

	if !strings.Contains(lines[1], "running") || !strings.Contains(lines[1], "2026-08-20 09:30:00") {
		t.Errorf("live run row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "42s") || !strings.Contains(lines[2], "clean") {
		t.Errorf("clean run row = %q", lines[2])
	}
	if !strings.Contains(lines[3], "exit status 1") {
		t.Errorf("crashed run row = %q", lines[3])
	}
}
