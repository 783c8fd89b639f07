// Package state persists daemon state that must survive restarts: the last
// known grid geometry per instance and a log of editor session runs.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: time.Now,
	}
}

// Geometry is the last grid size delivered to the editor for an instance.
type Geometry struct {
	Width  uint32
	Height uint32
}

// SessionRecord is one editor subprocess run.
type SessionRecord struct {
	RunID      string
	InstanceID string
	EditorBin  string
	Pid        int
	StartedAt  time.Time
	EndedAt    *time.Time
	ExitError  string
}

// SaveGeometry upserts the grid geometry for an instance.
func (s *Store) SaveGeometry(ctx context.Context, instanceID string, g Geometry) error {
	if instanceID == "" {
		return fmt.Errorf("instance id is empty")
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO window_state(instance_id, grid_width, grid_height, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(instance_id) DO UPDATE SET
  grid_width = excluded.grid_width,
  grid_height = excluded.grid_height,
  updated_at = excluded.updated_at;
`, instanceID, g.Width, g.Height, now)
	if err != nil {
		return fmt.Errorf("upsert window state: %w", err)
	}
	return nil
}

// LoadGeometry returns the stored geometry for an instance, or ok=false if
// none has been recorded yet.
func (s *Store) LoadGeometry(ctx context.Context, instanceID string) (Geometry, bool, error) {
	if instanceID == "" {
		return Geometry{}, false, fmt.Errorf("instance id is empty")
	}

	var g Geometry
	err := s.db.QueryRowContext(ctx,
		"SELECT grid_width, grid_height FROM window_state WHERE instance_id = ?;",
		instanceID).Scan(&g.Width, &g.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return Geometry{}, false, nil
	}
	if err != nil {
		return Geometry{}, false, fmt.Errorf("read window state: %w", err)
	}
	return g, true, nil
}

// RecordSessionStart logs the start of an editor subprocess run.
func (s *Store) RecordSessionStart(ctx context.Context, runID, instanceID, editorBin string, pid int) error {
	if runID == "" {
		return fmt.Errorf("run id is empty")
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO session_log(run_id, instance_id, editor_bin, pid, started_at)
VALUES(?, ?, ?, ?, ?);
`, runID, instanceID, editorBin, pid, now)
	if err != nil {
		return fmt.Errorf("insert session log: %w", err)
	}
	return nil
}

// RecordSessionEnd marks a run as finished. exitErr may be nil for a clean
// exit.
func (s *Store) RecordSessionEnd(ctx context.Context, runID string, exitErr error) error {
	if runID == "" {
		return fmt.Errorf("run id is empty")
	}

	var errText string
	if exitErr != nil {
		errText = exitErr.Error()
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
UPDATE session_log SET ended_at = ?, exit_error = NULLIF(?, '') WHERE run_id = ?;
`, now, errText, runID)
	if err != nil {
		return fmt.Errorf("update session log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session run %q not found", runID)
	}
	return nil
}

// RecentSessions returns up to limit runs for an instance, newest first.
func (s *Store) RecentSessions(ctx context.Context, instanceID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, instance_id, editor_bin, pid, started_at, ended_at, COALESCE(exit_error, '')
FROM session_log WHERE instance_id = ?
ORDER BY started_at DESC LIMIT ?;
`, instanceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session log: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started string
		var ended sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.InstanceID, &rec.EditorBin, &rec.Pid,
			&started, &ended, &rec.ExitError); err != nil {
			return nil, fmt.Errorf("scan session log: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			rec.StartedAt = t
		}
		if ended.Valid {
			if t, err := time.Parse(time.RFC3339Nano, ended.String); err == nil {
				rec.EndedAt = &t
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
