// Package audit keeps a local append-only journal of every mutation issued
// from this terminal. It answers "what did I change and when" without
// asking the backend; `backoffice history` reads it back.
package audit

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const journalFileName = "audit.sqlite"

// Entry is one recorded mutation.
type Entry struct {
	ID       int64     `json:"id"`
	At       time.Time `json:"at"`
	Resource string    `json:"resource"`
	Op       string    `json:"op"`
	TargetID string    `json:"targetId,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	OK       bool      `json:"ok"`
}

// Journal wraps the sqlite file. A nil Journal is a no-op sink so callers
// never have to guard recording.
type Journal struct {
	db *sql.DB
}

// Open creates/opens the journal under dir.
func Open(ctx context.Context, dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, journalFileName))
	if err != nil {
		return nil, err
	}
	// WAL: the TUI appends while a second shell may be reading history.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	const schema = `
CREATE TABLE IF NOT EXISTS mutations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	resource TEXT NOT NULL,
	op TEXT NOT NULL,
	target_id TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	ok INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mutations_resource ON mutations(resource);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one entry. Best effort by design: journal failures must
// never fail the mutation that triggered them, so errors are returned for
// logging only.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil || j.db == nil {
		return nil
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO mutations (at, resource, op, target_id, detail, ok) VALUES (?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), e.Resource, e.Op, e.TargetID, e.Detail, boolInt(e.OK))
	return err
}

// Recent returns the newest entries, newest first. resource filters when
// non-empty; limit caps the result (<=0 means 50).
func (j *Journal) Recent(ctx context.Context, resource string, limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, at, resource, op, target_id, detail, ok FROM mutations`
	var args []any
	if strings.TrimSpace(resource) != "" {
		q += ` WHERE resource = ?`
		args = append(args, strings.TrimSpace(resource))
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		var ok int
		if err := rows.Scan(&e.ID, &at, &e.Resource, &e.Op, &e.TargetID, &e.Detail, &ok); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = ts
		}
		e.OK = ok != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
