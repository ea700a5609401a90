// Package journal provides SQLite-based persistence for executed tool calls.
// The database is opened lazily and created on first use.
// If opening the DB or executing queries fails, the journal falls back to in-memory storage.
package journal

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/tailortalk/internal/logger"
)

// Journal records tool executions.
type Journal struct {
	path string

	mu      sync.Mutex
	entries []Entry // in-memory fallback

	dbOnce  sync.Once
	db      *sql.DB
	initErr error
}

// New returns a journal backed by the SQLite file at path. An empty path
// keeps everything in memory.
func New(path string) *Journal {
	return &Journal{path: path}
}

// initDB lazily opens the SQLite database and creates the tool_calls table if it doesn't exist.
func (j *Journal) initDB() {
	if j.path == "" {
		j.initErr = errNoPath
		return
	}
	db, err := sql.Open("sqlite", "file:"+j.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		j.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory journal", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS tool_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		tool TEXT,
		args TEXT,
		output TEXT,
		outcome TEXT,
		created_at DATETIME
	);`); err != nil {
		j.initErr = err
		_ = db.Close()
		logger.L.Warn("sqlite table creation failed; using in-memory journal", "error", err)
		return
	}
	j.db = db
	logger.L.Info("sqlite journal initialized", "path", j.path)
}

func (j *Journal) usable() bool {
	j.dbOnce.Do(j.initDB)
	return j.initErr == nil && j.db != nil
}

// Record persists an entry. When the database is unavailable or the insert
// fails the entry is kept in memory instead.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if j.usable() {
		_, err := j.db.ExecContext(ctx,
			`INSERT INTO tool_calls (session_id, tool, args, output, outcome, created_at) VALUES (?,?,?,?,?,?);`,
			e.SessionID, e.Tool, e.Args, e.Output, string(e.Outcome), e.CreatedAt)
		if err == nil {
			return nil
		}
		logger.L.Error("failed to store tool call in sqlite; falling back to memory", "error", err)
	}

	j.mu.Lock()
	e.ID = int64(len(j.entries) + 1)
	j.entries = append(j.entries, e)
	j.mu.Unlock()
	return nil
}

// List returns the most recent entries, oldest first. An empty sessionID
// matches every session; limit <= 0 means no limit.
func (j *Journal) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	var out []Entry
	if j.usable() {
		if limit <= 0 {
			limit = -1
		}
		rows, err := j.db.QueryContext(ctx, `SELECT id, session_id, tool, args, output, outcome, created_at FROM (
			SELECT * FROM tool_calls WHERE (? = '' OR session_id = ?) ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC;`, sessionID, sessionID, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			var outcome string
			if err := rows.Scan(&e.ID, &e.SessionID, &e.Tool, &e.Args, &e.Output, &outcome, &e.CreatedAt); err != nil {
				return nil, err
			}
			e.Outcome = Outcome(outcome)
			out = append(out, e)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	j.mu.Lock()
	for _, e := range j.entries {
		if sessionID == "" || e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	j.mu.Unlock()

	// Entries kept in memory after a failed insert interleave with stored ones.
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Close releases the database handle, if one was opened.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
