package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Attempt is one execution attempt of one roster row. Rows that never reach
// dispatch (skipped or not due) are not recorded here.
type Attempt struct {
	ID          string
	ProcessName string
	Path        string
	Mode        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Success     bool
	Error       string
}

// EnsureSchema creates the attempts table if it doesn't exist.
func EnsureSchema(db *sql.DB) error {
	schema := `
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  process_name TEXT NOT NULL,
  path TEXT NOT NULL,
  mode TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  finished_at DATETIME NOT NULL,
  success INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_attempts_started ON attempts(process_name, started_at DESC);
`
	_, err := db.Exec(schema)
	return err
}

// Store keeps execution history in SQLite. A nil Store is valid and records
// nothing; history is strictly best-effort.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts one attempt and returns its id.
func (s *Store) Record(ctx context.Context, a Attempt) (string, error) {
	if s == nil || s.db == nil {
		return "", nil
	}
	id := a.ID
	if id == "" {
		id = "run_" + uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attempts (id,process_name,path,mode,started_at,finished_at,success,error)
VALUES (?,?,?,?,?,?,?,?)
`, id, a.ProcessName, a.Path, a.Mode, a.StartedAt, a.FinishedAt, a.Success, a.Error)
	return id, err
}

// Recent returns the newest attempts, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id,process_name,path,mode,started_at,finished_at,success,error
FROM attempts ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.ProcessName, &a.Path, &a.Mode, &a.StartedAt, &a.FinishedAt, &a.Success, &a.Error); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Prune drops attempts older than cutoff so the history file stays bounded.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
