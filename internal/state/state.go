// Package state remembers per-file view state (cursor, folds, layout mode)
// between runs in a small SQLite database.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS view_state (
    path          TEXT PRIMARY KEY,
    size          INTEGER NOT NULL,
    cursor_offset INTEGER NOT NULL DEFAULT 0,
    folds         TEXT NOT NULL DEFAULT '[]',
    pretty        INTEGER NOT NULL DEFAULT 1,
    updated_at    INTEGER NOT NULL            -- UnixNano
);

CREATE INDEX IF NOT EXISTS idx_view_state_updated ON view_state(updated_at);
`

// ViewState is what is remembered about one file.
type ViewState struct {
	Path         string
	Size         int64
	CursorOffset int
	Folds        []int // start offsets of folded blocks
	Pretty       bool
	UpdatedAt    time.Time
}

// Store is a view state database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the remembered state for path. A record saved for a file of a
// different size is stale and reported as not found.
func (s *Store) Load(path string, size int64) (ViewState, bool, error) {
	var (
		vs     ViewState
		folds  string
		pretty int
		nanos  int64
	)
	err := s.db.QueryRow(
		`SELECT path, size, cursor_offset, folds, pretty, updated_at FROM view_state WHERE path = ?`,
		path,
	).Scan(&vs.Path, &vs.Size, &vs.CursorOffset, &folds, &pretty, &nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return ViewState{}, false, nil
	}
	if err != nil {
		return ViewState{}, false, fmt.Errorf("load view state for %s: %w", path, err)
	}
	if vs.Size != size {
		return ViewState{}, false, nil
	}
	if err := json.Unmarshal([]byte(folds), &vs.Folds); err != nil {
		return ViewState{}, false, fmt.Errorf("decode folds for %s: %w", path, err)
	}
	vs.Pretty = pretty != 0
	vs.UpdatedAt = time.Unix(0, nanos)
	return vs, true, nil
}

// Save inserts or replaces the state for vs.Path. A zero UpdatedAt is set to now.
func (s *Store) Save(vs ViewState) error {
	if vs.Path == "" {
		return errors.New("save view state: empty path")
	}
	if vs.UpdatedAt.IsZero() {
		vs.UpdatedAt = time.Now()
	}
	folds := vs.Folds
	if folds == nil {
		folds = []int{}
	}
	data, err := json.Marshal(folds)
	if err != nil {
		return fmt.Errorf("encode folds: %w", err)
	}
	pretty := 0
	if vs.Pretty {
		pretty = 1
	}
	_, err = s.db.Exec(`
		INSERT INTO view_state (path, size, cursor_offset, folds, pretty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			cursor_offset = excluded.cursor_offset,
			folds = excluded.folds,
			pretty = excluded.pretty,
			updated_at = excluded.updated_at`,
		vs.Path, vs.Size, vs.CursorOffset, string(data), pretty, vs.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save view state for %s: %w", vs.Path, err)
	}
	return nil
}

// Prune deletes records not updated since before. It returns the number removed.
func (s *Store) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM view_state WHERE updated_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune view state: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
