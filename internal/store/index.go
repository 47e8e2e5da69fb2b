// Package store provides a SQLite-backed index of scanned session
// transcripts, so listing doesn't reread large JSONL files on every run.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Index caches per-transcript display metadata keyed by file path.
// An entry is valid only while the file's mtime and size both match.
type Index struct {
	db *sql.DB
}

// Entry holds the cached metadata for one transcript.
type Entry struct {
	Path         string
	MtimeNs      int64
	SizeBytes    int64
	Cwd          string
	MessageCount int
}

// Open opens or creates the index database at the given path.
func Open(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening index db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the index database.
func (x *Index) Close() error {
	return x.db.Close()
}

// Get returns the cached entry for a path, if present.
func (x *Index) Get(path string) (Entry, bool, error) {
	row := x.db.QueryRow(
		`SELECT file_path, mtime_ns, size_bytes, cwd, message_count
		 FROM session_index WHERE file_path = ?`, path)

	var e Entry
	var cwd sql.NullString
	var count sql.NullInt64
	err := row.Scan(&e.Path, &e.MtimeNs, &e.SizeBytes, &cwd, &count)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if cwd.Valid {
		e.Cwd = cwd.String
	}
	if count.Valid {
		e.MessageCount = int(count.Int64)
	}
	return e, true, nil
}

// Put inserts or replaces the entry for a path.
func (x *Index) Put(e Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := x.db.Exec(
		`INSERT OR REPLACE INTO session_index
		 (file_path, mtime_ns, size_bytes, cwd, message_count, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Path, e.MtimeNs, e.SizeBytes, e.Cwd, e.MessageCount, now)
	return err
}

// Prune removes entries whose files are gone from the given live set.
func (x *Index) Prune(livePaths map[string]bool) error {
	rows, err := x.db.Query("SELECT file_path FROM session_index")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		if !livePaths[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, path := range stale {
		if _, err := x.db.Exec("DELETE FROM session_index WHERE file_path = ?", path); err != nil {
			return err
		}
	}
	return nil
}
