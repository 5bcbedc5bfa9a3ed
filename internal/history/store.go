// Package history records every generated document saved to disk.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Entry struct {
	ID       int64
	Tool     string
	Label    string
	Filename string
	Path     string
	Bytes    int
	SavedAt  time.Time
}

type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or migrates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tool TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			path TEXT NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS artifacts_tool ON artifacts (tool);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history store migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores e and returns it with ID and SavedAt filled in.
func (s *Store) Record(e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return e, nil
	}
	e.Path = filepath.Clean(strings.TrimSpace(e.Path))
	if e.Filename == "" {
		e.Filename = filepath.Base(e.Path)
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = s.now()
	}
	e.SavedAt = e.SavedAt.UTC()
	res, err := s.db.Exec(`INSERT INTO artifacts (tool, label, filename, path, bytes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Tool, e.Label, e.Filename, e.Path, e.Bytes, e.SavedAt.Format(time.RFC3339Nano))
	if err != nil {
		return e, err
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return e, err
	}
	return e, nil
}

// Recent lists the newest entries first; tool filters when non-empty.
func (s *Store) Recent(tool string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, tool, label, filename, path, bytes, saved_at FROM artifacts`
	args := []any{}
	if tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, tool)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			saved string
		)
		if err := rows.Scan(&e.ID, &e.Tool, &e.Label, &e.Filename, &e.Path, &e.Bytes, &saved); err != nil {
			return nil, err
		}
		if e.SavedAt, err = time.Parse(time.RFC3339Nano, saved); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Counts returns the number of saved artifacts per tool.
func (s *Store) Counts() (map[string]int, error) {
	counts := map[string]int{}
	if s == nil || s.db == nil {
		return counts, nil
	}
	rows, err := s.db.Query(`SELECT tool, COUNT(*) FROM artifacts GROUP BY tool`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tool string
			n    int
		)
		if err := rows.Scan(&tool, &n); err != nil {
			return nil, err
		}
		counts[tool] = n
	}
	return counts, rows.Err()
}

func (s *Store) Remove(id int64) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM artifacts WHERE id = ?`, id)
	return err
}

// Prune keeps the newest keep entries and deletes the rest.
func (s *Store) Prune(keep int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`DELETE FROM artifacts WHERE id NOT IN (
		SELECT id FROM artifacts ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	return n, tx.Commit()
}
