package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Journal backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// DefaultSQLitePath is used by the CLI when no path is given.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_playlist", "journal.db")
}

// OpenSQLite opens (or creates) the journal database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("journal: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS harvests (
		id          TEXT PRIMARY KEY,
		locator     TEXT NOT NULL,
		parser      TEXT,
		count       INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		error       TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`)
	return err
}

// Record inserts e.
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	e = normalize(e)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO harvests (id, locator, parser, count, status, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Locator, e.Parser, e.Count, string(e.Status), e.Error,
		e.Duration.Milliseconds(), e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, locator, parser, count, status, error, duration_ms, created_at
		 FROM harvests ORDER BY rowid DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			parser     sql.NullString
			errText    sql.NullString
			status     string
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.Locator, &parser, &e.Count, &status, &errText, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Parser = parser.String
		e.Error = errText.String
		e.Status = Status(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
