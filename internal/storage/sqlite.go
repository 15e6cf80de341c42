package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps outcomes in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database file and its outcomes table.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS outcomes (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       TEXT NOT NULL,
			content_id      TEXT NOT NULL,
			content_text    TEXT NOT NULL,
			generated_reply TEXT NOT NULL,
			success         INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_content ON outcomes(content_id);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendOutcome(ctx context.Context, o Outcome) error {
	success := 0
	if o.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (timestamp, content_id, content_text, generated_reply, success) VALUES (?, ?, ?, ?, ?)`,
		o.Timestamp.UTC().Format(time.RFC3339Nano), o.ContentID, o.ContentText, o.GeneratedReply, success)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadOutcomes(ctx context.Context) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, content_id, content_text, generated_reply, success FROM outcomes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			ts      string
			o       Outcome
			success int
		)
		if err := rows.Scan(&ts, &o.ContentID, &o.ContentText, &o.GeneratedReply, &success); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		o.Success = success == 1
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
