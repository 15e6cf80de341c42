package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps outcomes in a shared PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool and creates the reply_outcomes table.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reply_outcomes (
			id              BIGSERIAL PRIMARY KEY,
			ts              TIMESTAMPTZ NOT NULL,
			content_id      TEXT NOT NULL,
			content_text    TEXT NOT NULL,
			generated_reply TEXT NOT NULL,
			success         BOOLEAN NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reply_outcomes_content ON reply_outcomes(content_id)`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) AppendOutcome(ctx context.Context, o Outcome) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reply_outcomes (ts, content_id, content_text, generated_reply, success) VALUES ($1, $2, $3, $4, $5)`,
		o.Timestamp.UTC(), o.ContentID, o.ContentText, o.GeneratedReply, o.Success)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadOutcomes(ctx context.Context) ([]Outcome, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, content_id, content_text, generated_reply, success FROM reply_outcomes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.Timestamp, &o.ContentID, &o.ContentText, &o.GeneratedReply, &o.Success); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
