package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS complaints (
	ref        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite archives complaints into a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed initialises) the complaint database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveComplaint(ctx context.Context, ref string, fields map[string]string) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal complaint: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO complaints (ref, payload) VALUES (?, ?) ON CONFLICT(ref) DO UPDATE SET payload = excluded.payload`,
		ref, string(payload),
	); err != nil {
		return fmt.Errorf("insert complaint %s: %w", ref, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
