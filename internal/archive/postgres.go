package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS complaints (
	ref        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Postgres archives complaints into a Postgres database.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and ensures the complaints table exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) SaveComplaint(ctx context.Context, ref string, fields map[string]string) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal complaint: %w", err)
	}
	if _, err := p.pool.Exec(ctx,
		`INSERT INTO complaints (ref, payload) VALUES ($1, $2) ON CONFLICT (ref) DO UPDATE SET payload = EXCLUDED.payload`,
		ref, payload,
	); err != nil {
		return fmt.Errorf("insert complaint %s: %w", ref, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
