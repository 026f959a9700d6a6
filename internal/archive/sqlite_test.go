package archive

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSaveAndUpsert(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "complaints.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	fields := map[string]string{
		"name":        "Neel Patel",
		"amount_lost": "15000",
	}
	require.NoError(t, s.SaveComplaint(ctx, "fraud-abc123", fields))

	var payload string
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT payload FROM complaints WHERE ref = ?`, "fraud-abc123").Scan(&payload))

	var stored map[string]string
	require.NoError(t, json.Unmarshal([]byte(payload), &stored))
	assert.Equal(t, fields, stored)

	// Saving the same ref again replaces the payload.
	fields["amount_lost"] = "20000"
	require.NoError(t, s.SaveComplaint(ctx, "fraud-abc123", fields))

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM complaints`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNoopArchiver(t *testing.T) {
	var a Archiver = Noop{}
	assert.NoError(t, a.SaveComplaint(context.Background(), "fraud-x", nil))
	assert.NoError(t, a.Close())
}
