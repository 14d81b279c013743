package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/config"
)

// NewTestDB creates a bootstrapped in-memory database for testing.
func NewTestDB(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()

	db, err := NewSQLite(ctx, config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err, "failed to open test database")

	err = Bootstrap(ctx, db, zap.NewNop())
	require.NoError(t, err, "failed to bootstrap schema")

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestBootstrapCreatesTicketTable(t *testing.T) {
	db := NewTestDB(t)

	var count int
	err := db.DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tickets'").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "tickets table not found")
}

func TestBootstrapIsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx,
		`INSERT INTO tickets (title, submitted_by, thread_id, status, created_at) VALUES (?, ?, ?, 'open', CURRENT_TIMESTAMP)`,
		"Keep me", "alice", "thread-1")
	require.NoError(t, err)

	// A second bootstrap must not recreate or clear the table.
	require.NoError(t, Bootstrap(ctx, db, zap.NewNop()))

	var count int
	err = db.DB.QueryRow("SELECT COUNT(*) FROM tickets").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestPing(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.Ping(context.Background()))
}
