package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const ticketSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    assigned_team TEXT NOT NULL DEFAULT '',
    priority TEXT NOT NULL DEFAULT '',
    deadline TEXT NOT NULL DEFAULT '',
    submitted_by TEXT NOT NULL,
    thread_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tickets_thread ON tickets(thread_id);
`

// Bootstrap idempotently ensures the ticket schema exists. Safe to run
// on every process start.
func Bootstrap(ctx context.Context, db *SQLite, logger *zap.Logger) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("no database handle available")
	}

	if _, err := db.DB.ExecContext(ctx, ticketSchema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	logger.Info("ticket schema ensured")
	return nil
}
