package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS session_logs (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		entry_count    INTEGER NOT NULL,
		body           TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		UNIQUE(title)
	);

	CREATE INDEX IF NOT EXISTS idx_session_logs_created ON session_logs(created_at, id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create session_logs table: %w", err)
	}
	return nil
}
