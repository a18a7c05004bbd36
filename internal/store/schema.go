package store

import (
	"context"
	"fmt"
)

const schemaVersion = 1

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS capture_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        community_id TEXT NOT NULL,
        owner_id TEXT NOT NULL,
        workflow TEXT NOT NULL,
        rounds INTEGER NOT NULL DEFAULT 0,
        completed_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS capture_scores (
        result_id INTEGER NOT NULL REFERENCES capture_results(id) ON DELETE CASCADE,
        round INTEGER NOT NULL,
        name TEXT NOT NULL,
        score INTEGER NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS capture_gaps (
        result_id INTEGER NOT NULL REFERENCES capture_results(id) ON DELETE CASCADE,
        name TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_capture_results_community
        ON capture_results(community_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_capture_scores_result
        ON capture_scores(result_id, round)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&version)
	if err != nil {
		if _, insErr := s.db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, schemaVersion); insErr != nil {
			return fmt.Errorf("record schema version: %w", insErr)
		}
		return nil
	}
	if version != schemaVersion {
		return fmt.Errorf("unsupported schema version %d (expected %d); remove %s to rebuild", version, schemaVersion, s.path)
	}
	return nil
}
