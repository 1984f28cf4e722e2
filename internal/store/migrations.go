package store

import (
	"fmt"
)

// migrate runs all pending migrations
func (s *Store) migrate() error {
	// Create migrations table if it doesn't exist
	createMigrationsTableSQL := `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			version INTEGER NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := s.db.Exec(createMigrationsTableSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get the current schema version
	var currentVersion int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	s.logger.Debug("current schema version", "version", currentVersion)

	// Define all migrations
	migrations := []struct {
		version int
		sql     string
	}{
		{
			version: 1,
			sql: `
				CREATE TABLE operations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					command TEXT NOT NULL,
					changer_device TEXT NOT NULL,
					slot INTEGER DEFAULT 0,
					drive_device TEXT,
					drive_index INTEGER DEFAULT 0,
					volume TEXT,
					job_id TEXT,
					job_name TEXT,
					status TEXT DEFAULT 'success',
					exit_code INTEGER DEFAULT 0,
					output TEXT,
					start_time DATETIME NOT NULL,
					end_time DATETIME
				);

				CREATE INDEX idx_operations_command ON operations(command);
				CREATE INDEX idx_operations_start_time ON operations(start_time);
			`,
		},
	}

	// Apply pending migrations in order
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec("INSERT INTO migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		s.logger.Debug("applied migration", "version", m.version)
	}

	return nil
}
