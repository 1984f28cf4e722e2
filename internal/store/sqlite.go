// Package store keeps a queryable history of changer operations in SQLite.
// History is advisory: a failure to record never fails the operation that
// already ran against the hardware.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("operation history store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// RecordOperation inserts a completed Operation and sets its ID
func (s *Store) RecordOperation(op *Operation) error {
	const query = `
		INSERT INTO operations (
			command, changer_device, slot, drive_device, drive_index,
			volume, job_id, job_name, status, exit_code, output,
			start_time, end_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		op.Command, op.ChangerDevice, op.Slot, op.DriveDevice, op.DriveIndex,
		op.Volume, op.JobID, op.JobName, op.Status, op.ExitCode, op.Output,
		op.StartTime, op.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	op.ID = id
	return nil
}

// ListOperations retrieves recent operations, newest first, optionally
// filtered by command
func (s *Store) ListOperations(command string, limit int) ([]Operation, error) {
	query := `
		SELECT id, command, changer_device, slot, drive_device, drive_index,
		       volume, job_id, job_name, status, exit_code, output,
		       start_time, end_time
		FROM operations
	`
	var args []interface{}

	if command != "" {
		query += " WHERE command = ?"
		args = append(args, command)
	}
	query += " ORDER BY start_time DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		if err := rows.Scan(
			&op.ID, &op.Command, &op.ChangerDevice, &op.Slot, &op.DriveDevice,
			&op.DriveIndex, &op.Volume, &op.JobID, &op.JobName, &op.Status,
			&op.ExitCode, &op.Output, &op.StartTime, &op.EndTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}

	return ops, nil
}
