package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS batches (
					id TEXT PRIMARY KEY,
					source TEXT NOT NULL,
					record_count INTEGER NOT NULL DEFAULT 0,
					manual_review_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_batches_created ON batches(created_at)`,

				`CREATE TABLE IF NOT EXISTS classification_results (
					batch_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					account_id TEXT,
					transaction_date DATETIME,
					currency TEXT,
					amount TEXT NOT NULL,
					product_code TEXT,
					description TEXT,
					category TEXT NOT NULL,
					regulatory_code TEXT NOT NULL,
					risk_level TEXT,
					resolution_tier TEXT NOT NULL,
					review_status TEXT NOT NULL,
					advisory_failure TEXT,
					risk_flag BOOLEAN NOT NULL DEFAULT 0,
					PRIMARY KEY (batch_id, transaction_id),
					FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_results_status ON classification_results(review_status)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add reviewer decisions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS reviews (
					batch_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					reviewer TEXT NOT NULL,
					approved BOOLEAN NOT NULL,
					category TEXT,
					regulatory_code TEXT,
					note TEXT,
					reviewed_at DATETIME NOT NULL,
					PRIMARY KEY (batch_id, transaction_id),
					FOREIGN KEY (batch_id, transaction_id)
						REFERENCES classification_results(batch_id, transaction_id) ON DELETE CASCADE
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		s.logger.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
