package sqlx

import (
	"context"
	"fmt"

	"arcadeboard/core"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS guesses (
		id VARCHAR(36) PRIMARY KEY,
		player_name TEXT NOT NULL,
		guessed_number BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guesses_created_at ON guesses (created_at)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id VARCHAR(36) PRIMARY KEY,
		player_name TEXT NOT NULL,
		time_seconds BIGINT NOT NULL,
		game_type VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_game_time ON scores (game_type, time_seconds)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table definitions.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS guesses (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		player_name TEXT NOT NULL,
		guessed_number BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_guesses_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		player_name TEXT NOT NULL,
		time_seconds BIGINT NOT NULL,
		game_type VARCHAR(32) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_scores_game_time (game_type, time_seconds)
	)`,
}

// Schema returns the idempotent DDL statements for driver.
func Schema(driver Driver) []string {
	if driver == DriverMySQL {
		return mysqlSchema
	}
	return postgresSchema
}

// Migrate creates the guesses and scores tables and their indexes if missing.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range Schema(s.driver) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return core.Unavailable(fmt.Sprintf("migrate step %d", i+1), err)
		}
	}
	return nil
}
