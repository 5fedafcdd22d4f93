package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS exercise_history (
		id           UUID PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		session_id   TEXT NOT NULL DEFAULT '',
		language     TEXT NOT NULL,
		difficulty   TEXT NOT NULL,
		target_words TEXT[] NOT NULL DEFAULT '{}',
		sentence     TEXT NOT NULL DEFAULT '',
		fingerprint  TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exercise_history_user_lang_created
		ON exercise_history (user_id, language, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_exercise_history_target_words
		ON exercise_history USING GIN (target_words)`,
	`CREATE TABLE IF NOT EXISTS word_mastery (
		user_id          BIGINT NOT NULL,
		word             TEXT NOT NULL,
		language         TEXT NOT NULL,
		review_count     INT NOT NULL DEFAULT 0,
		correct_count    INT NOT NULL DEFAULT 0,
		mastery_level    INT NOT NULL DEFAULT 0,
		last_reviewed_at TIMESTAMPTZ,
		PRIMARY KEY (user_id, word, language)
	)`,
}

// Migrate applies the schema statements. Every statement is idempotent so the
// call is safe on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
