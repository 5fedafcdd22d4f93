// Package snapshot copies drill history out of the primary database into a
// portable SQLite archive, mainly for offline analysis and ad-hoc debugging.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"             // postgres driver for the source side
	_ "github.com/mattn/go-sqlite3" // sqlite driver for the archive side
)

// Stats reports how many rows landed in the archive.
type Stats struct {
	Exercises int
	Mastery   int
}

// Service snapshots exercise history and word mastery rows from a source
// database into a standalone SQLite file.
type Service struct {
	driver string
	dsn    string
	tables []string
}

type Option func(*Service)

// WithTables restricts the snapshot to the given table names.
func WithTables(tables []string) Option {
	return func(s *Service) {
		if len(tables) == 0 {
			return
		}
		s.tables = append([]string{}, tables...)
	}
}

var archiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS exercise_history (
		id           TEXT PRIMARY KEY,
		user_id      INTEGER NOT NULL,
		session_id   TEXT NOT NULL,
		language     TEXT NOT NULL,
		difficulty   TEXT NOT NULL,
		target_words TEXT NOT NULL,
		sentence     TEXT NOT NULL,
		fingerprint  TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS word_mastery (
		user_id          INTEGER NOT NULL,
		word             TEXT NOT NULL,
		language         TEXT NOT NULL,
		review_count     INTEGER NOT NULL,
		correct_count    INTEGER NOT NULL,
		mastery_level    INTEGER NOT NULL,
		last_reviewed_at TIMESTAMP,
		PRIMARY KEY (user_id, word, language)
	)`,
}

// NewService binds a snapshot service to the source database.
func NewService(driver, dsn string, opts ...Option) (*Service, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	if driver == "" {
		return nil, errors.New("snapshot: driver is required")
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("snapshot: DSN is required")
	}
	svc := &Service{
		driver: driver,
		dsn:    dsn,
		tables: []string{"exercise_history", "word_mastery"},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Export copies the selected tables into the SQLite file at destPath. The
// file is created when missing and the copy runs in a single transaction, so
// a failed export leaves no partial archive content behind.
func (s *Service) Export(ctx context.Context, destPath string) (Stats, error) {
	var stats Stats

	src, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return stats, fmt.Errorf("snapshot: open source: %w", err)
	}
	defer src.Close()
	if err := src.PingContext(ctx); err != nil {
		return stats, fmt.Errorf("snapshot: ping source: %w", err)
	}

	dst, err := sql.Open("sqlite3", destPath)
	if err != nil {
		return stats, fmt.Errorf("snapshot: open archive: %w", err)
	}
	defer dst.Close()

	for _, stmt := range archiveSchema {
		if _, err := dst.ExecContext(ctx, stmt); err != nil {
			return stats, fmt.Errorf("snapshot: prepare archive schema: %w", err)
		}
	}

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("snapshot: begin archive tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range s.tables {
		switch table {
		case "exercise_history":
			stats.Exercises, err = s.copyExercises(ctx, src, tx)
		case "word_mastery":
			stats.Mastery, err = s.copyMastery(ctx, src, tx)
		default:
			err = fmt.Errorf("snapshot: unknown table %q", table)
		}
		if err != nil {
			return stats, err
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("snapshot: commit archive: %w", err)
	}
	return stats, nil
}

func (s *Service) copyExercises(ctx context.Context, src *sql.DB, tx *sql.Tx) (int, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT id, user_id, session_id, language, difficulty, target_words,
		       sentence, fingerprint, content_hash, created_at
		FROM exercise_history
		ORDER BY created_at`)
	if err != nil {
		return 0, fmt.Errorf("snapshot: read exercise_history: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id, sessionID, language, difficulty string
			sentence, fingerprint, contentHash  string
			userID                              int64
			words                               pq.StringArray
			createdAt                           time.Time
		)
		if err := rows.Scan(&id, &userID, &sessionID, &language, &difficulty,
			&words, &sentence, &fingerprint, &contentHash, &createdAt); err != nil {
			return count, fmt.Errorf("snapshot: scan exercise row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO exercise_history
				(id, user_id, session_id, language, difficulty, target_words,
				 sentence, fingerprint, content_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, userID, sessionID, language, difficulty, words,
			sentence, fingerprint, contentHash, createdAt); err != nil {
			return count, fmt.Errorf("snapshot: write exercise row: %w", err)
		}
		count++
	}
	return count, rows.Err()
}

func (s *Service) copyMastery(ctx context.Context, src *sql.DB, tx *sql.Tx) (int, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT user_id, word, language, review_count, correct_count,
		       mastery_level, last_reviewed_at
		FROM word_mastery
		ORDER BY user_id, word`)
	if err != nil {
		return 0, fmt.Errorf("snapshot: read word_mastery: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			userID                                  int64
			word, language                          string
			reviewCount, correctCount, masteryLevel int
			lastReviewed                            sql.NullTime
		)
		if err := rows.Scan(&userID, &word, &language, &reviewCount,
			&correctCount, &masteryLevel, &lastReviewed); err != nil {
			return count, fmt.Errorf("snapshot: scan mastery row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO word_mastery
				(user_id, word, language, review_count, correct_count,
				 mastery_level, last_reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, word, language, reviewCount, correctCount,
			masteryLevel, lastReviewed); err != nil {
			return count, fmt.Errorf("snapshot: write mastery row: %w", err)
		}
		count++
	}
	return count, rows.Err()
}
