package snapshot

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}

func seedSourceDB(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range archiveSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	created := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	_, err = db.Exec(`
		INSERT INTO exercise_history
			(id, user_id, session_id, language, difficulty, target_words,
			 sentence, fingerprint, content_hash, created_at)
		VALUES
			('a1', 42, 'sess-1', 'de', 'beginner', '{haus,auto}',
			 'Das Haus ist alt.', 'short_', 'deadbeefdeadbeef', ?),
			('a2', 42, 'sess-1', 'de', 'beginner', '{wasser}',
			 'Wo ist das Wasser?', 'short_question', 'feedfacefeedface', ?)`,
		created, created.Add(time.Minute))
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO word_mastery
			(user_id, word, language, review_count, correct_count,
			 mastery_level, last_reviewed_at)
		VALUES (42, 'haus', 'de', 3, 2, 4, ?)`, created)
	require.NoError(t, err)
}

func TestExportCopiesAllTables(t *testing.T) {
	requireSQLite(t)
	ctx := context.Background()

	srcPath := filepath.Join(t.TempDir(), "src.db")
	seedSourceDB(t, srcPath)

	svc, err := NewService("sqlite3", srcPath)
	require.NoError(t, err)

	destPath := filepath.Join(t.TempDir(), "archive.db")
	stats, err := svc.Export(ctx, destPath)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Exercises)
	assert.Equal(t, 1, stats.Mastery)

	archive, err := sql.Open("sqlite3", destPath)
	require.NoError(t, err)
	defer archive.Close()

	var words pq.StringArray
	var sentence string
	err = archive.QueryRow(
		`SELECT target_words, sentence FROM exercise_history WHERE id = 'a1'`).
		Scan(&words, &sentence)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"haus", "auto"}, words)
	assert.Equal(t, "Das Haus ist alt.", sentence)

	var reviews int
	err = archive.QueryRow(
		`SELECT review_count FROM word_mastery WHERE word = 'haus'`).Scan(&reviews)
	require.NoError(t, err)
	assert.Equal(t, 3, reviews)
}

func TestExportHonorsTableFilter(t *testing.T) {
	requireSQLite(t)
	ctx := context.Background()

	srcPath := filepath.Join(t.TempDir(), "src.db")
	seedSourceDB(t, srcPath)

	svc, err := NewService("sqlite3", srcPath, WithTables([]string{"word_mastery"}))
	require.NoError(t, err)

	destPath := filepath.Join(t.TempDir(), "archive.db")
	stats, err := svc.Export(ctx, destPath)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Exercises)
	assert.Equal(t, 1, stats.Mastery)

	archive, err := sql.Open("sqlite3", destPath)
	require.NoError(t, err)
	defer archive.Close()

	var exercises int
	require.NoError(t, archive.QueryRow(
		`SELECT COUNT(*) FROM exercise_history`).Scan(&exercises))
	assert.Equal(t, 0, exercises)
}

func TestNewServiceValidatesInputs(t *testing.T) {
	_, err := NewService("", "dsn")
	assert.Error(t, err)
	_, err = NewService("postgres", "  ")
	assert.Error(t, err)
}

func TestExportRejectsUnknownTable(t *testing.T) {
	requireSQLite(t)

	srcPath := filepath.Join(t.TempDir(), "src.db")
	seedSourceDB(t, srcPath)

	svc, err := NewService("sqlite3", srcPath, WithTables([]string{"users"}))
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), filepath.Join(t.TempDir(), "out.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}
