package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
)

type exerciseRepository struct {
	pool *pgxpool.Pool
}

// NewExerciseRepository constructs a pgx-backed exercise history repository.
func NewExerciseRepository(pool *pgxpool.Pool) repository.ExerciseRepository {
	return &exerciseRepository{pool: pool}
}

const exerciseColumns = `id, user_id, session_id, language, difficulty, target_words, sentence, fingerprint, content_hash, created_at`

func (r *exerciseRepository) Insert(ctx context.Context, record *entity.ExerciseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exercise_history (`+exerciseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID, record.UserID, record.SessionID, string(record.Language),
		string(record.Difficulty), record.TargetWords, record.Sentence,
		record.Fingerprint, record.ContentHash, record.CreatedAt,
	)
	if err != nil {
		return translatePgError("insert exercise", err)
	}
	return nil
}

func (r *exerciseRepository) ListSince(ctx context.Context, userID int64, language entity.Language, since time.Time) ([]entity.ExerciseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercise_history
		WHERE user_id = $1 AND language = $2 AND created_at >= $3
		ORDER BY created_at DESC`,
		userID, string(language), since,
	)
	if err != nil {
		return nil, translatePgError("list exercises", err)
	}
	return scanExercises(rows)
}

func (r *exerciseRepository) ListWithWordSince(ctx context.Context, userID int64, language entity.Language, word string, since time.Time) ([]entity.ExerciseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercise_history
		WHERE user_id = $1 AND language = $2 AND created_at >= $3 AND $4 = ANY(target_words)
		ORDER BY created_at DESC`,
		userID, string(language), since, word,
	)
	if err != nil {
		return nil, translatePgError("list exercises by word", err)
	}
	return scanExercises(rows)
}

func (r *exerciseRepository) List(ctx context.Context, query *repository.ListExerciseQuery) ([]entity.ExerciseRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query == nil {
		return nil, 0, fmt.Errorf("list exercises: nil query")
	}

	var params listExerciseParams
	if err := bindListExercise(query, &params); err != nil {
		return nil, 0, err
	}

	where := "WHERE user_id = $1"
	args := []any{query.UserID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if params.Language != "" {
		where += " AND language = " + arg(params.Language)
	}
	if params.SessionID != "" {
		where += " AND session_id = " + arg(params.SessionID)
	}
	if params.Word != "" {
		where += " AND " + arg(params.Word) + " = ANY(target_words)"
	}
	if len(params.Difficulties) > 0 {
		where += " AND difficulty = ANY(" + arg(params.Difficulties) + ")"
	}
	if params.CreatedAfter != nil {
		where += " AND created_at >= " + arg(*params.CreatedAfter)
	}
	if params.CreatedBefore != nil {
		where += " AND created_at <= " + arg(*params.CreatedBefore)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM exercise_history "+where, args...).Scan(&total); err != nil {
		return nil, 0, translatePgError("count exercises", err)
	}

	limit, offset := pageWindow(query.Pagination)
	sql := "SELECT " + exerciseColumns + " FROM exercise_history " + where +
		" ORDER BY " + orderClause(params.SortKey, params.SortDesc) +
		" LIMIT " + arg(limit) + " OFFSET " + arg(offset)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, translatePgError("list exercises", err)
	}
	records, err := scanExercises(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func scanExercises(rows pgx.Rows) ([]entity.ExerciseRecord, error) {
	defer rows.Close()
	var out []entity.ExerciseRecord
	for rows.Next() {
		var rec entity.ExerciseRecord
		var language, difficulty string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &language, &difficulty,
			&rec.TargetWords, &rec.Sentence, &rec.Fingerprint, &rec.ContentHash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		rec.Language = entity.Language(language)
		rec.Difficulty = entity.Difficulty(difficulty)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError("read exercises", err)
	}
	return out, nil
}

func pageWindow(p repository.Pagination) (int32, int32) {
	size := p.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	if p.PageNo <= 0 {
		p.PageNo = 1
		return size, 0
	}
	return size, (p.PageNo - 1) * size
}

// orderClause maps a whitelisted sort key onto its column. Keys outside the
// schema never reach this point.
func orderClause(key string, desc bool) string {
	column := map[string]string{
		"created_at": "created_at",
		"word":       "target_words[1]",
		"session_id": "session_id",
	}[key]
	if column == "" {
		column = "created_at"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
