package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
)

type masteryRepository struct {
	pool *pgxpool.Pool
}

// NewMasteryRepository constructs a pgx-backed word mastery repository.
func NewMasteryRepository(pool *pgxpool.Pool) repository.MasteryRepository {
	return &masteryRepository{pool: pool}
}

// RecordReview is additive on conflict: mastery_level and correct_count stay
// whatever the assessment pipeline last wrote.
func (r *masteryRepository) RecordReview(ctx context.Context, userID int64, word string, language entity.Language, reviewedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO word_mastery (user_id, word, language, review_count, last_reviewed_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (user_id, word, language) DO UPDATE SET
			review_count     = word_mastery.review_count + 1,
			last_reviewed_at = EXCLUDED.last_reviewed_at`,
		userID, entity.NormalizeWordToken(word), string(language), reviewedAt,
	)
	if err != nil {
		return translatePgError("record review", err)
	}
	return nil
}

func (r *masteryRepository) ListByUser(ctx context.Context, userID int64, language entity.Language) ([]entity.WordMastery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, word, language, review_count, correct_count, mastery_level, last_reviewed_at
		FROM word_mastery
		WHERE user_id = $1 AND language = $2`,
		userID, string(language),
	)
	if err != nil {
		return nil, translatePgError("list mastery", err)
	}
	defer rows.Close()

	var out []entity.WordMastery
	for rows.Next() {
		var m entity.WordMastery
		var lang string
		if err := rows.Scan(&m.UserID, &m.Word, &lang, &m.ReviewCount, &m.CorrectCount, &m.MasteryLevel, &m.LastReviewedAt); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		m.Language = entity.Language(lang)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError("read mastery", err)
	}
	return out, nil
}
