package repository

import (
	"context"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
)

// MasteryRepository abstracts the per-word learning history table, keyed by
// (user_id, word, language).
type MasteryRepository interface {
	// RecordReview bumps the review counter for one shown word and stamps
	// the review time. Mastery level and correctness are owned by the
	// assessment pipeline and are never written through this path.
	RecordReview(ctx context.Context, userID int64, word string, language entity.Language, reviewedAt time.Time) error
	ListByUser(ctx context.Context, userID int64, language entity.Language) ([]entity.WordMastery, error)
}
