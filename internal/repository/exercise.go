package repository

import (
	"context"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
)

// ListExerciseQuery holds parameters for listing exercise history.
type ListExerciseQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// ExerciseRepository abstracts the durable exercise history. Implementations
// must treat an absence of rows as empty history, never as an error.
type ExerciseRepository interface {
	Insert(ctx context.Context, record *entity.ExerciseRecord) error
	// ListSince returns exercises for the user+language created at or after
	// the given instant, newest first.
	ListSince(ctx context.Context, userID int64, language entity.Language, since time.Time) ([]entity.ExerciseRecord, error)
	// ListWithWordSince narrows ListSince to exercises whose target words
	// include the given word.
	ListWithWordSince(ctx context.Context, userID int64, language entity.Language, word string, since time.Time) ([]entity.ExerciseRecord, error)
	List(ctx context.Context, query *ListExerciseQuery) ([]entity.ExerciseRecord, int64, error)
}
