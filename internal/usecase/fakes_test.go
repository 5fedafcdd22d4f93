package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeExerciseRepo struct {
	mu      sync.RWMutex
	items   []entity.ExerciseRecord
	listErr error
	insErr  error
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{}
}

func (r *fakeExerciseRepo) Insert(ctx context.Context, record *entity.ExerciseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insErr != nil {
		return r.insErr
	}
	copy := *record
	copy.TargetWords = append([]string(nil), record.TargetWords...)
	r.items = append(r.items, copy)
	return nil
}

func (r *fakeExerciseRepo) ListSince(ctx context.Context, userID int64, language entity.Language, since time.Time) ([]entity.ExerciseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.ExerciseRecord
	for _, item := range r.items {
		if item.UserID == userID && item.Language == language && !item.CreatedAt.Before(since) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeExerciseRepo) ListWithWordSince(ctx context.Context, userID int64, language entity.Language, word string, since time.Time) ([]entity.ExerciseRecord, error) {
	all, err := r.ListSince(ctx, userID, language, since)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(word)
	var out []entity.ExerciseRecord
	for _, item := range all {
		for _, target := range item.TargetWords {
			if strings.ToLower(target) == needle {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context, query *repository.ListExerciseQuery) ([]entity.ExerciseRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []entity.ExerciseRecord
	for _, item := range r.items {
		if query == nil || item.UserID == query.UserID {
			out = append(out, item)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeExerciseRepo) seed(records ...entity.ExerciseRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, records...)
}

func (r *fakeExerciseRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

type fakeMasteryRepo struct {
	mu        sync.RWMutex
	items     map[string]entity.WordMastery
	reviewErr error
	listErr   error
}

func newFakeMasteryRepo() *fakeMasteryRepo {
	return &fakeMasteryRepo{items: make(map[string]entity.WordMastery)}
}

func masteryKey(userID int64, word string, language entity.Language) string {
	return fmt.Sprintf("%d|%s|%s", userID, strings.ToLower(word), language)
}

func (r *fakeMasteryRepo) RecordReview(ctx context.Context, userID int64, word string, language entity.Language, reviewedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reviewErr != nil {
		return r.reviewErr
	}
	word = entity.NormalizeWordToken(word)
	key := masteryKey(userID, word, language)
	record, ok := r.items[key]
	if !ok {
		record = entity.WordMastery{UserID: userID, Word: word, Language: language}
	}
	record.ReviewCount++
	at := reviewedAt
	record.LastReviewedAt = &at
	r.items[key] = record
	return nil
}

func (r *fakeMasteryRepo) ListByUser(ctx context.Context, userID int64, language entity.Language) ([]entity.WordMastery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.WordMastery
	for _, item := range r.items {
		if item.UserID == userID && item.Language == language {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeMasteryRepo) seed(records ...entity.WordMastery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		record.Normalize()
		r.items[masteryKey(record.UserID, record.Word, record.Language)] = record
	}
}
