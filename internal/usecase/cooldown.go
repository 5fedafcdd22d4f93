package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
	"github.com/eslsoft/drillnet/pkg/sentencepattern"
)

const (
	baseCooldown         = 8 * time.Hour
	maxCooldown          = 168 * time.Hour
	usageMultiplier      = 1.8
	simplePatternPenalty = 6 * time.Hour
	usageWindow          = 7 * 24 * time.Hour
	cachePruneHorizon    = 24 * time.Hour
)

// WordUsage describes one concrete use of a word in a shown exercise.
type WordUsage struct {
	UserID          int64
	Word            string
	Language        entity.Language
	SessionID       string
	Sentence        string
	ContextPattern  string
	DifficultyLevel entity.Difficulty
}

// CooldownTracker maintains per-word usage history and time-decayed
// availability. All of its read paths fail open: a persistence error never
// blocks exercise generation.
type CooldownTracker interface {
	// RecordUsage updates cooldown state after a word was actually shown.
	// It never returns an error; persistence failures are logged and swallowed.
	RecordUsage(ctx context.Context, usage WordUsage)
	// AvailableWords partitions candidates into available words and excluded
	// words with an explanation per exclusion.
	AvailableWords(ctx context.Context, userID int64, language entity.Language, candidates []string, sessionID, contextPattern string) ([]string, map[string]entity.CooldownInfo)
	// Stats aggregates the user's tracked cooldown state for observability.
	Stats(ctx context.Context, userID int64, language entity.Language, sessionID string) entity.CooldownStats
	// ClearSession drops the in-memory cache for a session. Durable history
	// is untouched.
	ClearSession(sessionID string)
}

type cooldownTracker struct {
	exercises repository.ExerciseRepository
	mastery   repository.MasteryRepository
	cache     *CooldownCache
	logger    *logrus.Logger
	clock     func() time.Time
}

// NewCooldownTracker wires the tracker with its persistence collaborators.
func NewCooldownTracker(exercises repository.ExerciseRepository, mastery repository.MasteryRepository, cache *CooldownCache, logger *logrus.Logger) CooldownTracker {
	return &cooldownTracker{
		exercises: exercises,
		mastery:   mastery,
		cache:     cache,
		logger:    logger,
		clock:     time.Now,
	}
}

func (t *cooldownTracker) RecordUsage(ctx context.Context, usage WordUsage) {
	word := entity.NormalizeWordToken(usage.Word)
	if word == "" || usage.UserID <= 0 {
		return
	}
	now := t.clock()

	usageCount := 1
	recent, err := t.exercises.ListWithWordSince(ctx, usage.UserID, usage.Language, word, now.Add(-usageWindow))
	if err != nil {
		t.logger.WithError(err).WithField("word", word).Warn("cooldown: usage lookup failed, assuming first use")
	} else {
		usageCount = len(recent) + 1
	}

	duration := cooldownDuration(usageCount, usage.DifficultyLevel, usage.ContextPattern, usage.Sentence, usage.Language)

	record := &entity.CooldownRecord{
		Word:            word,
		Language:        usage.Language,
		UserID:          usage.UserID,
		SessionID:       usage.SessionID,
		LastUsed:        now,
		UsageCount:      usageCount,
		CooldownUntil:   now.Add(duration),
		ContextPattern:  usage.ContextPattern,
		DifficultyLevel: usage.DifficultyLevel,
	}
	record.Normalize()
	t.cache.Put(usage.SessionID, record)
	t.cache.Prune(now, cachePruneHorizon)

	// Only the review counter and timestamp are written here; mastery level
	// and correctness belong to the assessment pipeline. Failures must not
	// block generation.
	if err := t.mastery.RecordReview(ctx, usage.UserID, word, usage.Language, now); err != nil {
		t.logger.WithError(err).WithField("word", word).Warn("cooldown: review record failed")
	}
}

func (t *cooldownTracker) AvailableWords(ctx context.Context, userID int64, language entity.Language, candidates []string, sessionID, contextPattern string) ([]string, map[string]entity.CooldownInfo) {
	now := t.clock()

	records, err := t.loadRecords(ctx, userID, language, sessionID)
	if err != nil {
		// Fail open: a learner is never blocked by a tracking outage.
		t.logger.WithError(err).Warn("cooldown: state load failed, treating all candidates as available")
		return append([]string(nil), candidates...), map[string]entity.CooldownInfo{}
	}

	available := make([]string, 0, len(candidates))
	info := make(map[string]entity.CooldownInfo)
	for _, candidate := range candidates {
		word := entity.NormalizeWordToken(candidate)
		record, ok := records[word]
		if !ok || record.Available(now) {
			available = append(available, candidate)
			continue
		}
		reason := fmt.Sprintf("used %d times in the last 7 days", record.UsageCount)
		if contextPattern != "" && record.ContextPattern == contextPattern {
			reason += ", same context pattern"
		}
		info[candidate] = entity.CooldownInfo{CooldownUntil: record.CooldownUntil, Reason: reason}
	}
	return available, info
}

func (t *cooldownTracker) Stats(ctx context.Context, userID int64, language entity.Language, sessionID string) entity.CooldownStats {
	now := t.clock()
	stats := entity.CooldownStats{}

	records, err := t.loadRecords(ctx, userID, language, sessionID)
	if err != nil {
		t.logger.WithError(err).Warn("cooldown: stats load failed")
		return stats
	}

	var totalHours float64
	for _, record := range records {
		stats.TotalTrackedWords++
		totalHours += record.CooldownUntil.Sub(record.LastUsed).Hours()
		if !record.Available(now) {
			stats.ActiveCooldowns++
		}
	}
	if stats.TotalTrackedWords > 0 {
		stats.AverageCooldownHours = totalHours / float64(stats.TotalTrackedWords)
	}

	day, err := t.exercises.ListSince(ctx, userID, language, now.Add(-24*time.Hour))
	if err != nil {
		t.logger.WithError(err).Warn("cooldown: recent usage lookup failed")
		return stats
	}
	uses := 0
	for _, rec := range day {
		uses += len(rec.TargetWords)
	}
	stats.RecentUsageRate = float64(uses) / 24.0
	return stats
}

func (t *cooldownTracker) ClearSession(sessionID string) {
	t.cache.ClearSession(sessionID)
}

// loadRecords serves cooldown state cache-first, rebuilding the session's
// records from the last seven days of exercise history on a cold cache.
func (t *cooldownTracker) loadRecords(ctx context.Context, userID int64, language entity.Language, sessionID string) (map[string]*entity.CooldownRecord, error) {
	if t.cache.HasSession(sessionID) {
		return t.cache.Records(sessionID), nil
	}

	now := t.clock()
	history, err := t.exercises.ListSince(ctx, userID, language, now.Add(-usageWindow))
	if err != nil {
		return nil, fmt.Errorf("rebuild cooldown state: %w", err)
	}

	type usageState struct {
		count    int
		lastUsed time.Time
		pattern  string
		diff     entity.Difficulty
		sentence string
	}
	byWord := make(map[string]*usageState)
	for _, rec := range history {
		for _, target := range rec.TargetWords {
			word := entity.NormalizeWordToken(target)
			if word == "" {
				continue
			}
			state, ok := byWord[word]
			if !ok {
				state = &usageState{}
				byWord[word] = state
			}
			state.count++
			// Most recent usage wins for pattern and timestamps.
			if rec.CreatedAt.After(state.lastUsed) {
				state.lastUsed = rec.CreatedAt
				state.pattern = rec.Fingerprint
				state.diff = rec.Difficulty
				state.sentence = rec.Sentence
			}
		}
	}

	records := make(map[string]*entity.CooldownRecord, len(byWord))
	for word, state := range byWord {
		duration := cooldownDuration(state.count, state.diff, state.pattern, state.sentence, language)
		record := &entity.CooldownRecord{
			Word:            word,
			Language:        language,
			UserID:          userID,
			SessionID:       sessionID,
			LastUsed:        state.lastUsed,
			UsageCount:      state.count,
			CooldownUntil:   state.lastUsed.Add(duration),
			ContextPattern:  state.pattern,
			DifficultyLevel: state.diff,
		}
		record.Normalize()
		records[word] = record
		t.cache.Put(sessionID, record)
	}
	return records, nil
}

// cooldownDuration computes the decayed cooldown for the nth use of a word:
// base * multiplier^(n-1) * difficulty bonus, plus a fixed penalty for
// structurally simple contexts, scaled by a complexity adjustment of the
// concrete sentence, clamped to [base, 168h].
func cooldownDuration(usageCount int, difficulty entity.Difficulty, contextPattern, sentence string, language entity.Language) time.Duration {
	if usageCount < 1 {
		usageCount = 1
	}
	if difficulty == "" {
		difficulty = entity.DifficultyIntermediate
	}

	hours := baseCooldown.Hours() * math.Pow(usageMultiplier, float64(usageCount-1)) * difficulty.CooldownBonus()
	if sentencepattern.IsSimple(contextPattern) {
		hours += simplePatternPenalty.Hours()
	}
	hours *= complexityAdjustment(sentence, language)

	if hours < baseCooldown.Hours() {
		hours = baseCooldown.Hours()
	}
	if hours > maxCooldown.Hours() {
		hours = maxCooldown.Hours()
	}
	return time.Duration(hours * float64(time.Hour))
}

// complexityAdjustment shortens cooldowns for rich sentences and lengthens
// them for trivially simple ones.
func complexityAdjustment(sentence string, language entity.Language) float64 {
	if sentence == "" {
		return 1.0
	}
	complexity := sentencepattern.Complexity(sentence, language.CodeOrDefault())
	switch {
	case complexity < 0.3:
		return 1.2
	case complexity > 0.7:
		return 0.8
	default:
		return 1.0
	}
}
