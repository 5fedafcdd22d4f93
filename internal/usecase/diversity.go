package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
	"github.com/eslsoft/drillnet/pkg/sentencepattern"
)

const (
	defaultDiversityLookback = 24
	recentContextWindow      = 2 * time.Hour

	// difficultyProgression is a fixed placeholder until accuracy-over-time
	// data exists to derive it from. Do not replace with an invented formula.
	difficultyProgressionPlaceholder = 85
)

// ContextUsage describes the context in which a target word was exercised.
type ContextUsage struct {
	UserID     int64
	SessionID  string
	Language   entity.Language
	Difficulty entity.Difficulty
	TargetWord string
	Sentence   string
}

// DiversityScorer computes aggregate diversity metrics for a learning session
// and tracks word contexts for later analysis.
type DiversityScorer interface {
	// AnalyzeSession recomputes the session's diversity metrics over the
	// lookback window. With no exercises in the window every metric is 100.
	AnalyzeSession(ctx context.Context, userID int64, language entity.Language, sessionID string, lookbackHours int) entity.DiversityMetrics
	// OptimalWord returns the single candidate that maximizes diversity,
	// penalizing repeated and recent use, rewarding context variety.
	OptimalWord(ctx context.Context, userID int64, language entity.Language, sessionID string, candidates []string, previousExercises []string) entity.SingleWordPick
	// TrackContext records the sentence, fingerprint and content hash for a
	// shown exercise. It never fails the calling flow.
	TrackContext(ctx context.Context, usage ContextUsage)
	// Report maps metrics to human-readable insight strings.
	Report(metrics entity.DiversityMetrics) []string
}

type diversityScorer struct {
	exercises repository.ExerciseRepository
	logger    *logrus.Logger
	clock     func() time.Time
	rng       *rand.Rand
}

// NewDiversityScorer wires the scorer with the exercise history repository.
func NewDiversityScorer(exercises repository.ExerciseRepository, logger *logrus.Logger) DiversityScorer {
	return &diversityScorer{
		exercises: exercises,
		logger:    logger,
		clock:     time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *diversityScorer) AnalyzeSession(ctx context.Context, userID int64, language entity.Language, sessionID string, lookbackHours int) entity.DiversityMetrics {
	if lookbackHours <= 0 {
		lookbackHours = defaultDiversityLookback
	}
	now := s.clock()

	history, err := s.exercises.ListSince(ctx, userID, language, now.Add(-time.Duration(lookbackHours)*time.Hour))
	if err != nil {
		s.logger.WithError(err).Warn("diversity: history fetch failed, treating as empty")
		history = nil
	}
	if len(history) == 0 {
		metrics := entity.DiversityMetrics{
			VocabularyVariety:     100,
			ContextDiversity:      100,
			TemporalDistribution:  100,
			DifficultyProgression: 100,
		}
		metrics.ComputeOverall()
		return metrics
	}

	metrics := entity.DiversityMetrics{
		VocabularyVariety:     vocabularyVariety(history),
		ContextDiversity:      contextDiversity(history),
		TemporalDistribution:  temporalDistribution(history),
		DifficultyProgression: difficultyProgressionPlaceholder,
	}
	metrics.ComputeOverall()
	return metrics
}

func (s *diversityScorer) OptimalWord(ctx context.Context, userID int64, language entity.Language, sessionID string, candidates []string, previousExercises []string) entity.SingleWordPick {
	if len(candidates) == 0 {
		return entity.SingleWordPick{SelectedWords: []string{}, SelectionReason: "no candidates supplied"}
	}

	now := s.clock()
	history, err := s.exercises.ListSince(ctx, userID, language, now.Add(-defaultDiversityLookback*time.Hour))
	if err != nil {
		s.logger.WithError(err).Warn("diversity: history fetch failed, scoring candidates without history")
		history = nil
	}

	type wordHistory struct {
		count        int
		lastUsed     time.Time
		fingerprints map[string]struct{}
	}
	byWord := make(map[string]*wordHistory)
	for _, rec := range history {
		fp := rec.Fingerprint
		if fp == "" {
			fp = sentencepattern.Fingerprint(rec.Sentence, language.CodeOrDefault())
		}
		for _, target := range rec.TargetWords {
			key := entity.NormalizeWordToken(target)
			h, ok := byWord[key]
			if !ok {
				h = &wordHistory{fingerprints: make(map[string]struct{})}
				byWord[key] = h
			}
			h.count++
			h.fingerprints[fp] = struct{}{}
			if rec.CreatedAt.After(h.lastUsed) {
				h.lastUsed = rec.CreatedAt
			}
		}
	}

	bestWord := ""
	bestScore := math.Inf(-1)
	bestReason := ""
	for _, candidate := range candidates {
		key := entity.NormalizeWordToken(candidate)
		score := 100.0
		variety := 1.0
		usageNote := "unused in the last 24h"

		if h, ok := byWord[key]; ok && h.count > 0 {
			score -= math.Min(25*float64(h.count), 75)
			usageNote = fmt.Sprintf("used %d times in the last 24h", h.count)
			if now.Sub(h.lastUsed) < recentContextWindow {
				score -= 30
				usageNote += ", very recently"
			}
			variety = float64(len(h.fingerprints)) / float64(h.count)
		}
		score += variety * 20
		score += s.rng.Float64()*4 - 2

		if score > bestScore {
			bestScore = score
			bestWord = candidate
			bestReason = fmt.Sprintf("%s, %s context variety", usageNote, varietyTier(variety))
		}
	}

	return entity.SingleWordPick{
		SelectedWords:   []string{bestWord},
		DiversityScore:  clampScore(bestScore),
		SelectionReason: bestReason,
	}
}

func (s *diversityScorer) TrackContext(ctx context.Context, usage ContextUsage) {
	word := entity.NormalizeWordToken(usage.TargetWord)
	if word == "" || usage.UserID <= 0 {
		return
	}

	record := &entity.ExerciseRecord{
		ID:          uuid.NewString(),
		UserID:      usage.UserID,
		SessionID:   usage.SessionID,
		Language:    entity.NormalizeLanguage(usage.Language),
		Difficulty:  usage.Difficulty,
		TargetWords: []string{word},
		Sentence:    usage.Sentence,
		Fingerprint: sentencepattern.Fingerprint(usage.Sentence, usage.Language.CodeOrDefault()),
		ContentHash: contentHash(word, usage.Sentence),
		CreatedAt:   s.clock(),
	}
	if err := s.exercises.Insert(ctx, record); err != nil {
		s.logger.WithError(err).WithField("word", word).Warn("diversity: context tracking failed")
	}
}

func (s *diversityScorer) Report(metrics entity.DiversityMetrics) []string {
	var insights []string
	if metrics.VocabularyVariety < 60 {
		insights = append(insights, "vocabulary repeats often: introduce new words")
	}
	if metrics.ContextDiversity < 50 {
		insights = append(insights, "sentence structures repeat: vary patterns and clause types")
	}
	if metrics.TemporalDistribution < 40 {
		insights = append(insights, "practice arrives in bursts: spread exercises across the session")
	}
	if metrics.OverallScore >= 85 {
		insights = append(insights, "session variety is excellent")
	}
	if len(insights) == 0 {
		insights = append(insights, "session variety is healthy")
	}
	return insights
}

func vocabularyVariety(history []entity.ExerciseRecord) float64 {
	var all []string
	for _, rec := range history {
		for _, w := range rec.TargetWords {
			all = append(all, entity.NormalizeWordToken(w))
		}
	}
	if len(all) == 0 {
		return 100
	}
	unique := len(lo.Uniq(all))
	return float64(unique) / float64(len(all)) * 100
}

func contextDiversity(history []entity.ExerciseRecord) float64 {
	var fingerprints []string
	for _, rec := range history {
		fp := rec.Fingerprint
		if fp == "" {
			fp = sentencepattern.Fingerprint(rec.Sentence, rec.Language.CodeOrDefault())
		}
		fingerprints = append(fingerprints, fp)
	}
	if len(fingerprints) == 0 {
		return 100
	}
	unique := len(lo.Uniq(fingerprints))
	return float64(unique) / float64(len(fingerprints)) * 100
}

// temporalDistribution derives evenness from the coefficient of variation of
// inter-exercise gaps: perfectly regular practice scores 100, a single burst
// scores near 0.
func temporalDistribution(history []entity.ExerciseRecord) float64 {
	if len(history) < 2 {
		return 100
	}
	times := lo.Map(history, func(rec entity.ExerciseRecord, _ int) time.Time { return rec.CreatedAt })
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i].Sub(times[i-1]).Seconds())
	}

	var sum float64
	for _, g := range gaps {
		sum += g
	}
	mean := sum / float64(len(gaps))
	if mean <= 0 {
		return 0
	}

	var variance float64
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	stddev := math.Sqrt(variance / float64(len(gaps)))

	return math.Max(0, 100-100*stddev/mean)
}

// contentHash fingerprints the exercised content: the target word plus up to
// three sorted non-target context words from the sentence.
func contentHash(targetWord, sentence string) string {
	words := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r < 0x80
	})
	context := lo.Uniq(lo.Filter(words, func(w string, _ int) bool {
		return w != targetWord && len(w) > 2
	}))
	sort.Strings(context)
	if len(context) > 3 {
		context = context[:3]
	}
	sum := sha256.Sum256([]byte(targetWord + "|" + strings.Join(context, ",")))
	return hex.EncodeToString(sum[:8])
}

func varietyTier(variety float64) string {
	switch {
	case variety >= 0.8:
		return "high"
	case variety >= 0.5:
		return "moderate"
	default:
		return "low"
	}
}
