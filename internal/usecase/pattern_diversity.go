package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
	"github.com/eslsoft/drillnet/pkg/sentencepattern"
)

const defaultPatternLookback = 12

// PatternDiversity fingerprints recent sentences and derives the set of
// overrepresented structures the generator should avoid.
type PatternDiversity interface {
	// AvoidancePatterns returns fingerprints whose count meets or exceeds
	// max(2, totalExercises/6) in the lookback window. Empty on no history
	// or on fetch failure (fail-open).
	AvoidancePatterns(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, sessionID string, lookbackHours int) []string
	// Analyze summarizes the structural variety of the window.
	Analyze(ctx context.Context, userID int64, language entity.Language, sessionID string, lookbackHours int) entity.PatternDiversity
}

type patternDiversity struct {
	exercises repository.ExerciseRepository
	logger    *logrus.Logger
	clock     func() time.Time
}

// NewPatternDiversity wires the engine with the exercise history repository.
func NewPatternDiversity(exercises repository.ExerciseRepository, logger *logrus.Logger) PatternDiversity {
	return &patternDiversity{
		exercises: exercises,
		logger:    logger,
		clock:     time.Now,
	}
}

func (p *patternDiversity) AvoidancePatterns(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, sessionID string, lookbackHours int) []string {
	fingerprints := p.recentFingerprints(ctx, userID, language, lookbackHours)
	if len(fingerprints) == 0 {
		return []string{}
	}

	counts := lo.CountValues(fingerprints)
	threshold := max(2, len(fingerprints)/6)

	var avoid []string
	for fp, count := range counts {
		if count >= threshold && fp != sentencepattern.UnknownFingerprint {
			avoid = append(avoid, fp)
		}
	}
	sort.Strings(avoid)
	return avoid
}

func (p *patternDiversity) Analyze(ctx context.Context, userID int64, language entity.Language, sessionID string, lookbackHours int) entity.PatternDiversity {
	fingerprints := p.recentFingerprints(ctx, userID, language, lookbackHours)
	result := entity.PatternDiversity{RecentPatternCount: len(fingerprints)}
	if len(fingerprints) == 0 {
		return result
	}

	unique := lo.Uniq(fingerprints)
	result.UniquePatterns = len(unique)
	result.PatternDistribution = float64(len(unique)) / float64(len(fingerprints)) * 100

	var featureTotal int
	for _, fp := range fingerprints {
		featureTotal += sentencepattern.FeatureCount(fp)
	}
	result.AverageComplexity = float64(featureTotal) / float64(len(fingerprints))
	return result
}

func (p *patternDiversity) recentFingerprints(ctx context.Context, userID int64, language entity.Language, lookbackHours int) []string {
	if lookbackHours <= 0 {
		lookbackHours = defaultPatternLookback
	}
	history, err := p.exercises.ListSince(ctx, userID, language, p.clock().Add(-time.Duration(lookbackHours)*time.Hour))
	if err != nil {
		p.logger.WithError(err).Warn("pattern diversity: history fetch failed")
		return nil
	}
	return lo.Map(history, func(rec entity.ExerciseRecord, _ int) string {
		if rec.Fingerprint != "" {
			return rec.Fingerprint
		}
		return sentencepattern.Fingerprint(rec.Sentence, language.CodeOrDefault())
	})
}
