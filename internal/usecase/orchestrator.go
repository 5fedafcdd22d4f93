package usecase

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/pkg/sentencepattern"
)

const (
	orchestratorPoolSize  = 50
	wordsPerExercise      = 3
	diversityScoreFloor   = 70
	defaultBatchItemDelay = 150 * time.Millisecond
)

// Orchestrator is the top-level entry point for exercise generation. Its
// contract is unconditional: every call yields a renderable exercise, real or
// fallback; callers never need to distinguish the two to render.
type Orchestrator interface {
	Generate(ctx context.Context, params entity.GenerationParams) (*entity.GenerationResult, error)
	// BatchGenerate produces up to count exercises sequentially, best-effort:
	// a failed item is skipped, not retried, and does not abort the batch.
	BatchGenerate(ctx context.Context, params entity.GenerationParams, count int) []*entity.GenerationResult
	// Preload stages up to count exercises in the preload cache and reports
	// how many were staged.
	Preload(ctx context.Context, params entity.GenerationParams, count int) int
	// Preloaded pops a staged exercise for the params' cache key, if any
	// unexpired entry remains.
	Preloaded(params entity.GenerationParams) (*entity.GenerationResult, bool)
	ClearCache()
	ClearSession(sessionID string)
}

type orchestrator struct {
	pool       WordPoolBuilder
	selector   WordSelector
	scorer     DiversityScorer
	patterns   PatternDiversity
	tracker    CooldownTracker
	generator  SentenceGenerator
	fallback   FallbackGenerator
	preload    *PreloadCache
	logger     *logrus.Logger
	clock      func() time.Time
	batchDelay time.Duration
}

// NewOrchestrator composes the selection, diversity, tracking and generation
// collaborators into the exercise generation flow.
func NewOrchestrator(
	pool WordPoolBuilder,
	selector WordSelector,
	scorer DiversityScorer,
	patterns PatternDiversity,
	tracker CooldownTracker,
	generator SentenceGenerator,
	fallback FallbackGenerator,
	preload *PreloadCache,
	logger *logrus.Logger,
) Orchestrator {
	return &orchestrator{
		pool:       pool,
		selector:   selector,
		scorer:     scorer,
		patterns:   patterns,
		tracker:    tracker,
		generator:  generator,
		fallback:   fallback,
		preload:    preload,
		logger:     logger,
		clock:      time.Now,
		batchDelay: defaultBatchItemDelay,
	}
}

func (o *orchestrator) Generate(ctx context.Context, params entity.GenerationParams) (*entity.GenerationResult, error) {
	if params.UserID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if params.SessionID == "" {
		return nil, entity.ErrInvalidSessionID
	}
	params.Normalize()
	start := o.clock()

	pool := o.pool.IntelligentPool(ctx, params.UserID, params.Language, params.Difficulty, true, orchestratorPoolSize)
	poolStats := o.pool.PoolStats(ctx, params.UserID, params.Language, params.Difficulty)
	metrics := o.scorer.AnalyzeSession(ctx, params.UserID, params.Language, params.SessionID, defaultDiversityLookback)

	selection := o.selector.Select(ctx, params.UserID, params.Language, params.Difficulty, params.SessionID, wordsPerExercise, nil)
	preferred := o.preferredWords(ctx, params, pool, selection)
	avoid := o.patterns.AvoidancePatterns(ctx, params.UserID, params.Language, params.Difficulty, params.SessionID, defaultPatternLookback)

	o.logger.WithFields(logrus.Fields{
		"user":      params.UserID,
		"session":   params.SessionID,
		"pool_size": poolStats.TotalWords,
		"preferred": preferred,
		"avoid":     avoid,
		"div_score": metrics.OverallScore,
	}).Debug("generation prepared")

	generated, genErr := o.generator.Generate(ctx, &GenerationRequest{
		Language:             params.Language.CodeOrDefault(),
		DifficultyLevel:      string(params.Difficulty),
		SessionID:            params.SessionID,
		UserID:               params.UserID,
		PreviousSentences:    params.PreviousExercises,
		PreferredWords:       preferred,
		AvoidPatterns:        avoid,
		DiversityScoreTarget: math.Max(diversityScoreFloor, metrics.OverallScore),
		EnhancedMode:         true,
	})
	if genErr == nil {
		genErr = validateGenerated(generated)
	}

	metadata := entity.GenerationMetadata{
		SelectionQuality: selection.DiversityScore,
		DiversityScore:   metrics.OverallScore,
		SelectionReason:  selection.SelectionReason,
	}

	var exercise entity.Exercise
	if genErr != nil {
		o.logger.WithError(genErr).Warn("generation failed, falling back to offline exercise")
		exercise = o.fallback.Build(ctx, params)
		metadata.FallbackUsed = true
		metadata.DegradedReason = genErr.Error()
		metadata.FinalState = entity.StateFallbackReady
	} else {
		exercise = entity.Exercise{
			ID:              uuid.NewString(),
			Sentence:        generated.Sentence,
			TargetWord:      entity.NormalizeWordToken(generated.TargetWord),
			ClozeSentence:   generated.ClozeSentence,
			Translation:     generated.Translation,
			Context:         generated.Context,
			DifficultyScore: generated.DifficultyScore,
			Hints:           generated.Hints,
		}
		if exercise.ClozeSentence == "" {
			exercise.ClozeSentence = clozeSentence(exercise.Sentence, exercise.TargetWord)
		}
		metadata.FinalState = entity.StateExerciseReady
	}

	// Usage tracking strictly follows a produced exercise, and is detached
	// from caller cancellation so an abandoned request still lands its
	// write-back.
	o.track(context.WithoutCancel(ctx), params, exercise)

	metadata.GenerationTime = o.clock().Sub(start)
	return &entity.GenerationResult{Exercise: exercise, Metadata: metadata}, nil
}

func (o *orchestrator) BatchGenerate(ctx context.Context, params entity.GenerationParams, count int) []*entity.GenerationResult {
	results := make([]*entity.GenerationResult, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 && !o.interItemDelay(ctx) {
			break
		}
		result, err := o.Generate(ctx, params)
		if err != nil {
			o.logger.WithError(err).Warn("batch item skipped")
			continue
		}
		results = append(results, result)
		params.PreviousExercises = append(params.PreviousExercises, result.Exercise.Sentence)
	}
	return results
}

func (o *orchestrator) Preload(ctx context.Context, params entity.GenerationParams, count int) int {
	key := PreloadKey(params.UserID, params.Language, params.Difficulty, params.SessionID)
	staged := 0
	for i := 0; i < count; i++ {
		if i > 0 && !o.interItemDelay(ctx) {
			break
		}
		result, err := o.Generate(ctx, params)
		if err != nil {
			o.logger.WithError(err).Warn("preload item skipped")
			continue
		}
		o.preload.Push(key, result, o.clock())
		params.PreviousExercises = append(params.PreviousExercises, result.Exercise.Sentence)
		staged++
	}
	return staged
}

func (o *orchestrator) Preloaded(params entity.GenerationParams) (*entity.GenerationResult, bool) {
	key := PreloadKey(params.UserID, params.Language, params.Difficulty, params.SessionID)
	return o.preload.Pop(key, o.clock())
}

func (o *orchestrator) ClearCache() {
	o.preload.Clear()
}

func (o *orchestrator) ClearSession(sessionID string) {
	o.preload.ClearSession(sessionID)
	o.tracker.ClearSession(sessionID)
}

// preferredWords orders the words handed to the generator: the
// diversity-optimal pick first, then the rest of the selection.
func (o *orchestrator) preferredWords(ctx context.Context, params entity.GenerationParams, pool []entity.WordPoolEntry, selection entity.WordSelection) []string {
	candidates := selection.SelectedWords
	if len(candidates) == 0 {
		// Empty selection is not an error; fall back to the raw pool heads.
		for i, entry := range pool {
			if i == wordsPerExercise {
				break
			}
			candidates = append(candidates, entry.Word)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	pick := o.scorer.OptimalWord(ctx, params.UserID, params.Language, params.SessionID, candidates, params.PreviousExercises)
	if len(pick.SelectedWords) == 0 || pick.SelectedWords[0] == "" {
		return candidates
	}

	ordered := []string{pick.SelectedWords[0]}
	for _, word := range candidates {
		if word != pick.SelectedWords[0] {
			ordered = append(ordered, word)
		}
	}
	return ordered
}

func (o *orchestrator) track(ctx context.Context, params entity.GenerationParams, exercise entity.Exercise) {
	if exercise.TargetWord == "" {
		return
	}
	fingerprint := sentencepattern.Fingerprint(exercise.Sentence, params.Language.CodeOrDefault())
	o.tracker.RecordUsage(ctx, WordUsage{
		UserID:          params.UserID,
		Word:            exercise.TargetWord,
		Language:        params.Language,
		SessionID:       params.SessionID,
		Sentence:        exercise.Sentence,
		ContextPattern:  fingerprint,
		DifficultyLevel: params.Difficulty,
	})
	o.scorer.TrackContext(ctx, ContextUsage{
		UserID:     params.UserID,
		SessionID:  params.SessionID,
		Language:   params.Language,
		Difficulty: params.Difficulty,
		TargetWord: exercise.TargetWord,
		Sentence:   exercise.Sentence,
	})
}

// interItemDelay sleeps the configured batch delay, returning false when the
// caller cancelled.
func (o *orchestrator) interItemDelay(ctx context.Context) bool {
	if o.batchDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(o.batchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func validateGenerated(generated *GeneratedSentence) error {
	if generated == nil {
		return entity.ErrEmptyGeneration
	}
	if generated.Sentence == "" || generated.TargetWord == "" {
		return entity.ErrMalformedExercise
	}
	return nil
}
