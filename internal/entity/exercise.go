package entity

import "time"

// Exercise is a single cloze practice item shown to a learner.
type Exercise struct {
	ID              string
	Sentence        string
	TargetWord      string
	ClozeSentence   string
	Translation     string
	Context         string
	DifficultyScore float64
	Hints           []string
}

// ExerciseRecord is the durable history row written after an exercise was shown.
type ExerciseRecord struct {
	ID          string
	UserID      int64
	SessionID   string
	Language    Language
	Difficulty  Difficulty
	TargetWords []string
	Sentence    string
	Fingerprint string
	ContentHash string
	CreatedAt   time.Time
}

// GenerationParams is the request envelope for one exercise generation.
type GenerationParams struct {
	Language          Language
	Difficulty        Difficulty
	UserID            int64
	SessionID         string
	PreviousExercises []string
}

// Normalize applies defaults so downstream components never see unspecified enums.
func (p *GenerationParams) Normalize() {
	p.Language = NormalizeLanguage(p.Language)
	if p.Difficulty == "" {
		p.Difficulty = DifficultyBeginner
	}
}

// GenerationState names the phases of the orchestrator's request lifecycle.
type GenerationState string

const (
	StateIdle          GenerationState = "IDLE"
	StatePoolBuilt     GenerationState = "POOL_BUILT"
	StateWordsSelected GenerationState = "WORDS_SELECTED"
	StateGenerating    GenerationState = "GENERATING"
	StateExerciseReady GenerationState = "EXERCISE_READY"
	StateFallbackReady GenerationState = "FALLBACK_READY"
)

// GenerationMetadata describes how an exercise was produced.
type GenerationMetadata struct {
	GenerationTime   time.Duration
	FallbackUsed     bool
	SelectionQuality float64
	DiversityScore   float64
	SelectionReason  string
	// DegradedReason is set when an I/O failure forced a degraded path.
	// It is diagnostic only; callers render the exercise either way.
	DegradedReason string
	FinalState     GenerationState
}

// GenerationResult is the caller-visible response envelope.
// The contract is identical whether generation succeeded or fell back.
type GenerationResult struct {
	Exercise Exercise
	Metadata GenerationMetadata
}
