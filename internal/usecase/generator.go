package usecase

import "context"

// GenerationRequest is the envelope sent to the external sentence generator.
type GenerationRequest struct {
	Language             string   `json:"language"`
	DifficultyLevel      string   `json:"difficulty_level"`
	SessionID            string   `json:"session_id"`
	UserID               int64    `json:"user_id"`
	PreviousSentences    []string `json:"previous_sentences"`
	PreferredWords       []string `json:"preferred_words"`
	AvoidPatterns        []string `json:"avoid_patterns"`
	DiversityScoreTarget float64  `json:"diversity_score_target"`
	EnhancedMode         bool     `json:"enhanced_mode"`
}

// GeneratedSentence is the generator's response shape. A response missing
// Sentence or TargetWord is treated as a failure by the orchestrator.
type GeneratedSentence struct {
	Sentence        string   `json:"sentence"`
	TargetWord      string   `json:"targetWord"`
	ClozeSentence   string   `json:"clozeSentence"`
	Translation     string   `json:"translation"`
	Context         string   `json:"context"`
	DifficultyScore float64  `json:"difficultyScore"`
	Hints           []string `json:"hints"`
}

// SentenceGenerator abstracts the external sentence-generation capability.
type SentenceGenerator interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GeneratedSentence, error)
}
