package entity

// DiversityMetrics is an aggregate quality report for a learning session.
// It is recomputed on demand and never persisted.
type DiversityMetrics struct {
	VocabularyVariety     float64
	ContextDiversity      float64
	TemporalDistribution  float64
	DifficultyProgression float64
	OverallScore          float64
}

// Weighted combination of the four component metrics (30/25/25/20).
const (
	weightVocabulary = 0.30
	weightContext    = 0.25
	weightTemporal   = 0.25
	weightDifficulty = 0.20
)

// ComputeOverall fills OverallScore from the component metrics.
func (m *DiversityMetrics) ComputeOverall() {
	m.OverallScore = weightVocabulary*m.VocabularyVariety +
		weightContext*m.ContextDiversity +
		weightTemporal*m.TemporalDistribution +
		weightDifficulty*m.DifficultyProgression
}

// PatternDiversity summarizes the structural variety of recent sentences.
type PatternDiversity struct {
	UniquePatterns      int
	AverageComplexity   float64
	PatternDistribution float64
	RecentPatternCount  int
}

// SingleWordPick is the result of the single-word diversity-optimal selection.
type SingleWordPick struct {
	SelectedWords   []string
	DiversityScore  float64
	SelectionReason string
}
