package entity

import "time"

// WordPoolEntry is a scored candidate word for the next exercise.
// Priority is always recomputed from the other fields, never read back from storage.
type WordPoolEntry struct {
	Word            string
	Frequency       float64
	DifficultyScore float64
	MasteryLevel    int
	LastUsed        *time.Time
	RecentUses      int
	Priority        float64
}

// WordPoolStats is a derived report over a freshly built pool.
type WordPoolStats struct {
	TotalWords        int
	AvailableWords    int
	CoolingDownWords  int
	MasteredWords     int
	AverageDifficulty float64
}

// SelectionCriteria tunes the diversity-aware word selector.
type SelectionCriteria struct {
	MaxRecentUsage   int
	MinCooldownHours float64
	DiversityWeight  float64
	NoveltyWeight    float64
}

// DefaultSelectionCriteria returns the selector defaults.
func DefaultSelectionCriteria() SelectionCriteria {
	return SelectionCriteria{
		MaxRecentUsage:   2,
		MinCooldownHours: 8,
		DiversityWeight:  0.4,
		NoveltyWeight:    0.3,
	}
}

// WordSelection is the outcome of a diversity-aware pick from a candidate pool.
type WordSelection struct {
	SelectedWords    []string
	SelectionReason  string
	DiversityScore   float64
	AlternativeWords []string
}

// WordMastery is the durable per-word learning history for a user.
type WordMastery struct {
	UserID         int64
	Word           string
	Language       Language
	ReviewCount    int
	CorrectCount   int
	MasteryLevel   int
	LastReviewedAt *time.Time
}

// Normalize clamps mastery fields into their valid ranges.
func (m *WordMastery) Normalize() {
	m.Word = NormalizeWordToken(m.Word)
	m.Language = NormalizeLanguage(m.Language)
	if m.MasteryLevel < 0 {
		m.MasteryLevel = 0
	}
	if m.MasteryLevel > 5 {
		m.MasteryLevel = 5
	}
	if m.ReviewCount < 0 {
		m.ReviewCount = 0
	}
	if m.CorrectCount > m.ReviewCount {
		m.CorrectCount = m.ReviewCount
	}
}
