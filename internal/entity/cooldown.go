package entity

import "time"

// CooldownRecord tracks how recently a word was used for one (user, language) pair.
type CooldownRecord struct {
	Word            string
	Language        Language
	UserID          int64
	SessionID       string
	LastUsed        time.Time
	UsageCount      int
	CooldownUntil   time.Time
	ContextPattern  string
	DifficultyLevel Difficulty
}

// Available reports whether the word may be offered again at the given instant.
func (r *CooldownRecord) Available(now time.Time) bool {
	return !now.Before(r.CooldownUntil)
}

// Expired reports whether the record is stale enough to prune from caches.
// Durable history is kept regardless.
func (r *CooldownRecord) Expired(now time.Time, horizon time.Duration) bool {
	return now.Sub(r.CooldownUntil) > horizon
}

// Normalize ensures invariants before the record is cached or persisted.
func (r *CooldownRecord) Normalize() {
	r.Word = NormalizeWordToken(r.Word)
	r.Language = NormalizeLanguage(r.Language)
	if r.UsageCount < 0 {
		r.UsageCount = 0
	}
	if r.CooldownUntil.Before(r.LastUsed) {
		r.CooldownUntil = r.LastUsed
	}
}

// CooldownInfo explains why a candidate word was excluded from selection.
type CooldownInfo struct {
	CooldownUntil time.Time
	Reason        string
}

// CooldownStats is a read-only aggregation over a user's tracked words.
type CooldownStats struct {
	TotalTrackedWords    int
	ActiveCooldowns      int
	AverageCooldownHours float64
	RecentUsageRate      float64
}
