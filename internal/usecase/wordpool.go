package usecase

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"
	"unicode"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
)

const (
	defaultPriority    = 50.0
	recentUsageWindow  = 24 * time.Hour
	recentUsageLimit   = 2
	recencyFilterAge   = 4 * time.Hour
	recencyFilterFloor = 70.0
)

// WordPoolBuilder produces ranked candidate words by combining the static
// vocabulary base with the user's mastery and recent usage history.
type WordPoolBuilder interface {
	// IntelligentPool builds a ranked pool of at most targetSize candidates.
	// It never fails: on an internal error the base list is returned with
	// uniform default scores.
	IntelligentPool(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, excludeRecent bool, targetSize int) []entity.WordPoolEntry
	// PoolStats reports derived numbers over a freshly built pool.
	PoolStats(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty) entity.WordPoolStats
	// SelectOptimal greedily picks count words from the pool, trading
	// priority against dissimilarity to already-chosen words.
	SelectOptimal(pool []entity.WordPoolEntry, count int, diversityWeight float64) []string
}

type wordPoolBuilder struct {
	mastery   repository.MasteryRepository
	exercises repository.ExerciseRepository
	logger    *logrus.Logger
	clock     func() time.Time
	rng       *rand.Rand
}

// NewWordPoolBuilder wires the pool builder with its persistence collaborators.
func NewWordPoolBuilder(mastery repository.MasteryRepository, exercises repository.ExerciseRepository, logger *logrus.Logger) WordPoolBuilder {
	return &wordPoolBuilder{
		mastery:   mastery,
		exercises: exercises,
		logger:    logger,
		clock:     time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *wordPoolBuilder) IntelligentPool(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, excludeRecent bool, targetSize int) []entity.WordPoolEntry {
	language = entity.NormalizeLanguage(language)
	base := baseWords(language, difficulty)
	if targetSize <= 0 {
		targetSize = len(base)
	}

	masteryByWord, err := b.masteryIndex(ctx, userID, language)
	if err != nil {
		b.logger.WithError(err).Warn("word pool: mastery lookup failed, using base list")
		return fallbackPool(base, difficulty, targetSize)
	}

	recentUses, lastUsed, err := b.recentUsage(ctx, userID, language)
	if err != nil {
		b.logger.WithError(err).Warn("word pool: recent usage lookup failed, using base list")
		return fallbackPool(base, difficulty, targetSize)
	}

	pool := make([]entity.WordPoolEntry, 0, len(base))
	for _, word := range base {
		key := entity.NormalizeWordToken(word)
		uses := recentUses[key]
		if excludeRecent && uses >= recentUsageLimit {
			continue
		}

		entry := entity.WordPoolEntry{
			Word:            word,
			Frequency:       frequencyScore(word),
			DifficultyScore: difficultyScore(word, difficulty),
			RecentUses:      uses,
		}
		if record, ok := masteryByWord[key]; ok {
			entry.MasteryLevel = record.MasteryLevel
		}
		if used, ok := lastUsed[key]; ok {
			at := used
			entry.LastUsed = &at
		}
		_, seen := masteryByWord[key]
		entry.Priority = priorityScore(entry, difficulty, seen)
		pool = append(pool, entry)
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Priority > pool[j].Priority })
	if len(pool) > targetSize {
		pool = pool[:targetSize]
	}
	return pool
}

func (b *wordPoolBuilder) PoolStats(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty) entity.WordPoolStats {
	pool := b.IntelligentPool(ctx, userID, language, difficulty, false, 0)
	stats := entity.WordPoolStats{TotalWords: len(pool)}
	if len(pool) == 0 {
		return stats
	}

	now := b.clock()
	var totalDifficulty float64
	for _, entry := range pool {
		totalDifficulty += entry.DifficultyScore
		if entry.MasteryLevel >= 4 {
			stats.MasteredWords++
		}
		if entry.LastUsed != nil && now.Sub(*entry.LastUsed) < baseCooldown {
			stats.CoolingDownWords++
		}
	}
	stats.AvailableWords = stats.TotalWords - stats.CoolingDownWords
	stats.AverageDifficulty = totalDifficulty / float64(len(pool))
	return stats
}

func (b *wordPoolBuilder) SelectOptimal(pool []entity.WordPoolEntry, count int, diversityWeight float64) []string {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	now := b.clock()
	candidates := lo.Filter(pool, func(entry entity.WordPoolEntry, _ int) bool {
		if entry.LastUsed == nil || now.Sub(*entry.LastUsed) > recencyFilterAge {
			return true
		}
		return entry.Priority > recencyFilterFloor
	})
	if len(candidates) == 0 {
		// Everything is too recent: fall back to raw priority order.
		sorted := append([]entity.WordPoolEntry(nil), pool...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
		top := sorted[:min(count, len(sorted))]
		return lo.Map(top, func(e entity.WordPoolEntry, _ int) string { return e.Word })
	}

	selected := make([]string, 0, count)
	remaining := append([]entity.WordPoolEntry(nil), candidates...)
	for len(selected) < count && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, entry := range remaining {
			score := entry.Priority + wordDissimilarity(entry.Word, selected)*diversityWeight*100
			score += b.rng.Float64() * 2
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx].Word)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func (b *wordPoolBuilder) masteryIndex(ctx context.Context, userID int64, language entity.Language) (map[string]entity.WordMastery, error) {
	records, err := b.mastery.ListByUser(ctx, userID, language)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(records, func(m entity.WordMastery) (string, entity.WordMastery) {
		return entity.NormalizeWordToken(m.Word), m
	}), nil
}

func (b *wordPoolBuilder) recentUsage(ctx context.Context, userID int64, language entity.Language) (map[string]int, map[string]time.Time, error) {
	history, err := b.exercises.ListSince(ctx, userID, language, b.clock().Add(-recentUsageWindow))
	if err != nil {
		return nil, nil, err
	}
	uses := make(map[string]int)
	last := make(map[string]time.Time)
	for _, rec := range history {
		for _, target := range rec.TargetWords {
			key := entity.NormalizeWordToken(target)
			uses[key]++
			if rec.CreatedAt.After(last[key]) {
				last[key] = rec.CreatedAt
			}
		}
	}
	return uses, last, nil
}

// frequencyScore is a cheap corpus-free proxy: short words tend to be common.
func frequencyScore(word string) float64 {
	switch length := len([]rune(word)); {
	case length <= 3:
		return 90
	case length <= 5:
		return 70
	case length <= 8:
		return 50
	default:
		return 30
	}
}

func difficultyScore(word string, difficulty entity.Difficulty) float64 {
	score := difficulty.BaseScore()
	runes := []rune(word)
	if len(runes) > 10 {
		score += 15
	}
	if hasSpecialRune(word) {
		score += 10
	}
	if containsRune(word, '-') {
		score += 5
	}
	return clampScore(score)
}

func priorityScore(entry entity.WordPoolEntry, difficulty entity.Difficulty, seenBefore bool) float64 {
	priority := defaultPriority
	if entry.MasteryLevel < 3 {
		priority += 30
	}
	if !seenBefore && entry.RecentUses == 0 {
		priority += 20
	}
	if entry.RecentUses > 0 {
		priority -= math.Min(15*float64(entry.RecentUses), 40)
	}
	closeness := 100 - math.Abs(entry.DifficultyScore-difficulty.TargetScore())
	if closeness > 0 {
		priority += closeness * 0.2
	}
	return clampScore(priority)
}

// fallbackPool returns the base list with uniform default scores so the pool
// is never empty for a supported language.
func fallbackPool(base []string, difficulty entity.Difficulty, targetSize int) []entity.WordPoolEntry {
	pool := lo.Map(base, func(word string, _ int) entity.WordPoolEntry {
		return entity.WordPoolEntry{
			Word:            word,
			Frequency:       frequencyScore(word),
			DifficultyScore: difficulty.BaseScore(),
			Priority:        defaultPriority,
		}
	})
	if len(pool) > targetSize {
		pool = pool[:targetSize]
	}
	return pool
}

// wordDissimilarity scores how different a word is from the already-selected
// set, in [0,1]: length difference, differing first letter, differing ending
// bigram, averaged over the set.
func wordDissimilarity(word string, selected []string) float64 {
	if len(selected) == 0 {
		return 1
	}
	var total float64
	for _, other := range selected {
		total += pairDissimilarity(word, other)
	}
	return total / float64(len(selected))
}

func pairDissimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 1
	}
	lengthDiff := math.Min(math.Abs(float64(len(ra)-len(rb)))/5, 1)
	firstLetter := 0.0
	if unicode.ToLower(ra[0]) != unicode.ToLower(rb[0]) {
		firstLetter = 1
	}
	ending := 0.0
	if endingBigram(ra) != endingBigram(rb) {
		ending = 1
	}
	return (lengthDiff + firstLetter + ending) / 3
}

func endingBigram(runes []rune) string {
	if len(runes) < 2 {
		return string(runes)
	}
	return string(runes[len(runes)-2:])
}

func hasSpecialRune(word string) bool {
	for _, r := range word {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

func containsRune(word string, target rune) bool {
	for _, r := range word {
		if r == target {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
