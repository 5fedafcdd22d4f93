package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
)

const selectorPoolSize = 50

// WordSelector picks N words from a freshly built pool with a diversity-aware
// greedy algorithm. An empty pool yields an empty selection, not an error.
type WordSelector interface {
	Select(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, sessionID string, wordCount int, criteria *entity.SelectionCriteria) entity.WordSelection
}

type wordSelector struct {
	pool   WordPoolBuilder
	logger *logrus.Logger
	clock  func() time.Time
	rng    *rand.Rand
}

// NewWordSelector wires the selector on top of the pool builder.
func NewWordSelector(pool WordPoolBuilder, logger *logrus.Logger) WordSelector {
	return &wordSelector{
		pool:   pool,
		logger: logger,
		clock:  time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// scoredCandidate pairs a pool entry with its selection score.
type scoredCandidate struct {
	entry entity.WordPoolEntry
	score float64
}

func (s *wordSelector) Select(ctx context.Context, userID int64, language entity.Language, difficulty entity.Difficulty, sessionID string, wordCount int, criteria *entity.SelectionCriteria) entity.WordSelection {
	crit := entity.DefaultSelectionCriteria()
	if criteria != nil {
		crit = *criteria
	}
	if wordCount <= 0 {
		wordCount = 1
	}

	pool := s.pool.IntelligentPool(ctx, userID, language, difficulty, true, selectorPoolSize)
	if crit.MaxRecentUsage > 0 {
		// Same cutoff semantics as the pool builder's own recency limit:
		// a word used MaxRecentUsage times in the window is out. Zero
		// leaves the cutoff to the pool builder.
		pool = lo.Filter(pool, func(entry entity.WordPoolEntry, _ int) bool {
			return entry.RecentUses < crit.MaxRecentUsage
		})
	}
	if len(pool) == 0 {
		return entity.WordSelection{
			SelectedWords:   []string{},
			SelectionReason: "no candidates available for the requested language and difficulty",
		}
	}

	now := s.clock()
	candidates := lo.Map(pool, func(entry entity.WordPoolEntry, _ int) scoredCandidate {
		return scoredCandidate{entry: entry, score: s.scoreCandidate(entry, difficulty, crit, now)}
	})
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	selected := s.greedyPick(candidates, wordCount, crit)

	words := lo.Map(selected, func(c scoredCandidate, _ int) string { return c.entry.Word })
	alternatives := s.alternatives(candidates, words)

	diversity := selectionDiversity(words)
	newWords := lo.CountBy(selected, func(c scoredCandidate) bool { return c.entry.MasteryLevel == 0 && c.entry.LastUsed == nil })
	reviewWords := lo.CountBy(selected, func(c scoredCandidate) bool { return c.entry.MasteryLevel > 0 && c.entry.MasteryLevel < 3 })

	var avgScore float64
	for _, c := range selected {
		avgScore += c.score
	}
	if len(selected) > 0 {
		avgScore /= float64(len(selected))
	}

	return entity.WordSelection{
		SelectedWords:    words,
		SelectionReason:  selectionReason(avgScore, newWords, reviewWords),
		DiversityScore:   diversity,
		AlternativeWords: alternatives,
	}
}

// scoreCandidate re-scores a pool entry against the session's target
// difficulty: recent usage and unexpired cooldowns push a word down, closeness
// to the target tier, low mastery, and frequency push it up.
func (s *wordSelector) scoreCandidate(entry entity.WordPoolEntry, difficulty entity.Difficulty, crit entity.SelectionCriteria, now time.Time) float64 {
	score := 50.0

	score -= math.Min(20*float64(entry.RecentUses), 40)

	if entry.LastUsed != nil {
		hoursSince := now.Sub(*entry.LastUsed).Hours()
		if hoursSince < crit.MinCooldownHours && crit.MinCooldownHours > 0 {
			// Linear decay: a just-used word takes the full penalty.
			score -= 25 * (1 - hoursSince/crit.MinCooldownHours)
		}
	}

	closeness := 100 - math.Abs(entry.DifficultyScore-difficulty.TargetScore())
	if closeness > 0 {
		score += closeness * 0.15
	}

	if entry.MasteryLevel < 3 {
		score += crit.NoveltyWeight * float64(3-entry.MasteryLevel) * 10
	}

	score += entry.Frequency * 0.1
	score += s.rng.Float64()*4 - 2

	return score
}

// greedyPick repeatedly takes the best candidate; after the first pick every
// remaining candidate's score is boosted by its dissimilarity to the words
// already chosen, weighted by the diversity weight.
func (s *wordSelector) greedyPick(candidates []scoredCandidate, wordCount int, crit entity.SelectionCriteria) []scoredCandidate {
	selected := make([]scoredCandidate, 0, wordCount)
	remaining := append([]scoredCandidate(nil), candidates...)
	chosenWords := make([]string, 0, wordCount)

	for len(selected) < wordCount && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, c := range remaining {
			score := c.score
			if len(chosenWords) > 0 {
				score += selectorDissimilarity(c.entry, selected) * crit.DiversityWeight * 20
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		chosenWords = append(chosenWords, remaining[bestIdx].entry.Word)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func (s *wordSelector) alternatives(candidates []scoredCandidate, chosen []string) []string {
	chosenSet := lo.SliceToMap(chosen, func(w string) (string, struct{}) { return w, struct{}{} })
	alternatives := make([]string, 0, 3)
	for _, c := range candidates {
		if _, ok := chosenSet[c.entry.Word]; ok {
			continue
		}
		alternatives = append(alternatives, c.entry.Word)
		if len(alternatives) == 3 {
			break
		}
	}
	return alternatives
}

// selectorDissimilarity compares a candidate against the already-selected
// entries on length, first character, and difficulty distance.
func selectorDissimilarity(entry entity.WordPoolEntry, selected []scoredCandidate) float64 {
	if len(selected) == 0 {
		return 1
	}
	var total float64
	for _, other := range selected {
		d := pairDissimilarity(entry.Word, other.entry.Word)
		diffDelta := math.Min(math.Abs(entry.DifficultyScore-other.entry.DifficultyScore)/50, 1)
		total += (d + diffDelta) / 2
	}
	return total / float64(len(selected))
}

// selectionDiversity is the average pairwise dissimilarity of the selected
// words, scaled to [0,100]. A single word scores maximally diverse.
func selectionDiversity(words []string) float64 {
	if len(words) < 2 {
		return 100
	}
	var total float64
	var pairs int
	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			total += pairDissimilarity(words[i], words[j])
			pairs++
		}
	}
	return total / float64(pairs) * 100
}

func selectionReason(avgScore float64, newWords, reviewWords int) string {
	tier := "moderate"
	switch {
	case avgScore >= 70:
		tier = "high"
	case avgScore >= 55:
		tier = "good"
	}
	return fmt.Sprintf("%s score selection: %d new words, %d review words", tier, newWords, reviewWords)
}
