package usecase

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
)

func newTestSelector(mastery *fakeMasteryRepo, exercises *fakeExerciseRepo, fixed time.Time, seed int64) *wordSelector {
	builder := newTestPoolBuilder(mastery, exercises, fixed, seed)
	selector := NewWordSelector(builder, testLogger()).(*wordSelector)
	selector.clock = func() time.Time { return fixed }
	selector.rng = rand.New(rand.NewSource(seed))
	return selector
}

func TestSelectReturnsRequestedCount(t *testing.T) {
	selector := newTestSelector(newFakeMasteryRepo(), newFakeExerciseRepo(), time.Now(), 1)

	selection := selector.Select(context.Background(), 1, entity.LanguageGerman, entity.DifficultyBeginner, "sess-1", 3, nil)
	if len(selection.SelectedWords) != 3 {
		t.Fatalf("expected 3 words, got %v", selection.SelectedWords)
	}
	seen := map[string]bool{}
	for _, word := range selection.SelectedWords {
		if seen[word] {
			t.Fatalf("duplicate word %q in %v", word, selection.SelectedWords)
		}
		seen[word] = true
	}
	if selection.SelectionReason == "" {
		t.Error("selection reason must be populated")
	}
	if selection.DiversityScore < 0 || selection.DiversityScore > 100 {
		t.Errorf("diversity score out of range: %v", selection.DiversityScore)
	}
}

func TestSelectOffersAlternatives(t *testing.T) {
	selector := newTestSelector(newFakeMasteryRepo(), newFakeExerciseRepo(), time.Now(), 1)

	selection := selector.Select(context.Background(), 1, entity.LanguageEnglish, entity.DifficultyIntermediate, "sess-1", 2, nil)
	if len(selection.AlternativeWords) != 3 {
		t.Fatalf("expected 3 alternatives, got %v", selection.AlternativeWords)
	}
	chosen := map[string]bool{}
	for _, word := range selection.SelectedWords {
		chosen[word] = true
	}
	for _, alt := range selection.AlternativeWords {
		if chosen[alt] {
			t.Errorf("alternative %q overlaps the selection", alt)
		}
	}
}

func TestSelectSingleWordIsMaximallyDiverse(t *testing.T) {
	selector := newTestSelector(newFakeMasteryRepo(), newFakeExerciseRepo(), time.Now(), 1)

	selection := selector.Select(context.Background(), 1, entity.LanguageFrench, entity.DifficultyBeginner, "sess-1", 1, nil)
	if len(selection.SelectedWords) != 1 {
		t.Fatalf("expected 1 word, got %v", selection.SelectedWords)
	}
	if selection.DiversityScore != 100 {
		t.Errorf("single word selection must score 100 diversity, got %v", selection.DiversityScore)
	}
}

func TestSelectDeterministicWithSeededJitter(t *testing.T) {
	run := func() entity.WordSelection {
		selector := newTestSelector(newFakeMasteryRepo(), newFakeExerciseRepo(), time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC), 11)
		return selector.Select(context.Background(), 1, entity.LanguageSpanish, entity.DifficultyBeginner, "sess-1", 3, nil)
	}
	first := run()
	second := run()
	if !reflect.DeepEqual(first.SelectedWords, second.SelectedWords) {
		t.Errorf("seeded selection must be deterministic: %v vs %v", first.SelectedWords, second.SelectedWords)
	}
}

func TestSelectPenalizesRecentlyUsedWords(t *testing.T) {
	now := time.Date(2024, 4, 5, 12, 0, 0, 0, time.UTC)
	selector := newTestSelector(newFakeMasteryRepo(), newFakeExerciseRepo(), now, 3)

	used := now.Add(-30 * time.Minute)
	fresh := entity.WordPoolEntry{Word: "garten", DifficultyScore: 20, Frequency: 50}
	stale := entity.WordPoolEntry{Word: "fenster", DifficultyScore: 20, Frequency: 50, LastUsed: &used, RecentUses: 1}

	crit := entity.DefaultSelectionCriteria()
	freshScore := selector.scoreCandidate(fresh, entity.DifficultyBeginner, crit, now)
	staleScore := selector.scoreCandidate(stale, entity.DifficultyBeginner, crit, now)
	if staleScore >= freshScore {
		t.Errorf("recently used word must score lower: fresh=%v stale=%v", freshScore, staleScore)
	}
}

func TestSelectionReasonTiers(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{80, "high"},
		{60, "good"},
		{40, "moderate"},
	}
	for _, tc := range cases {
		reason := selectionReason(tc.score, 1, 2)
		if !strings.HasPrefix(reason, tc.tier) {
			t.Errorf("score %v: expected tier %q, got %q", tc.score, tc.tier, reason)
		}
	}
	if selectionReason(80, 2, 1) != "high score selection: 2 new words, 1 review words" {
		t.Errorf("unexpected reason text: %q", selectionReason(80, 2, 1))
	}
}

func TestSelectEmptyPoolYieldsEmptySelection(t *testing.T) {
	now := time.Date(2024, 4, 5, 12, 0, 0, 0, time.UTC)
	exercises := newFakeExerciseRepo()
	// Every base word used twice within the window, so the exclusion filter
	// drains the pool completely.
	for _, word := range baseWords(entity.LanguageGerman, entity.DifficultyBeginner) {
		for i := 0; i < recentUsageLimit; i++ {
			exercises.seed(entity.ExerciseRecord{
				UserID: 1, Language: entity.LanguageGerman, TargetWords: []string{word},
				CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
			})
		}
	}
	selector := newTestSelector(newFakeMasteryRepo(), exercises, now, 1)

	selection := selector.Select(context.Background(), 1, entity.LanguageGerman, entity.DifficultyBeginner, "sess-1", 2, nil)
	if len(selection.SelectedWords) != 0 {
		t.Fatalf("expected empty selection, got %v", selection.SelectedWords)
	}
	if selection.SelectionReason == "" {
		t.Error("empty selection still carries a reason")
	}
}

func TestSelectHonorsMaxRecentUsageCriterion(t *testing.T) {
	fixed := time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC)
	exercises := newFakeExerciseRepo()
	exercises.seed(entity.ExerciseRecord{
		UserID: 1, Language: entity.LanguageGerman, TargetWords: []string{"haus"},
		Sentence: "Das Haus ist hier.", CreatedAt: fixed.Add(-time.Hour),
	})
	selector := newTestSelector(newFakeMasteryRepo(), exercises, fixed, 1)

	// One use in the window keeps haus under the pool builder's cutoff, so
	// the default criteria still surface it when everything is requested.
	relaxed := selector.Select(context.Background(), 1, entity.LanguageGerman, entity.DifficultyBeginner, "sess-1", 50, nil)
	found := false
	for _, word := range relaxed.SelectedWords {
		if word == "haus" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected haus among %v under default criteria", relaxed.SelectedWords)
	}

	crit := entity.DefaultSelectionCriteria()
	crit.MaxRecentUsage = 1
	strict := selector.Select(context.Background(), 1, entity.LanguageGerman, entity.DifficultyBeginner, "sess-1", 50, &crit)
	if len(strict.SelectedWords) == 0 {
		t.Fatal("expected a non-empty selection from the remaining words")
	}
	for _, word := range append(append([]string{}, strict.SelectedWords...), strict.AlternativeWords...) {
		if word == "haus" {
			t.Fatalf("word over the recent-usage cutoff must not surface: %v / %v",
				strict.SelectedWords, strict.AlternativeWords)
		}
	}
}
