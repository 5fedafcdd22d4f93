package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
)

func newTestTracker(exercises *fakeExerciseRepo, mastery *fakeMasteryRepo, fixed time.Time) (*cooldownTracker, *CooldownCache) {
	cache := NewCooldownCache()
	tracker := NewCooldownTracker(exercises, mastery, cache, testLogger()).(*cooldownTracker)
	tracker.clock = func() time.Time { return fixed }
	return tracker, cache
}

func TestRecordUsageCooldownGrowsWithRepetition(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker, cache := newTestTracker(exercises, mastery, fixed)

	usage := WordUsage{
		UserID:          1,
		Word:            "haus",
		Language:        entity.LanguageGerman,
		SessionID:       "s1",
		Sentence:        "Das Haus ist hier.",
		ContextPattern:  "short_",
		DifficultyLevel: entity.DifficultyBeginner,
	}

	tracker.RecordUsage(context.Background(), usage)
	first := cache.Records("s1")["haus"]
	if first == nil {
		t.Fatal("expected cooldown record after first usage")
	}
	if first.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", first.UsageCount)
	}

	// The exercise row lands via context tracking in the real flow.
	exercises.seed(entity.ExerciseRecord{
		UserID: 1, Language: entity.LanguageGerman, TargetWords: []string{"haus"},
		Sentence: usage.Sentence, CreatedAt: fixed,
	})

	tracker.RecordUsage(context.Background(), usage)
	second := cache.Records("s1")["haus"]
	if second.UsageCount != 2 {
		t.Fatalf("expected usage count 2, got %d", second.UsageCount)
	}
	if second.CooldownUntil.Before(first.CooldownUntil) {
		t.Errorf("cooldown must be weakly increasing: first %v, second %v", first.CooldownUntil, second.CooldownUntil)
	}
}

func TestCooldownDurationAlwaysWithinBounds(t *testing.T) {
	difficulties := []entity.Difficulty{entity.DifficultyBeginner, entity.DifficultyIntermediate, entity.DifficultyAdvanced}
	patterns := []string{"", "short_", "short_simple", "complex_comma_subordinate_multi_verb"}
	sentences := []string{"", "Hi.", "Because it rained, we stayed home; what a day, and what a mess!"}

	for usageCount := 0; usageCount <= 20; usageCount++ {
		for _, difficulty := range difficulties {
			for _, pattern := range patterns {
				for _, sentence := range sentences {
					duration := cooldownDuration(usageCount, difficulty, pattern, sentence, entity.LanguageEnglish)
					hours := duration.Hours()
					if hours < 8 || hours > 168 {
						t.Fatalf("cooldown %v hours out of [8,168] for count=%d difficulty=%s pattern=%q", hours, usageCount, difficulty, pattern)
					}
				}
			}
		}
	}
}

func TestRecordUsageRepeatedSimpleContextScenario(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	fixed := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	tracker, cache := newTestTracker(exercises, mastery, fixed)

	// Two prior uses within the 7-day window make this the third use.
	for i := 0; i < 2; i++ {
		exercises.seed(entity.ExerciseRecord{
			UserID: 7, Language: entity.LanguageGerman, TargetWords: []string{"haus"},
			CreatedAt: fixed.Add(-time.Duration(i+1) * time.Hour),
		})
	}

	// Mid-complexity sentence (comma, question, coordinating conjunction:
	// three of seven features) keeps the complexity adjustment at 1.0.
	tracker.RecordUsage(context.Background(), WordUsage{
		UserID:          7,
		Word:            "haus",
		Language:        entity.LanguageGerman,
		SessionID:       "s1",
		Sentence:        "Das Haus ist groß, und es ist schön, oder?",
		ContextPattern:  "short_simple",
		DifficultyLevel: entity.DifficultyBeginner,
	})

	record := cache.Records("s1")["haus"]
	if record == nil {
		t.Fatal("expected cooldown record")
	}
	if record.UsageCount != 3 {
		t.Fatalf("expected usage count 3, got %d", record.UsageCount)
	}

	// 8h * 1.8^2 * 0.8 + 6h = 26.944h.
	gotHours := record.CooldownUntil.Sub(record.LastUsed).Hours()
	wantHours := 8*1.8*1.8*0.8 + 6
	if diff := gotHours - wantHours; diff > 0.001 || diff < -0.001 {
		t.Errorf("expected cooldown %.3fh, got %.3fh", wantHours, gotHours)
	}
}

func TestAvailableWordsPartitionsByCooldown(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	now := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	tracker, cache := newTestTracker(exercises, mastery, now)

	cache.Put("s1", &entity.CooldownRecord{
		Word: "auto", Language: entity.LanguageGerman, UserID: 1, SessionID: "s1",
		LastUsed: now.Add(-20 * time.Hour), UsageCount: 1,
		CooldownUntil: now.Add(-time.Hour), ContextPattern: "short_",
	})
	cache.Put("s1", &entity.CooldownRecord{
		Word: "haus", Language: entity.LanguageGerman, UserID: 1, SessionID: "s1",
		LastUsed: now.Add(-time.Hour), UsageCount: 4,
		CooldownUntil: now.Add(10 * time.Hour), ContextPattern: "short_question",
	})

	available, info := tracker.AvailableWords(context.Background(), 1, entity.LanguageGerman,
		[]string{"haus", "auto", "wasser"}, "s1", "short_question")

	if len(available) != 2 {
		t.Fatalf("expected 2 available words, got %v", available)
	}
	for _, word := range available {
		if word == "haus" {
			t.Error("haus is cooling down and must be excluded")
		}
	}
	blocked, ok := info["haus"]
	if !ok {
		t.Fatal("expected cooldown info for haus")
	}
	if !blocked.CooldownUntil.Equal(now.Add(10 * time.Hour)) {
		t.Errorf("unexpected cooldown until: %v", blocked.CooldownUntil)
	}
	if want := "used 4 times in the last 7 days, same context pattern"; blocked.Reason != want {
		t.Errorf("expected reason %q, got %q", want, blocked.Reason)
	}
}

func TestAvailableWordsFailsOpenOnPersistenceError(t *testing.T) {
	exercises := newFakeExerciseRepo()
	exercises.listErr = errors.New("connection refused")
	mastery := newFakeMasteryRepo()
	tracker, _ := newTestTracker(exercises, mastery, time.Now())

	candidates := []string{"haus", "auto"}
	available, info := tracker.AvailableWords(context.Background(), 1, entity.LanguageGerman, candidates, "cold-session", "")

	if len(available) != len(candidates) {
		t.Fatalf("fail-open must return all candidates, got %v", available)
	}
	if len(info) != 0 {
		t.Fatalf("fail-open must return empty info, got %v", info)
	}
}

func TestAvailableWordsRebuildsFromHistory(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(exercises, mastery, now)

	// Three recent uses of "wasser": rebuilt cooldown far exceeds one hour.
	for i := 0; i < 3; i++ {
		exercises.seed(entity.ExerciseRecord{
			UserID: 1, Language: entity.LanguageGerman, TargetWords: []string{"wasser"},
			Sentence: "Das Wasser ist kalt.", Fingerprint: "short_",
			Difficulty: entity.DifficultyBeginner,
			CreatedAt:  now.Add(-time.Duration(i+1) * time.Hour),
		})
	}

	available, info := tracker.AvailableWords(context.Background(), 1, entity.LanguageGerman,
		[]string{"wasser", "brot"}, "fresh-session", "")

	if len(available) != 1 || available[0] != "brot" {
		t.Fatalf("expected only brot available, got %v", available)
	}
	if _, ok := info["wasser"]; !ok {
		t.Fatal("expected cooldown info for wasser")
	}
}

func TestStatsAggregatesTrackedWords(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	tracker, cache := newTestTracker(exercises, mastery, now)

	cache.Put("s1", &entity.CooldownRecord{
		Word: "haus", UserID: 1, Language: entity.LanguageGerman, SessionID: "s1",
		LastUsed: now.Add(-2 * time.Hour), CooldownUntil: now.Add(6 * time.Hour), UsageCount: 2,
	})
	cache.Put("s1", &entity.CooldownRecord{
		Word: "auto", UserID: 1, Language: entity.LanguageGerman, SessionID: "s1",
		LastUsed: now.Add(-30 * time.Hour), CooldownUntil: now.Add(-22 * time.Hour), UsageCount: 1,
	})
	for i := 0; i < 6; i++ {
		exercises.seed(entity.ExerciseRecord{
			UserID: 1, Language: entity.LanguageGerman, TargetWords: []string{"haus"},
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	stats := tracker.Stats(context.Background(), 1, entity.LanguageGerman, "s1")
	if stats.TotalTrackedWords != 2 {
		t.Errorf("expected 2 tracked words, got %d", stats.TotalTrackedWords)
	}
	if stats.ActiveCooldowns != 1 {
		t.Errorf("expected 1 active cooldown, got %d", stats.ActiveCooldowns)
	}
	if want := 6.0 / 24.0; stats.RecentUsageRate != want {
		t.Errorf("expected usage rate %.3f, got %.3f", want, stats.RecentUsageRate)
	}
}

func TestRecordUsagePreservesAssessedMastery(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(exercises, mastery, fixed)

	earlier := fixed.Add(-48 * time.Hour)
	mastery.seed(entity.WordMastery{
		UserID: 1, Word: "haus", Language: entity.LanguageGerman,
		ReviewCount: 12, CorrectCount: 10, MasteryLevel: 4,
		LastReviewedAt: &earlier,
	})

	tracker.RecordUsage(context.Background(), WordUsage{
		UserID: 1, Word: "haus", Language: entity.LanguageGerman,
		SessionID: "s1", Sentence: "Das Haus ist hier.",
		ContextPattern: "short_", DifficultyLevel: entity.DifficultyBeginner,
	})

	records, err := mastery.ListByUser(context.Background(), 1, entity.LanguageGerman)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one mastery row, got %+v (err %v)", records, err)
	}
	got := records[0]
	if got.MasteryLevel != 4 || got.CorrectCount != 10 {
		t.Fatalf("assessed mastery must survive usage tracking, got level %d correct %d", got.MasteryLevel, got.CorrectCount)
	}
	if got.ReviewCount != 13 {
		t.Errorf("expected review count 13, got %d", got.ReviewCount)
	}
	if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(fixed) {
		t.Errorf("expected last review at %v, got %v", fixed, got.LastReviewedAt)
	}
}

func TestRecordUsageSwallowsReviewPersistenceErrors(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	mastery.reviewErr = errors.New("connection refused")
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker, cache := newTestTracker(exercises, mastery, fixed)

	tracker.RecordUsage(context.Background(), WordUsage{
		UserID: 1, Word: "haus", Language: entity.LanguageGerman,
		SessionID: "s1", Sentence: "Das Haus ist hier.",
		ContextPattern: "short_", DifficultyLevel: entity.DifficultyBeginner,
	})

	if cache.Records("s1")["haus"] == nil {
		t.Error("cooldown tracking must proceed when the review write fails")
	}
}

func TestClearSessionDropsOnlyCache(t *testing.T) {
	exercises := newFakeExerciseRepo()
	mastery := newFakeMasteryRepo()
	now := time.Now()
	tracker, cache := newTestTracker(exercises, mastery, now)

	cache.Put("s1", &entity.CooldownRecord{Word: "haus", SessionID: "s1", LastUsed: now, CooldownUntil: now.Add(8 * time.Hour)})
	cache.Put("s2", &entity.CooldownRecord{Word: "auto", SessionID: "s2", LastUsed: now, CooldownUntil: now.Add(8 * time.Hour)})

	tracker.ClearSession("s1")
	if cache.HasSession("s1") {
		t.Error("expected s1 cache to be cleared")
	}
	if !cache.HasSession("s2") {
		t.Error("expected s2 cache to survive")
	}
}
