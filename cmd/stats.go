/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	adapterrepo "github.com/eslsoft/drillnet/internal/adapter/repository"
	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/infrastructure/config"
	"github.com/eslsoft/drillnet/internal/infrastructure/database"
	"github.com/eslsoft/drillnet/internal/infrastructure/server"
	"github.com/eslsoft/drillnet/internal/usecase"
)

// statsCmd prints selection health for one user straight from the database,
// without going through the HTTP surface.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cooldown and diversity aggregates for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, _ := cmd.Flags().GetInt64("user")
		langCode, _ := cmd.Flags().GetString("language")
		sessionID, _ := cmd.Flags().GetString("session")
		lookback, _ := cmd.Flags().GetInt("lookback")
		if userID <= 0 {
			return entity.ErrInvalidUserID
		}
		language := entity.ParseLanguage(langCode)

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		exercises := adapterrepo.NewExerciseRepository(pool)
		mastery := adapterrepo.NewMasteryRepository(pool)
		tracker := usecase.NewCooldownTracker(exercises, mastery, usecase.NewCooldownCache(), logger)
		scorer := usecase.NewDiversityScorer(exercises, logger)
		patterns := usecase.NewPatternDiversity(exercises, logger)

		out := cmd.OutOrStdout()

		cooldown := tracker.Stats(ctx, userID, language, sessionID)
		fmt.Fprintf(out, "cooldown: %d tracked words, %d active cooldowns, %.1fh average, %.2f uses/hour\n",
			cooldown.TotalTrackedWords, cooldown.ActiveCooldowns,
			cooldown.AverageCooldownHours, cooldown.RecentUsageRate)

		metrics := scorer.AnalyzeSession(ctx, userID, language, sessionID, lookback)
		fmt.Fprintf(out, "diversity: overall %.1f (vocabulary %.1f, context %.1f, temporal %.1f, progression %.1f)\n",
			metrics.OverallScore, metrics.VocabularyVariety, metrics.ContextDiversity,
			metrics.TemporalDistribution, metrics.DifficultyProgression)
		for _, insight := range scorer.Report(metrics) {
			fmt.Fprintf(out, "  - %s\n", insight)
		}

		structure := patterns.Analyze(ctx, userID, language, sessionID, lookback)
		fmt.Fprintf(out, "patterns: %d recent, %d unique, distribution %.1f, complexity %.2f\n",
			structure.RecentPatternCount, structure.UniquePatterns,
			structure.PatternDistribution, structure.AverageComplexity)
		avoided := patterns.AvoidancePatterns(ctx, userID, language, "", sessionID, lookback)
		if len(avoided) > 0 {
			fmt.Fprintf(out, "overused patterns: %v\n", avoided)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Int64("user", 0, "user ID to inspect")
	statsCmd.Flags().String("language", "de", "language code")
	statsCmd.Flags().String("session", "", "restrict to one session")
	statsCmd.Flags().Int("lookback", 24, "lookback window in hours")
}
