package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eslsoft/drillnet/internal/entity"
)

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, entity.ErrInvalidUserID
	}
	return id, nil
}

func languageQuery(r *http.Request) entity.Language {
	return entity.NormalizeLanguage(entity.Language(r.URL.Query().Get("language")))
}

func lookbackQuery(r *http.Request) int {
	hours, _ := strconv.Atoi(r.URL.Query().Get("lookback_hours"))
	return hours
}

func (h *Handler) handleCooldownStats(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats := h.tracker.Stats(r.Context(), userID, languageQuery(r), r.URL.Query().Get("session_id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"total_tracked_words":    stats.TotalTrackedWords,
		"active_cooldowns":       stats.ActiveCooldowns,
		"average_cooldown_hours": stats.AverageCooldownHours,
		"recent_usage_rate":      stats.RecentUsageRate,
	})
}

func (h *Handler) handleDiversity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics := h.scorer.AnalyzeSession(r.Context(), userID, languageQuery(r), r.URL.Query().Get("session_id"), lookbackQuery(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"vocabulary_variety":     metrics.VocabularyVariety,
		"context_diversity":      metrics.ContextDiversity,
		"temporal_distribution":  metrics.TemporalDistribution,
		"difficulty_progression": metrics.DifficultyProgression,
		"overall_score":          metrics.OverallScore,
		"insights":               h.scorer.Report(metrics),
	})
}

func (h *Handler) handlePatterns(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	language := languageQuery(r)
	sessionID := r.URL.Query().Get("session_id")
	lookback := lookbackQuery(r)

	analysis := h.patterns.Analyze(r.Context(), userID, language, sessionID, lookback)
	avoid := h.patterns.AvoidancePatterns(r.Context(), userID, language,
		entity.Difficulty(r.URL.Query().Get("difficulty")), sessionID, lookback)
	writeJSON(w, http.StatusOK, map[string]any{
		"recent_pattern_count": analysis.RecentPatternCount,
		"unique_patterns":      analysis.UniquePatterns,
		"pattern_distribution": analysis.PatternDistribution,
		"average_complexity":   analysis.AverageComplexity,
		"avoidance_patterns":   avoid,
	})
}

func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, entity.ErrInvalidSessionID)
		return
	}
	h.orchestrator.ClearSession(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"cleared": sessionID})
}
