package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/eslsoft/drillnet/internal/entity"
	"github.com/eslsoft/drillnet/internal/repository"
)

type generateRequest struct {
	UserID            int64    `json:"user_id"`
	SessionID         string   `json:"session_id"`
	Language          string   `json:"language"`
	Difficulty        string   `json:"difficulty"`
	PreviousExercises []string `json:"previous_exercises,omitempty"`
	Count             int      `json:"count,omitempty"`
}

func (req *generateRequest) params() entity.GenerationParams {
	return entity.GenerationParams{
		UserID:            req.UserID,
		SessionID:         req.SessionID,
		Language:          entity.Language(req.Language),
		Difficulty:        entity.Difficulty(req.Difficulty),
		PreviousExercises: req.PreviousExercises,
	}
}

type exerciseDTO struct {
	ID              string   `json:"id"`
	Sentence        string   `json:"sentence"`
	TargetWord      string   `json:"target_word"`
	ClozeSentence   string   `json:"cloze_sentence"`
	Translation     string   `json:"translation,omitempty"`
	Context         string   `json:"context,omitempty"`
	DifficultyScore float64  `json:"difficulty_score"`
	Hints           []string `json:"hints,omitempty"`
}

type metadataDTO struct {
	GenerationTimeMs int64   `json:"generation_time_ms"`
	FallbackUsed     bool    `json:"fallback_used"`
	SelectionQuality float64 `json:"selection_quality"`
	DiversityScore   float64 `json:"diversity_score"`
	SelectionReason  string  `json:"selection_reason,omitempty"`
	DegradedReason   string  `json:"degraded_reason,omitempty"`
	FinalState       string  `json:"final_state"`
}

type generateResponse struct {
	Exercise exerciseDTO `json:"exercise"`
	Metadata metadataDTO `json:"metadata"`
}

func toResponse(result *entity.GenerationResult) generateResponse {
	return generateResponse{
		Exercise: exerciseDTO{
			ID:              result.Exercise.ID,
			Sentence:        result.Exercise.Sentence,
			TargetWord:      result.Exercise.TargetWord,
			ClozeSentence:   result.Exercise.ClozeSentence,
			Translation:     result.Exercise.Translation,
			Context:         result.Exercise.Context,
			DifficultyScore: result.Exercise.DifficultyScore,
			Hints:           result.Exercise.Hints,
		},
		Metadata: metadataDTO{
			GenerationTimeMs: result.Metadata.GenerationTime.Milliseconds(),
			FallbackUsed:     result.Metadata.FallbackUsed,
			SelectionQuality: result.Metadata.SelectionQuality,
			DiversityScore:   result.Metadata.DiversityScore,
			SelectionReason:  result.Metadata.SelectionReason,
			DegradedReason:   result.Metadata.DegradedReason,
			FinalState:       string(result.Metadata.FinalState),
		},
	}
}

func decodeGenerateRequest(r *http.Request) (*generateRequest, error) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	result, err := h.orchestrator.Generate(r.Context(), req.params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(result))
}

func (h *Handler) handleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	if count > 10 {
		count = 10
	}
	results := h.orchestrator.BatchGenerate(r.Context(), req.params(), count)
	out := make([]generateResponse, 0, len(results))
	for _, result := range results {
		out = append(out, toResponse(result))
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercises": out})
}

func (h *Handler) handlePreload(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > 10 {
		count = 10
	}
	staged := h.orchestrator.Preload(r.Context(), req.params(), count)
	writeJSON(w, http.StatusOK, map[string]int{"staged": staged})
}

func (h *Handler) handlePreloaded(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	result, ok := h.orchestrator.Preloaded(req.params())
	if !ok {
		writeError(w, entity.ErrNoPreloadedEntry)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(result))
}

type exerciseRecordDTO struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	Language    string   `json:"language"`
	Difficulty  string   `json:"difficulty"`
	TargetWords []string `json:"target_words"`
	Sentence    string   `json:"sentence"`
	Fingerprint string   `json:"fingerprint"`
	CreatedAt   string   `json:"created_at"`
}

func (h *Handler) handleListExercises(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, entity.ErrInvalidUserID)
		return
	}
	pageNo, _ := strconv.Atoi(r.URL.Query().Get("page_no"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	query := &repository.ListExerciseQuery{
		UserID: userID,
		Pagination: repository.Pagination{
			PageNo:   int32(pageNo),
			PageSize: int32(pageSize),
		},
		FilterOrder: repository.FilterOrder{
			Filter:  r.URL.Query().Get("filter"),
			OrderBy: r.URL.Query().Get("order_by"),
		},
	}
	records, total, err := h.exercises.List(r.Context(), query)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	out := make([]exerciseRecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, exerciseRecordDTO{
			ID:          rec.ID,
			SessionID:   rec.SessionID,
			Language:    string(rec.Language),
			Difficulty:  string(rec.Difficulty),
			TargetWords: rec.TargetWords,
			Sentence:    rec.Sentence,
			Fingerprint: rec.Fingerprint,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercises": out, "total": total})
}
