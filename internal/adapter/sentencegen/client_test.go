package sentencegen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/drillnet/internal/usecase"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestGenerateRoundTrip(t *testing.T) {
	var got usecase.GenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/sentences:generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(usecase.GeneratedSentence{
			Sentence:   "Das Haus ist hier.",
			TargetWord: "haus",
		})
	}))
	defer server.Close()

	client := New(server.URL, 0, quietLogger())
	out, err := client.Generate(context.Background(), &usecase.GenerationRequest{
		Language:        "de",
		DifficultyLevel: "beginner",
		SessionID:       "sess-1",
		UserID:          1,
		PreferredWords:  []string{"haus"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Das Haus ist hier.", out.Sentence)
	assert.Equal(t, "haus", out.TargetWord)
	assert.Equal(t, []string{"haus"}, got.PreferredWords)
	assert.Equal(t, "de", got.Language)
}

func TestGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, 0, quietLogger())
	_, err := client.Generate(context.Background(), &usecase.GenerationRequest{UserID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGenerateMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer server.Close()

	client := New(server.URL, 0, quietLogger())
	_, err := client.Generate(context.Background(), &usecase.GenerationRequest{UserID: 1})
	require.Error(t, err)
}
