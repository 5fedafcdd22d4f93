// Package sentencegen is the HTTP client for the external sentence
// generation service.
package sentencegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/usecase"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ usecase.SentenceGenerator = (*Client)(nil)

// New builds a client for the generation service at baseURL. A zero timeout
// gets the default.
func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Generate(ctx context.Context, req *usecase.GenerationRequest) (*usecase.GeneratedSentence, error) {
	log := c.logger.WithFields(logrus.Fields{
		"user":    req.UserID,
		"session": req.SessionID,
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sentences:generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.WithError(err).Warn("sentence generation request failed")
		return nil, err
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("sentence generation response received")

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("generation status %d: %s", resp.StatusCode, string(snippet))
	}

	var out usecase.GeneratedSentence
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
