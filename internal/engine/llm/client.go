// internal/engine/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/metrics"
)

// Generator produces free-form text for a prompt. Implementations must
// honor context cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPGenerator calls a text-generation HTTP service.
type HTTPGenerator struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHTTPGenerator(config *Config, log logger.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		config: config,
		// No client timeout, the per-call context owns the deadline.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{
			"component": "llm",
		}),
	}
}

// Generate posts the prompt to the backend and returns the cleaned
// response text. Transient failures are retried with exponential
// backoff until the context deadline cuts them off.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	requestBody, _ := json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  g.config.MaxTokens,
		"temperature": g.config.Temperature,
	})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewGenerationTimeoutError()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			g.config.BaseURL+"/api/ai/generate", bytes.NewReader(requestBody))
		if err != nil {
			return "", errors.NewGenerationFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if g.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
		}

		resp, lastErr = g.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", errors.NewGenerationTimeoutError()
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewGenerationTimeoutError()
		}
		return "", errors.NewGenerationFailedError(lastErr)
	}
	if resp == nil {
		return "", errors.NewGenerationFailedError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", errors.NewGenerationFailedError(fmt.Errorf("decode error: %v", err))
	}

	text := CleanResponse(apiResponse.Text)
	if text == "" {
		return "", errors.NewGenerationFailedError(fmt.Errorf("empty generation"))
	}

	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	g.logger.Info("generation completed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"chars":      len(text),
	})
	return text, nil
}

// CleanResponse strips instruction-format artifacts left by the model
// and collapses runs of blank lines.
func CleanResponse(text string) string {
	for _, marker := range []string{"<|im_start|>", "<|im_end|>", "[INST]", "[/INST]", "</s>"} {
		text = strings.ReplaceAll(text, marker, "")
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n\n")
}
