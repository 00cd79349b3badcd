package translator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/config"
)

// Client talks to the Gemini generateContent REST API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Wire structures for the Gemini API, internal to this file.
type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// NewClient initializes the client. The API key is required; the endpoint is
// derived from the model name unless overridden.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
			cfg.Model)
	}
	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("translator.gemini"),
	}, nil
}

// GenerateContent sends a prompt, optionally with an inline PNG image, and
// returns the model's text reply. Transient failures are retried with
// exponential backoff; client errors other than rate limiting are permanent.
func (c *Client) GenerateContent(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	parts := []geminiPart{{Text: prompt}}
	if imagePNG != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(imagePNG),
		}})
	}
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal request payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var text string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("network error during model request, retrying", zap.Error(err))
			return fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			apiErr := fmt.Errorf("gemini API status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				c.logger.Warn("retryable API error", zap.Int("status", resp.StatusCode))
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		var payload geminiResponse
		if err := json.Unmarshal(respBody, &payload); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response payload: %w", err))
		}
		if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
			reason := ""
			if len(payload.Candidates) > 0 {
				reason = payload.Candidates[0].FinishReason
			}
			return backoff.Permanent(fmt.Errorf("gemini API returned no content (reason: %s)", reason))
		}

		text = payload.Candidates[0].Content.Parts[0].Text
		c.logger.Debug("model generation complete",
			zap.Duration("duration", time.Since(start)),
			zap.Int("response_chars", len(text)))
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
