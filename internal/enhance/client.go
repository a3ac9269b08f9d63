// Package enhance is the boundary to the text-enhancement AI service.
// The service is consumed as a black-box text-in/text-out call.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/common/metrics"
)

// Client talks to the enhancement gateway over HTTP.
type Client struct {
	baseURL         string
	apiKey          string
	fallbackSubject string
	client          *http.Client
	logger          logger.Logger
}

func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.Enhancer.BaseURL, "/"),
		apiKey:          cfg.Enhancer.APIKey,
		fallbackSubject: cfg.Enhancer.FallbackSubject,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.Enhancer.Timeout),
		},
		logger: log.With(map[string]interface{}{"component": "enhancer"}),
	}
}

// Enhance polishes a message body. It never fails the caller: on any
// transport or decode error the original text is returned unchanged.
func (c *Client) Enhance(ctx context.Context, text string) string {
	polished, err := c.post(ctx, "/api/ai/enhance", text)
	if err != nil || polished == "" {
		c.logger.Warn("enhancement failed, using original text", map[string]interface{}{
			"error": err,
		})
		metrics.EnhancementCalls.WithLabelValues("enhance", "fallback").Inc()
		return text
	}
	metrics.EnhancementCalls.WithLabelValues("enhance", "ok").Inc()
	return polished
}

// GenerateSubject derives an email subject from body text. On any error
// it returns the configured fixed fallback subject.
func (c *Client) GenerateSubject(ctx context.Context, text string) string {
	subject, err := c.post(ctx, "/api/ai/subject", text)
	if err != nil || subject == "" {
		c.logger.Warn("subject generation failed, using fallback", map[string]interface{}{
			"error": err,
		})
		metrics.EnhancementCalls.WithLabelValues("subject", "fallback").Inc()
		return c.fallbackSubject
	}
	metrics.EnhancementCalls.WithLabelValues("subject", "ok").Inc()
	return subject
}

func (c *Client) post(ctx context.Context, path, text string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("enhancer not configured")
	}

	body, _ := json.Marshal(map[string]interface{}{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}

	return strings.TrimSpace(apiResponse.Text), nil
}
