package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"notify-dispatch/internal/intent"
)

// Interpret asks the AI service to derive a structured intent from text
// that none of the pattern extractors matched. Unlike Enhance, this call
// can fail; the router surfaces the miss to the caller.
func (c *Client) Interpret(ctx context.Context, text string) (*intent.Intent, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("enhancer not configured")
	}

	body, _ := json.Marshal(map[string]interface{}{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/interpret", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Action     string   `json:"action"`
		Recipient  string   `json:"recipient"`
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Message    string   `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}

	in := &intent.Intent{
		Action:          intent.Action(apiResponse.Action),
		Recipient:       apiResponse.Recipient,
		Recipients:      apiResponse.Recipients,
		Subject:         apiResponse.Subject,
		Message:         apiResponse.Message,
		OriginalMessage: apiResponse.Message,
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("interpreted intent invalid: %w", err)
	}

	c.logger.Info("intent interpreted by AI fallback", map[string]interface{}{
		"action":     in.Action,
		"recipients": len(in.AllRecipients()),
	})

	return in, nil
}
