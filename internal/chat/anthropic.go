package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1/messages"
	anthropicModel      = "claude-sonnet-4-20250514"
	anthropicVersion    = "2023-06-01"
	anthropicMaxRetries = 3
	anthropicInitDelay  = 1 * time.Second

	systemPrompt = "You are a friendly productivity assistant. Answer questions about the " +
		"user's tasks and habits using the provided snapshot. Be concise and encouraging."
)

// AnthropicResponder calls the Anthropic Messages API with the tracker
// snapshot injected into the prompt. Model output is returned verbatim.
type AnthropicResponder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewAnthropicResponder creates a responder for the Anthropic Messages API.
func NewAnthropicResponder(apiKey string, timeout time.Duration) *AnthropicResponder {
	return &AnthropicResponder{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Reply sends the snapshot and user message to the API and returns the model
// text. Rate limits and server errors are retried with exponential backoff;
// any terminal error is reported to the caller, who degrades to the fallback.
func (r *AnthropicResponder) Reply(ctx context.Context, message string, snap Snapshot) (string, error) {
	if r.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	req := anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: 512,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(message, snap)},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < anthropicMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * anthropicInitDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("x-api-key", r.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("anthropic API error (%d): %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(apiResp.Content) == 0 {
			return "", fmt.Errorf("empty response content")
		}
		return apiResp.Content[0].Text, nil
	}

	return "", fmt.Errorf("max retries (%d) exceeded: %w", anthropicMaxRetries, lastErr)
}

// buildPrompt renders the snapshot and user message into one user turn.
func buildPrompt(message string, snap Snapshot) string {
	var b strings.Builder

	b.WriteString("Current tasks:\n")
	if len(snap.Todos) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range snap.Todos {
		status := "pending"
		if t.Completed {
			status = "done"
		}
		fmt.Fprintf(&b, "- %s [%s, %s priority]\n", t.Title, status, t.Priority)
	}

	b.WriteString("\nCurrent habits:\n")
	if len(snap.Habits) == 0 {
		b.WriteString("(none)\n")
	}
	for _, h := range snap.Habits {
		fmt.Fprintf(&b, "- %s: %d day streak (%s)\n", h.Name, h.Streak, h.Frequency)
	}

	fmt.Fprintf(&b, "\nUser message: %s\n", message)
	return b.String()
}
