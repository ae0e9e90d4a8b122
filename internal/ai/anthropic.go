package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const anthropicVersion = "2023-06-01"

// anthropicAdapter speaks the Anthropic Messages protocol. The system prompt
// travels in its own field and sampling options are not sent.
type anthropicAdapter struct{}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []ChatMessage `json:"messages"`
}

// anthropicResponse is the subset of the Messages response we read.
type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// splitSystem returns the content of the first system message and the
// remaining messages in their original order.
func splitSystem(messages []ChatMessage) (string, []ChatMessage) {
	var (
		system    string
		found     bool
		remaining = make([]ChatMessage, 0, len(messages))
	)
	for _, m := range messages {
		if m.Role == RoleSystem {
			if !found {
				system = m.Content
				found = true
			}
			continue
		}
		remaining = append(remaining, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return system, remaining
}

func (anthropicAdapter) newRequest(ctx context.Context, cfg ProviderConfig, messages []ChatMessage, opts ChatOptions) (*http.Request, error) {
	system, rest := splitSystem(messages)

	body, err := json.Marshal(anthropicRequest{
		Model:     cfg.Model,
		MaxTokens: opts.maxTokens(),
		System:    system,
		Messages:  rest,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(cfg.Endpoint, "/messages"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")
	return req, nil
}

func (anthropicAdapter) parseResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing messages response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", nil
	}
	return resp.Content[0].Text, nil
}
