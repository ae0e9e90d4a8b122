package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// openaiAdapter speaks the OpenAI Chat Completions protocol, which most
// providers in the registry accept.
type openaiAdapter struct{}

// openaiRequest is the request body for the Chat Completions API.
type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// openaiResponse is the subset of the Chat Completions response we read.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (openaiAdapter) newRequest(ctx context.Context, cfg ProviderConfig, messages []ChatMessage, opts ChatOptions) (*http.Request, error) {
	if messages == nil {
		messages = []ChatMessage{}
	}
	body, err := json.Marshal(openaiRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: opts.temperature(),
		MaxTokens:   opts.maxTokens(),
		TopP:        opts.topP(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(cfg.Endpoint, "/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (openaiAdapter) parseResponse(body []byte) (string, error) {
	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing chat completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
