package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// imageRequest is the request body for the Images Generations API.
type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

// imageResponse is the subset of the Images Generations response we read.
type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// GenerateImage asks the provider described by cfg for one image and returns
// its base64 payload, or its URL when the provider ignores the requested
// response format. Image generation always uses the OpenAI wire format.
func (c *Client) GenerateImage(ctx context.Context, cfg ProviderConfig, prompt string, opts ImageOptions) (string, error) {
	if !cfg.Ready() {
		return "", ErrNotConfigured
	}
	opts = opts.withDefaults()

	body, err := json.Marshal(imageRequest{
		Model:          cfg.Model,
		Prompt:         prompt,
		Size:           opts.Size,
		Quality:        opts.Quality,
		N:              opts.N,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(cfg.Endpoint, "/images/generations"), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("calling image provider", "provider", cfg.Provider, "model", cfg.Model, "size", opts.Size)

	respBody, err := c.send(req, FamilyOpenAICompatible, "image")
	if err != nil {
		return "", err
	}

	var resp imageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parsing image response: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	if resp.Data[0].B64JSON != "" {
		return resp.Data[0].B64JSON, nil
	}
	return resp.Data[0].URL, nil
}
