// Package backend provides the built-in completion and image service used
// when the user has not configured a provider of their own.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
)

// Config selects the account and models of the built-in service.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Backend is an OpenAI SDK client bound to fixed models.
type Backend struct {
	client     openai.Client
	model      string
	imageModel string
}

// New creates a Backend. It returns nil when cfg carries no API key, in
// which case callers have no fallback available.
func New(cfg Config) *Backend {
	if cfg.APIKey == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Backend{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
}

// Complete runs a chat completion and returns the first choice's text, or
// the empty string when the service returns no choices.
func (b *Backend) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	slog.Debug("calling default backend", "model", b.model, "messages", len(messages))

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    b.model,
		Messages: toSDKMessages(messages),
	})
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage creates one 1024x1024 image and returns its base64 payload,
// or its URL when the service answers with one.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (string, error) {
	slog.Debug("calling default image backend", "model", b.imageModel)

	resp, err := b.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(b.imageModel),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	if resp.Data[0].B64JSON != "" {
		return resp.Data[0].B64JSON, nil
	}
	return resp.Data[0].URL, nil
}

func toSDKMessages(messages []ai.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case ai.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case ai.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// wrapError reports SDK failures as *ai.UpstreamError so that callers
// handle both paths alike.
func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ai.UpstreamError{StatusCode: apiErr.StatusCode, Err: fmt.Errorf("default backend: %s", http.StatusText(apiErr.StatusCode))}
	}
	return &ai.UpstreamError{Err: err}
}
