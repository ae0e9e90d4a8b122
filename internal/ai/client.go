package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hoanghai1803/creatorpilot/internal/metrics"
)

// DefaultTimeout bounds a single upstream call when no client is supplied.
const DefaultTimeout = 60 * time.Second

// maxResponseBody caps how much of an upstream response is read.
const maxResponseBody = 4 << 20

// chatAdapter builds the provider-specific request and extracts the assistant
// text from the provider-specific response. There is one adapter per Family.
type chatAdapter interface {
	newRequest(ctx context.Context, cfg ProviderConfig, messages []ChatMessage, opts ChatOptions) (*http.Request, error)
	parseResponse(body []byte) (string, error)
}

func adapterFor(f Family) chatAdapter {
	if f == FamilyAnthropic {
		return anthropicAdapter{}
	}
	return openaiAdapter{}
}

// Client turns normalized chat messages and image prompts into exactly one
// upstream HTTP call. It holds no per-call state and never retries.
type Client struct {
	http *http.Client
}

// NewClient creates a Client. A nil httpClient gets a client with
// DefaultTimeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: httpClient}
}

// ChatCompletion sends messages to the provider described by cfg and returns
// the assistant text. A missing text field in a successful response yields
// an empty string rather than an error.
func (c *Client) ChatCompletion(ctx context.Context, cfg ProviderConfig, messages []ChatMessage, opts ChatOptions) (string, error) {
	if !cfg.Ready() {
		return "", ErrNotConfigured
	}

	family := FamilyOf(cfg.Provider)
	adapter := adapterFor(family)

	req, err := adapter.newRequest(ctx, cfg, messages, opts)
	if err != nil {
		return "", err
	}

	slog.Debug("calling chat provider", "provider", cfg.Provider, "family", family.String(), "model", cfg.Model)

	body, err := c.send(req, family, "chat")
	if err != nil {
		return "", err
	}
	return adapter.parseResponse(body)
}

// send executes req and returns the response body of a 2xx response. Any
// other outcome is reported as *UpstreamError.
func (c *Client) send(req *http.Request, family Family, operation string) ([]byte, error) {
	counter := metrics.Global().UpstreamRequests

	resp, err := c.http.Do(req)
	if err != nil {
		counter.WithLabelValues(family.String(), operation, "error").Inc()
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		counter.WithLabelValues(family.String(), operation, "error").Inc()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		counter.WithLabelValues(family.String(), operation, "error").Inc()
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	counter.WithLabelValues(family.String(), operation, "ok").Inc()
	return body, nil
}

// endpointURL joins the configured endpoint with an API path.
func endpointURL(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}
