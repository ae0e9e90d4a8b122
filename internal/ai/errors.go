package ai

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a call is attempted with a configuration
// that is disabled or lacks a key, endpoint or model.
var ErrNotConfigured = errors.New("ai provider not configured")

// maxErrorBody bounds how much of an upstream error body is kept.
const maxErrorBody = 512

// UpstreamError reports a non-2xx response or a transport failure from a
// provider. StatusCode is zero for transport failures.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
