package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
)

func newConfigRouter(t *testing.T) (http.Handler, interface {
	Active(ctx context.Context, capability ai.Capability) (ai.ProviderConfig, error)
}) {
	t.Helper()

	cfgStore := newTestSettings(t, newTestStore(t))
	r := chi.NewRouter()
	r.Get("/config", GetConfig(cfgStore))
	r.Post("/config", UpdateConfig(cfgStore))
	r.Get("/config/providers", ListProviders())
	r.Get("/config/{capability}", GetCapabilityConfig(cfgStore))
	r.Post("/config/{capability}", UpdateCapabilityConfig(cfgStore))
	return r, cfgStore
}

func TestGetCapabilityConfig_FreshDefault(t *testing.T) {
	h, _ := newConfigRouter(t)

	w := doJSON(t, h, http.MethodGet, "/config/ai", nil)
	got := requireSuccess(t, w, http.StatusOK, true)

	cfg, ok := got["config"].(map[string]any)
	if !ok {
		t.Fatalf("config missing from response: %v", got)
	}
	if cfg["provider"] != "openai" {
		t.Errorf("provider = %v, want openai", cfg["provider"])
	}
	if cfg["baseUrl"] != "https://api.openai.com/v1" {
		t.Errorf("baseUrl = %v, want preset endpoint", cfg["baseUrl"])
	}
	if cfg["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", cfg["model"])
	}
	if cfg["enabled"] != false {
		t.Errorf("enabled = %v, want false", cfg["enabled"])
	}
	if cfg["apiKey"] != "" || cfg["apiKeyConfigured"] != false {
		t.Errorf("apiKey = %v configured = %v, want empty and false", cfg["apiKey"], cfg["apiKeyConfigured"])
	}
}

func TestGetCapabilityConfig_UnknownCapability(t *testing.T) {
	h, _ := newConfigRouter(t)

	w := doJSON(t, h, http.MethodGet, "/config/video", nil)
	requireSuccess(t, w, http.StatusBadRequest, false)

	w = doJSON(t, h, http.MethodPost, "/config/video", map[string]any{"enabled": true})
	requireSuccess(t, w, http.StatusBadRequest, false)
}

func TestUpdateCapabilityConfig_MasksKey(t *testing.T) {
	h, active := newConfigRouter(t)

	w := doJSON(t, h, http.MethodPost, "/config/ai", map[string]any{
		"apiKey":  "sk-abcdefghijklmnop1234",
		"enabled": true,
	})
	got := requireSuccess(t, w, http.StatusOK, true)

	cfg := got["config"].(map[string]any)
	if cfg["apiKey"] != "sk-abcde...1234" {
		t.Errorf("apiKey = %v, want %q", cfg["apiKey"], "sk-abcde...1234")
	}
	if cfg["apiKeyConfigured"] != true {
		t.Errorf("apiKeyConfigured = %v, want true", cfg["apiKeyConfigured"])
	}
	if cfg["enabled"] != true {
		t.Errorf("enabled = %v, want true", cfg["enabled"])
	}

	full, err := active.Active(context.Background(), ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if full.APIKey != "sk-abcdefghijklmnop1234" {
		t.Errorf("stored key = %q, want the submitted key", full.APIKey)
	}
}

func TestUpdateCapabilityConfig_MaskedKeyKeepsStoredKey(t *testing.T) {
	h, active := newConfigRouter(t)

	w := doJSON(t, h, http.MethodPost, "/config/ai", map[string]any{"apiKey": "sk-REALREALKEY1234"})
	requireSuccess(t, w, http.StatusOK, true)

	w = doJSON(t, h, http.MethodPost, "/config/ai", map[string]any{
		"apiKey":  "sk-12345678...abcd",
		"enabled": true,
	})
	requireSuccess(t, w, http.StatusOK, true)

	full, err := active.Active(context.Background(), ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if full.APIKey != "sk-REALREALKEY1234" {
		t.Errorf("stored key = %q, want %q", full.APIKey, "sk-REALREALKEY1234")
	}
	if !full.Enabled {
		t.Error("enabled should have been updated to true")
	}
}

func TestUpdateCapabilityConfig_AbsentEnabledKeepsValue(t *testing.T) {
	h, active := newConfigRouter(t)

	requireSuccess(t, doJSON(t, h, http.MethodPost, "/config/image", map[string]any{"enabled": true}), http.StatusOK, true)
	requireSuccess(t, doJSON(t, h, http.MethodPost, "/config/image", map[string]any{"model": "dall-e-2"}), http.StatusOK, true)

	full, err := active.Active(context.Background(), ai.CapabilityImage)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if !full.Enabled {
		t.Error("enabled flipped back to false by a patch without it")
	}
	if full.Model != "dall-e-2" {
		t.Errorf("model = %q, want dall-e-2", full.Model)
	}
}

func TestGetConfig_BothCapabilities(t *testing.T) {
	h, _ := newConfigRouter(t)

	w := doJSON(t, h, http.MethodPost, "/config", map[string]any{
		"image": map[string]any{"apiKey": "img-key-0123456789"},
	})
	requireSuccess(t, w, http.StatusOK, true)

	w = doJSON(t, h, http.MethodGet, "/config", nil)
	got := requireSuccess(t, w, http.StatusOK, true)

	cfg := got["config"].(map[string]any)
	text := cfg["ai"].(map[string]any)
	image := cfg["image"].(map[string]any)
	if text["apiKeyConfigured"] != false {
		t.Errorf("ai apiKeyConfigured = %v, want false", text["apiKeyConfigured"])
	}
	if image["apiKey"] != "img-key-...6789" {
		t.Errorf("image apiKey = %v, want %q", image["apiKey"], "img-key-...6789")
	}
}

func TestListProviders(t *testing.T) {
	h, _ := newConfigRouter(t)

	w := doJSON(t, h, http.MethodGet, "/config/providers", nil)
	got := requireSuccess(t, w, http.StatusOK, true)

	providers := got["providers"].(map[string]any)
	text := providers["text"].([]any)
	image := providers["image"].([]any)
	if len(text) != len(ai.Presets(ai.CapabilityText)) {
		t.Errorf("got %d text presets, want %d", len(text), len(ai.Presets(ai.CapabilityText)))
	}
	if len(image) != len(ai.Presets(ai.CapabilityImage)) {
		t.Errorf("got %d image presets, want %d", len(image), len(ai.Presets(ai.CapabilityImage)))
	}
}
