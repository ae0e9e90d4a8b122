package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/settings"
)

// SettingsStore reads and updates provider configurations.
type SettingsStore interface {
	Get(ctx context.Context, capability ai.Capability) (settings.MaskedConfig, error)
	Update(ctx context.Context, capability ai.Capability, p settings.Patch) (settings.MaskedConfig, error)
}

// GetConfig handles GET /api/config. It returns the masked configuration of
// both capabilities.
func GetConfig(store SettingsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		text, err := store.Get(ctx, ai.CapabilityText)
		if err != nil {
			writeServiceError(w, err, "获取配置失败")
			return
		}
		image, err := store.Get(ctx, ai.CapabilityImage)
		if err != nil {
			writeServiceError(w, err, "获取配置失败")
			return
		}

		writeOK(w, map[string]any{
			"config": map[string]settings.MaskedConfig{"ai": text, "image": image},
		})
	}
}

// UpdateConfig handles POST /api/config. The body may carry an "ai" and an
// "image" patch; absent sections are left unchanged.
func UpdateConfig(store SettingsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			AI    *settings.Patch `json:"ai"`
			Image *settings.Patch `json:"image"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeServiceError(w, err, "配置保存失败")
			return
		}

		out := make(map[string]settings.MaskedConfig, 2)
		for _, section := range []struct {
			name       string
			capability ai.Capability
			patch      *settings.Patch
		}{
			{"ai", ai.CapabilityText, body.AI},
			{"image", ai.CapabilityImage, body.Image},
		} {
			var (
				cfg settings.MaskedConfig
				err error
			)
			if section.patch != nil {
				cfg, err = store.Update(ctx, section.capability, *section.patch)
			} else {
				cfg, err = store.Get(ctx, section.capability)
			}
			if err != nil {
				writeServiceError(w, err, "配置保存失败")
				return
			}
			out[section.name] = cfg
		}

		writeOK(w, map[string]any{"message": "配置已保存", "config": out})
	}
}

// ListProviders handles GET /api/config/providers. It returns the preset
// tables of both capabilities.
func ListProviders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]any{
			"providers": map[string][]ai.ProviderPreset{
				"text":  ai.Presets(ai.CapabilityText),
				"image": ai.Presets(ai.CapabilityImage),
			},
		})
	}
}

// GetCapabilityConfig handles GET /api/config/{capability}.
func GetCapabilityConfig(store SettingsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capability, err := settings.ParseCapability(chi.URLParam(r, "capability"))
		if err != nil {
			writeServiceError(w, err, "获取配置失败")
			return
		}

		cfg, err := store.Get(r.Context(), capability)
		if err != nil {
			writeServiceError(w, err, "获取配置失败")
			return
		}
		writeOK(w, map[string]any{"config": cfg})
	}
}

// UpdateCapabilityConfig handles POST /api/config/{capability}. Fields absent
// from the body are left unchanged, and a masked key echoed back by a client
// keeps the stored key.
func UpdateCapabilityConfig(store SettingsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capability, err := settings.ParseCapability(chi.URLParam(r, "capability"))
		if err != nil {
			writeServiceError(w, err, "保存配置失败")
			return
		}

		var patch settings.Patch
		if err := decodeJSON(r, &patch); err != nil {
			writeServiceError(w, err, "保存配置失败")
			return
		}

		cfg, err := store.Update(r.Context(), capability, patch)
		if err != nil {
			writeServiceError(w, err, "保存配置失败")
			return
		}
		writeOK(w, map[string]any{"message": "配置已保存", "config": cfg})
	}
}
