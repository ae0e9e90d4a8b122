// Package settings keeps the user's provider configuration, one record per
// capability. Reads are masked, updates merge by field presence, and API
// keys are sealed at rest.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/models"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

var (
	// ErrInvalidCapability is returned for a capability other than text or image.
	ErrInvalidCapability = errors.New("invalid capability")

	// ErrInvalidPatch is returned when an update carries an unusable value.
	ErrInvalidPatch = errors.New("invalid provider configuration")
)

// maskMarker separates the visible head and tail of a masked key. A submitted
// key containing it is treated as a masked echo.
const maskMarker = "..."

// Repository persists provider settings. GetProviderSetting returns
// storage.ErrNotFound when nothing is stored for the capability.
type Repository interface {
	GetProviderSetting(ctx context.Context, capability string) (*models.ProviderSetting, error)
	SaveProviderSetting(ctx context.Context, p models.ProviderSetting) error
}

// MaskedConfig is the view of a provider configuration that leaves the
// process. It never carries a usable key.
type MaskedConfig struct {
	Capability       ai.Capability `json:"capability"`
	Provider         string        `json:"provider"`
	APIKey           string        `json:"apiKey"`
	Endpoint         string        `json:"baseUrl"`
	Model            string        `json:"model"`
	Enabled          bool          `json:"enabled"`
	APIKeyConfigured bool          `json:"apiKeyConfigured"`
}

// Patch is a partial update. Nil fields are left unchanged; an APIKey of ""
// clears the stored key.
type Patch struct {
	Provider *string `json:"provider"`
	APIKey   *string `json:"apiKey"`
	Endpoint *string `json:"baseUrl"`
	Model    *string `json:"model"`
	Enabled  *bool   `json:"enabled"`
}

// Store guards the configuration of each capability with its own mutex so
// that concurrent updates of one capability serialize while the other stays
// available.
type Store struct {
	repo  Repository
	box   *SecretBox
	locks map[ai.Capability]*sync.Mutex
}

// NewStore creates a Store over repo, sealing keys with box.
func NewStore(repo Repository, box *SecretBox) *Store {
	return &Store{
		repo: repo,
		box:  box,
		locks: map[ai.Capability]*sync.Mutex{
			ai.CapabilityText:  {},
			ai.CapabilityImage: {},
		},
	}
}

// MaskKey renders key for display: the first 8 and last 4 characters around
// "..." for keys of 12 or more characters, "..." for shorter keys, and the
// empty string for no key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) < 12 {
		return maskMarker
	}
	return string(runes[:8]) + maskMarker + string(runes[len(runes)-4:])
}

func isMasked(key string) bool {
	return strings.Contains(key, maskMarker)
}

// defaultConfig is the configuration a capability starts with.
func defaultConfig(capability ai.Capability) ai.ProviderConfig {
	preset, _ := ai.Lookup(capability, ai.DefaultProviderID)
	return ai.ProviderConfig{
		Provider: ai.DefaultProviderID,
		Endpoint: preset.BaseEndpoint,
		Model:    preset.DefaultModel,
	}
}

func mask(capability ai.Capability, cfg ai.ProviderConfig) MaskedConfig {
	return MaskedConfig{
		Capability:       capability,
		Provider:         cfg.Provider,
		APIKey:           MaskKey(cfg.APIKey),
		Endpoint:         cfg.Endpoint,
		Model:            cfg.Model,
		Enabled:          cfg.Enabled,
		APIKeyConfigured: cfg.APIKey != "",
	}
}

func (s *Store) lockFor(capability ai.Capability) (*sync.Mutex, error) {
	mu, ok := s.locks[capability]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCapability, capability)
	}
	return mu, nil
}

// Get returns the masked configuration for capability, creating and
// persisting the default on first access.
func (s *Store) Get(ctx context.Context, capability ai.Capability) (MaskedConfig, error) {
	cfg, err := s.Active(ctx, capability)
	if err != nil {
		return MaskedConfig{}, err
	}
	return mask(capability, cfg), nil
}

// Active returns the unmasked configuration for capability. It is meant for
// callers inside the process that need the real key.
func (s *Store) Active(ctx context.Context, capability ai.Capability) (ai.ProviderConfig, error) {
	mu, err := s.lockFor(capability)
	if err != nil {
		return ai.ProviderConfig{}, err
	}
	mu.Lock()
	defer mu.Unlock()

	return s.loadOrInit(ctx, capability)
}

// Update merges p into the stored configuration for capability and returns
// the masked result. A submitted key that contains the mask marker keeps the
// stored key when one exists.
func (s *Store) Update(ctx context.Context, capability ai.Capability, p Patch) (MaskedConfig, error) {
	mu, err := s.lockFor(capability)
	if err != nil {
		return MaskedConfig{}, err
	}
	if p.Provider != nil && strings.TrimSpace(*p.Provider) == "" {
		return MaskedConfig{}, fmt.Errorf("%w: provider must not be empty", ErrInvalidPatch)
	}

	mu.Lock()
	defer mu.Unlock()

	cfg, err := s.loadOrInit(ctx, capability)
	if err != nil {
		return MaskedConfig{}, err
	}

	if p.APIKey != nil {
		if !(isMasked(*p.APIKey) && cfg.APIKey != "") {
			cfg.APIKey = *p.APIKey
		}
	}
	if p.Provider != nil {
		cfg.Provider = *p.Provider
	}
	if p.Endpoint != nil {
		cfg.Endpoint = *p.Endpoint
	}
	if p.Model != nil {
		cfg.Model = *p.Model
	}
	if p.Enabled != nil {
		cfg.Enabled = *p.Enabled
	}

	if err := s.save(ctx, capability, cfg); err != nil {
		return MaskedConfig{}, err
	}

	slog.Info("provider configuration updated",
		"capability", capability,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"enabled", cfg.Enabled,
		"api_key_configured", cfg.APIKey != "",
	)
	return mask(capability, cfg), nil
}

// loadOrInit must be called with the capability lock held.
func (s *Store) loadOrInit(ctx context.Context, capability ai.Capability) (ai.ProviderConfig, error) {
	row, err := s.repo.GetProviderSetting(ctx, string(capability))
	if errors.Is(err, storage.ErrNotFound) {
		cfg := defaultConfig(capability)
		if err := s.save(ctx, capability, cfg); err != nil {
			return ai.ProviderConfig{}, err
		}
		slog.Info("initialized default provider configuration", "capability", capability, "provider", cfg.Provider)
		return cfg, nil
	}
	if err != nil {
		return ai.ProviderConfig{}, fmt.Errorf("loading %s configuration: %w", capability, err)
	}

	// A key sealed under another secret cannot be recovered; it reads as unset.
	key, err := s.box.Open(row.APIKey)
	if err != nil {
		slog.Error("stored api key could not be decrypted, ignoring it",
			"capability", capability, "error", err)
		key = ""
	}
	return ai.ProviderConfig{
		Provider: row.Provider,
		APIKey:   key,
		Endpoint: row.Endpoint,
		Model:    row.Model,
		Enabled:  row.Enabled,
	}, nil
}

func (s *Store) save(ctx context.Context, capability ai.Capability, cfg ai.ProviderConfig) error {
	sealed, err := s.box.Seal(cfg.APIKey)
	if err != nil {
		return fmt.Errorf("encrypting %s api key: %w", capability, err)
	}
	err = s.repo.SaveProviderSetting(ctx, models.ProviderSetting{
		Capability: string(capability),
		Provider:   cfg.Provider,
		APIKey:     sealed,
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		Enabled:    cfg.Enabled,
	})
	if err != nil {
		return fmt.Errorf("saving %s configuration: %w", capability, err)
	}
	return nil
}

// ParseCapability maps a route segment to a capability. "ai" is accepted as
// an alias of text.
func ParseCapability(s string) (ai.Capability, error) {
	switch s {
	case "ai", string(ai.CapabilityText):
		return ai.CapabilityText, nil
	case string(ai.CapabilityImage):
		return ai.CapabilityImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCapability, s)
	}
}
