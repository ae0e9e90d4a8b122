package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return storage.NewStore(db)
}

func newTestStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()

	box, err := NewSecretBox("test-secret", "")
	if err != nil {
		t.Fatalf("NewSecretBox() error: %v", err)
	}
	repo := newTestRepo(t)
	return NewStore(repo, box), repo
}

func ptr[T any](v T) *T { return &v }

func TestGet_FreshDefault(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	for _, capability := range []ai.Capability{ai.CapabilityText, ai.CapabilityImage} {
		got, err := store.Get(ctx, capability)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", capability, err)
		}
		preset, _ := ai.Lookup(capability, "openai")
		if got.Provider != "openai" {
			t.Errorf("%s: Provider = %q, want openai", capability, got.Provider)
		}
		if got.Endpoint != preset.BaseEndpoint || got.Model != preset.DefaultModel {
			t.Errorf("%s: got %q/%q, want preset %q/%q", capability, got.Endpoint, got.Model, preset.BaseEndpoint, preset.DefaultModel)
		}
		if got.Enabled || got.APIKeyConfigured || got.APIKey != "" {
			t.Errorf("%s: fresh config should be disabled without a key: %+v", capability, got)
		}

		if _, err := repo.GetProviderSetting(ctx, string(capability)); err != nil {
			t.Errorf("%s: default was not persisted: %v", capability, err)
		}
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "..."},
		{"abcdefghijk", "..."},
		{"abcdefghijkl", "abcdefgh...ijkl"},
		{"sk-REALREALKEY1234", "sk-REALR...1234"},
		{"密钥密钥密钥密钥密钥密钥", "密钥密钥密钥密钥...密钥密钥"},
		{"密钥密钥密钥密钥", "..."},
	}
	for _, tt := range tests {
		got := MaskKey(tt.key)
		if got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("MaskKey(%q) is not valid UTF-8", tt.key)
		}
	}
}

func TestUpdate_MaskedRoundTripKeepsKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Update(ctx, ai.CapabilityText, Patch{
		Provider: ptr("deepseek"),
		APIKey:   ptr("sk-REALREALKEY1234"),
		Endpoint: ptr("https://api.deepseek.com/v1"),
		Model:    ptr("deepseek-chat"),
		Enabled:  ptr(true),
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if first.APIKey != "sk-REALR...1234" {
		t.Errorf("masked key = %q", first.APIKey)
	}

	// Echo back a masked value, as a settings form would.
	if _, err := store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("sk-12345678...abcd")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	active, err := store.Active(ctx, ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active.APIKey != "sk-REALREALKEY1234" {
		t.Errorf("APIKey = %q, want the original key", active.APIKey)
	}
	if active.Provider != "deepseek" || !active.Enabled {
		t.Errorf("unrelated fields changed: %+v", active)
	}
}

func TestUpdate_MaskRoundTripOfOwnView(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"abc", "sk-averyveryverylongkey"} {
		if _, err := store.Update(ctx, ai.CapabilityImage, Patch{APIKey: ptr(key)}); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		view, err := store.Get(ctx, ai.CapabilityImage)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if _, err := store.Update(ctx, ai.CapabilityImage, Patch{APIKey: ptr(view.APIKey)}); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		active, _ := store.Active(ctx, ai.CapabilityImage)
		if active.APIKey != key {
			t.Errorf("after echoing %q: APIKey = %q, want %q", view.APIKey, active.APIKey, key)
		}
	}
}

func TestUpdate_KeyPresence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("sk-first-key-000")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	// Absent key keeps the stored one.
	if _, err := store.Update(ctx, ai.CapabilityText, Patch{Model: ptr("gpt-4o")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	active, _ := store.Active(ctx, ai.CapabilityText)
	if active.APIKey != "sk-first-key-000" {
		t.Errorf("absent key: APIKey = %q", active.APIKey)
	}
	if active.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", active.Model)
	}

	// Explicit empty key clears it.
	got, err := store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("")})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.APIKeyConfigured {
		t.Error("APIKeyConfigured = true after clearing the key")
	}
}

func TestUpdate_EnabledPresence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Update(ctx, ai.CapabilityText, Patch{Enabled: ptr(true)}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, err := store.Update(ctx, ai.CapabilityText, Patch{Model: ptr("gpt-4")})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !got.Enabled {
		t.Error("Enabled flipped without being present in the patch")
	}

	got, err = store.Update(ctx, ai.CapabilityText, Patch{Enabled: ptr(false)})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Enabled {
		t.Error("explicit enabled=false was ignored")
	}
}

func TestUpdate_InvalidInput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Update(ctx, ai.Capability("video"), Patch{}); !errors.Is(err, ErrInvalidCapability) {
		t.Errorf("got %v, want ErrInvalidCapability", err)
	}
	if _, err := store.Get(ctx, ai.Capability("video")); !errors.Is(err, ErrInvalidCapability) {
		t.Errorf("got %v, want ErrInvalidCapability", err)
	}
	if _, err := store.Update(ctx, ai.CapabilityText, Patch{Provider: ptr("  ")}); !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("got %v, want ErrInvalidPatch", err)
	}
}

func TestUpdate_KeySealedAtRest(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("sk-plaintext-key")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	row, err := repo.GetProviderSetting(ctx, "text")
	if err != nil {
		t.Fatalf("GetProviderSetting() error: %v", err)
	}
	if !strings.HasPrefix(row.APIKey, "enc:") || strings.Contains(row.APIKey, "plaintext") {
		t.Errorf("stored key is not sealed: %q", row.APIKey)
	}
}

func TestUpdate_ConcurrentPatchesSerialize(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(ctx, ai.CapabilityText, Patch{Enabled: ptr(i%2 == 0)})
		}()
		go func() {
			defer wg.Done()
			store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("sk-concurrent-key-1")})
		}()
	}
	wg.Wait()

	active, err := store.Active(ctx, ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active.APIKey != "sk-concurrent-key-1" {
		t.Errorf("APIKey = %q, lost an update", active.APIKey)
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		in      string
		want    ai.Capability
		wantErr bool
	}{
		{"ai", ai.CapabilityText, false},
		{"text", ai.CapabilityText, false},
		{"image", ai.CapabilityImage, false},
		{"video", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCapability(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCapability(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCapability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_KeySealedUnderOtherSecret(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	oldBox, err := NewSecretBox("secret-A", "")
	if err != nil {
		t.Fatalf("NewSecretBox() error: %v", err)
	}
	if _, err := NewStore(repo, oldBox).Update(ctx, ai.CapabilityText, Patch{
		APIKey: ptr("sk-OLDOLDOLDKEY1234"),
	}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	newBox, err := NewSecretBox("secret-B", "")
	if err != nil {
		t.Fatalf("NewSecretBox() error: %v", err)
	}
	store := NewStore(repo, newBox)

	got, err := store.Get(ctx, ai.CapabilityText)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.APIKeyConfigured || got.APIKey != "" {
		t.Errorf("unreadable key reported as configured: %+v", got)
	}

	active, err := store.Active(ctx, ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active.Ready() {
		t.Error("Active() config is ready without a readable key")
	}

	updated, err := store.Update(ctx, ai.CapabilityText, Patch{APIKey: ptr("sk-NEWNEWNEWKEY5678")})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !updated.APIKeyConfigured || updated.APIKey != "sk-NEWNE...5678" {
		t.Errorf("Update() = %+v, want new key configured", updated)
	}

	active, err = store.Active(ctx, ai.CapabilityText)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active.APIKey != "sk-NEWNEWNEWKEY5678" {
		t.Errorf("Active().APIKey = %q, want the new key", active.APIKey)
	}
}
