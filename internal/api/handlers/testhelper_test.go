package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/generate"
	"github.com/hoanghai1803/creatorpilot/internal/settings"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// newTestSettings creates a settings store over store with a throwaway
// sealing key.
func newTestSettings(t *testing.T, store *storage.Store) *settings.Store {
	t.Helper()

	box, err := settings.NewSecretBox("test-secret", t.TempDir())
	if err != nil {
		t.Fatalf("creating secret box: %v", err)
	}
	return settings.NewStore(store, box)
}

// fakeBackend answers every completion with reply and every image with
// image, recording the prompts it saw.
type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	image   string
	err     error
	prompts []string
}

func (f *fakeBackend) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	return f.reply, f.err
}

func (f *fakeBackend) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// newTestService wires a generation service over store whose default
// backend is backend. A nil backend leaves the service without one.
func newTestService(t *testing.T, store *storage.Store, backend *fakeBackend) *generate.Service {
	t.Helper()

	d := generate.Deps{
		Config: newTestSettings(t, store),
		Client: ai.NewClient(nil),
		Hot:    store,
	}
	if backend != nil {
		d.DefaultText = backend
		d.DefaultImage = backend
	}
	return generate.NewService(d)
}

// doJSON serves a request with a JSON body through h and returns the
// recorder.
func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// decodeBody decodes the recorder body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return got
}

// requireSuccess fails the test unless the response has the given status and
// a matching success flag.
func requireSuccess(t *testing.T, w *httptest.ResponseRecorder, status int, success bool) map[string]any {
	t.Helper()

	if w.Code != status {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, status, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["success"] != success {
		t.Fatalf("success = %v, want %v; body: %v", got["success"], success, got)
	}
	return got
}
