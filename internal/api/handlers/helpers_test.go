package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/generate"
	"github.com/hoanghai1803/creatorpilot/internal/settings"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

func TestWriteJSON(t *testing.T) {
	t.Run("encodes and sets content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"hello": "world"}

		writeJSON(w, http.StatusOK, data)

		if w.Code != http.StatusOK {
			t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
		}

		ct := w.Header().Get("Content-Type")
		if ct != "application/json" {
			t.Errorf("got Content-Type %q, want %q", ct, "application/json")
		}

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response body: %v", err)
		}
		if got["hello"] != "world" {
			t.Errorf("got %q, want %q", got["hello"], "world")
		}
	})

	t.Run("sets custom status code", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]string{"ok": "true"})

		if w.Code != http.StatusCreated {
			t.Errorf("got status %d, want %d", w.Code, http.StatusCreated)
		}
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	writeOK(w, map[string]any{"message": "done"})

	got := requireSuccess(t, w, http.StatusOK, true)
	if got["message"] != "done" {
		t.Errorf("message = %v, want %q", got["message"], "done")
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusBadRequest, "something went wrong")

	got := requireSuccess(t, w, http.StatusBadRequest, false)
	if got["error"] != "something went wrong" {
		t.Errorf("got error %q, want %q", got["error"], "something went wrong")
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid argument",
			err:        &generate.InvalidArgumentError{Message: "请输入话题"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "请输入话题",
		},
		{
			name:       "invalid capability",
			err:        fmt.Errorf("%w: %q", settings.ErrInvalidCapability, "video"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid body",
			err:        fmt.Errorf("%w: unexpected EOF", errInvalidBody),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid JSON body",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("update: %w", storage.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no backend",
			err:        fmt.Errorf("trend search: %w", generate.ErrNoBackend),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "upstream status only",
			err:        &ai.UpstreamError{StatusCode: 401, Body: `{"error":"bad key sk-secret"}`},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "AI请求失败: 401",
		},
		{
			name:       "transport failure",
			err:        &ai.UpstreamError{Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "AI请求失败",
		},
		{
			name:       "unclassified",
			err:        errors.New("disk I/O error"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "操作失败",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tt.err, "操作失败")

			got := requireSuccess(t, w, tt.wantStatus, false)
			msg, _ := got["error"].(string)
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
			if strings.Contains(msg, "sk-secret") {
				t.Errorf("error %q leaks the upstream body", msg)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("empty body leaves value untouched", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		v := struct{ Name string }{Name: "keep"}
		if err := decodeJSON(r, &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Name != "keep" {
			t.Errorf("Name = %q, want %q", v.Name, "keep")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
		var v struct{ Name string }
		if err := decodeJSON(r, &v); !errors.Is(err, errInvalidBody) {
			t.Errorf("err = %v, want errInvalidBody", err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":"five"}`))
		var v struct {
			Count int `json:"count"`
		}
		if err := decodeJSON(r, &v); !errors.Is(err, errInvalidBody) {
			t.Errorf("err = %v, want errInvalidBody", err)
		}
	})
}

func TestQueryID(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantID  string
		wantErr bool
	}{
		{name: "present", target: "/?id=abc-123", wantID: "abc-123"},
		{name: "trimmed", target: "/?id=%20abc%20", wantID: "abc"},
		{name: "missing", target: "/", wantErr: true},
		{name: "blank", target: "/?id=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodDelete, tt.target, nil)

			got, err := queryID(r)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestFilterValue(t *testing.T) {
	tests := []struct {
		value, def, want string
	}{
		{"", "food", "food"},
		{"pet", "food", "pet"},
		{"all", "food", ""},
		{"", "all", ""},
	}
	for _, tt := range tests {
		if got := filterValue(tt.value, tt.def); got != tt.want {
			t.Errorf("filterValue(%q, %q) = %q, want %q", tt.value, tt.def, got, tt.want)
		}
	}
}
