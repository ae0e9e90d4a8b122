package handlers

import (
	"net/http"
	"testing"
)

func TestContentsCRUD(t *testing.T) {
	h := newCRUDRouter(newTestStore(t))

	t.Run("create requires title and content", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/contents", map[string]any{"title": "只有标题"})
		requireSuccess(t, w, http.StatusBadRequest, false)
	})

	var id string
	t.Run("create applies defaults", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/contents", map[string]any{"title": "周末早午餐", "content": "三明治和咖啡"})
		got := requireSuccess(t, w, http.StatusOK, true)

		c := got["content"].(map[string]any)
		want := map[string]string{
			"status":   "draft",
			"category": "food",
			"platform": "xiaohongshu",
			"type":     "copywriting",
		}
		for k, v := range want {
			if c[k] != v {
				t.Errorf("%s = %v, want %q", k, c[k], v)
			}
		}
		id = c["id"].(string)
	})

	w := doJSON(t, h, http.MethodPost, "/contents", map[string]any{"title": "猫咪洗澡", "content": "步骤", "category": "pet"})
	requireSuccess(t, w, http.StatusOK, true)

	t.Run("list filters", func(t *testing.T) {
		tests := []struct {
			target string
			want   int
		}{
			{"/contents", 1},
			{"/contents?category=pet", 1},
			{"/contents?category=all", 2},
			{"/contents?category=all&status=published", 0},
		}
		for _, tt := range tests {
			w := doJSON(t, h, http.MethodGet, tt.target, nil)
			got := requireSuccess(t, w, http.StatusOK, true)
			if n := len(got["contents"].([]any)); n != tt.want {
				t.Errorf("%s: got %d contents, want %d", tt.target, n, tt.want)
			}
		}
	})

	t.Run("update status and stats", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/contents", map[string]any{
			"id":          id,
			"status":      "published",
			"likes":       42,
			"publishedAt": "2026-03-01T10:00:00Z",
		})
		got := requireSuccess(t, w, http.StatusOK, true)

		c := got["content"].(map[string]any)
		if c["status"] != "published" || c["likes"] != float64(42) {
			t.Errorf("content not updated: %v", c)
		}
		if c["publishedAt"] == nil {
			t.Error("publishedAt not set")
		}
		if c["title"] != "周末早午餐" {
			t.Errorf("title = %v, want it unchanged", c["title"])
		}

		w = doJSON(t, h, http.MethodGet, "/contents?status=published", nil)
		got = requireSuccess(t, w, http.StatusOK, true)
		if n := len(got["contents"].([]any)); n != 1 {
			t.Errorf("got %d published, want 1", n)
		}
	})

	t.Run("update rejects empty title", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/contents", map[string]any{"id": id, "title": ""})
		requireSuccess(t, w, http.StatusBadRequest, false)
	})

	t.Run("delete", func(t *testing.T) {
		requireSuccess(t, doJSON(t, h, http.MethodDelete, "/contents?id="+id, nil), http.StatusOK, true)
		requireSuccess(t, doJSON(t, h, http.MethodDelete, "/contents?id="+id, nil), http.StatusNotFound, false)
	})
}
