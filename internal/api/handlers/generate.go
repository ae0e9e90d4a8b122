package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hoanghai1803/creatorpilot/internal/generate"
)

// Generator runs the AI generation operations.
type Generator interface {
	GenerateContent(ctx context.Context, r generate.ContentRequest) (*generate.ContentResult, error)
	GenerateTitles(ctx context.Context, r generate.TitleRequest) (*generate.TitleResult, error)
	GenerateImage(ctx context.Context, r generate.ImageRequest) (*generate.ImageResult, error)
	SearchTrends(ctx context.Context, r generate.TrendRequest) (*generate.TrendResult, error)
	AnalyzeHot(ctx context.Context, r generate.HotAnalysisRequest) (*generate.HotAnalysisResult, error)
	BatchAnalyze(ctx context.Context, ids []string) (*generate.BatchResult, error)
}

// GenerateContent handles POST /api/content/generate.
func GenerateContent(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generate.ContentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err, "内容生成失败，请重试")
			return
		}

		res, err := gen.GenerateContent(r.Context(), req)
		if err != nil {
			writeServiceError(w, err, "内容生成失败，请重试")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*generate.ContentResult
		}{true, res})
	}
}

// GenerateTitles handles POST /api/content/titles.
func GenerateTitles(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generate.TitleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err, "标题生成失败，请重试")
			return
		}

		res, err := gen.GenerateTitles(r.Context(), req)
		if err != nil {
			writeServiceError(w, err, "标题生成失败，请重试")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*generate.TitleResult
		}{true, res})
	}
}

// GenerateImage handles POST /api/images/generate.
func GenerateImage(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generate.ImageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err, "图片生成失败，请重试")
			return
		}

		res, err := gen.GenerateImage(r.Context(), req)
		if err != nil {
			writeServiceError(w, err, "图片生成失败，请重试")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*generate.ImageResult
		}{true, res})
	}
}

// SearchTrends handles GET /api/trends/search?topic=&num=&category=. A
// missing or malformed num selects the default.
func SearchTrends(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		num, _ := strconv.Atoi(q.Get("num"))

		res, err := gen.SearchTrends(r.Context(), generate.TrendRequest{
			Topic:    q.Get("topic"),
			Num:      num,
			Category: q.Get("category"),
		})
		if err != nil {
			writeServiceError(w, err, "热点搜索失败，请重试")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*generate.TrendResult
		}{true, res})
	}
}
