package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hoanghai1803/creatorpilot/internal/feeds"
	"github.com/hoanghai1803/creatorpilot/internal/generate"
	"github.com/hoanghai1803/creatorpilot/internal/models"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

// HotStore persists hot content and hot ranks.
type HotStore interface {
	ListHotContents(ctx context.Context, f models.HotContentFilter) ([]models.HotContent, error)
	CreateHotContent(ctx context.Context, h models.HotContent) (*models.HotContent, error)
	UpdateHotContent(ctx context.Context, id string, u models.HotContentUpdate) (*models.HotContent, error)
	DeleteHotContent(ctx context.Context, id string) error
	ListHotRanks(ctx context.Context, platform string) ([]models.HotRank, error)
	RefreshHotRanks(ctx context.Context, platform, category string) ([]models.HotRank, error)
}

// ArticleExtractor pulls the readable content out of a web page.
type ArticleExtractor interface {
	ExtractArticleMetadata(url string) (*feeds.ArticleMetadata, error)
}

// Defaults of the hot content and rank listings.
const (
	defaultHotCategory  = "food"
	defaultRankCategory = "general"
)

// AnalyzeHot handles POST /api/hot/analyze. When the body carries an id the
// stored record is updated with the analysis.
func AnalyzeHot(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generate.HotAnalysisRequest
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err, "分析失败")
			return
		}

		res, err := gen.AnalyzeHot(r.Context(), req)
		if err != nil {
			writeServiceError(w, err, "分析失败")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			*generate.HotAnalysisResult
		}{true, res})
	}
}

// BatchAnalyzeHot handles PUT /api/hot/analyze. It analyzes up to five of
// the listed records that have not been analyzed yet.
func BatchAnalyzeHot(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeServiceError(w, err, "批量分析失败")
			return
		}

		res, err := gen.BatchAnalyze(r.Context(), body.IDs)
		if err != nil {
			writeServiceError(w, err, "批量分析失败")
			return
		}

		if len(res.Results) == 0 {
			writeOK(w, map[string]any{"message": "没有需要分析的内容", "results": res.Results})
			return
		}
		writeOK(w, map[string]any{
			"message":      fmt.Sprintf("已分析 %d 条内容", res.SuccessCount),
			"successCount": res.SuccessCount,
			"remaining":    res.Remaining,
			"results":      res.Results,
		})
	}
}

// ListHotContents handles GET /api/hot/content?platform=&category=&favorite=.
// Platform defaults to all and category to food; "all" disables a filter.
func ListHotContents(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		favorite, _ := strconv.ParseBool(q.Get("favorite"))

		contents, err := store.ListHotContents(r.Context(), models.HotContentFilter{
			Platform:     filterValue(q.Get("platform"), "all"),
			Category:     filterValue(q.Get("category"), defaultHotCategory),
			FavoriteOnly: favorite,
			Limit:        storage.DefaultHotContentLimit,
		})
		if err != nil {
			writeServiceError(w, err, "获取热门内容失败")
			return
		}
		writeOK(w, map[string]any{"contents": contents})
	}
}

type createHotContentRequest struct {
	Title        string     `json:"title" validate:"required"`
	Content      *string    `json:"content"`
	Platform     string     `json:"platform" validate:"required"`
	Category     string     `json:"category"`
	Author       *string    `json:"author"`
	AuthorID     *string    `json:"authorId"`
	AuthorAvatar *string    `json:"authorAvatar"`
	CoverImage   *string    `json:"coverImage"`
	Link         *string    `json:"link" validate:"omitnil,url"`
	Likes        int64      `json:"likes" validate:"gte=0"`
	Comments     int64      `json:"comments" validate:"gte=0"`
	Shares       int64      `json:"shares" validate:"gte=0"`
	Views        int64      `json:"views" validate:"gte=0"`
	Collects     int64      `json:"collects" validate:"gte=0"`
	PublishedAt  *time.Time `json:"publishedAt"`
}

// CreateHotContent handles POST /api/hot/content.
func CreateHotContent(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createHotContentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "添加失败")
			return
		}

		h, err := store.CreateHotContent(r.Context(), models.HotContent{
			Title:        req.Title,
			Content:      req.Content,
			Platform:     req.Platform,
			Category:     lo.CoalesceOrEmpty(req.Category, defaultHotCategory),
			Author:       req.Author,
			AuthorID:     req.AuthorID,
			AuthorAvatar: req.AuthorAvatar,
			CoverImage:   req.CoverImage,
			Link:         req.Link,
			Likes:        req.Likes,
			Comments:     req.Comments,
			Shares:       req.Shares,
			Views:        req.Views,
			Collects:     req.Collects,
			PublishedAt:  req.PublishedAt,
		})
		if err != nil {
			writeServiceError(w, err, "添加失败")
			return
		}
		writeOK(w, map[string]any{"content": h, "message": "添加成功"})
	}
}

type updateHotContentRequest struct {
	ID         string  `json:"id" validate:"required"`
	IsFavorite *bool   `json:"isFavorite"`
	Analysis   *string `json:"analysis"`
	Keywords   *string `json:"keywords"`
	StyleTags  *string `json:"styleTags"`
	IsAnalyzed *bool   `json:"isAnalyzed"`
}

// UpdateHotContent handles PUT /api/hot/content. Only the fields present in
// the body are changed.
func UpdateHotContent(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateHotContentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "更新失败")
			return
		}

		h, err := store.UpdateHotContent(r.Context(), req.ID, models.HotContentUpdate{
			IsFavorite: req.IsFavorite,
			Analysis:   req.Analysis,
			Keywords:   req.Keywords,
			StyleTags:  req.StyleTags,
			IsAnalyzed: req.IsAnalyzed,
		})
		if err != nil {
			writeServiceError(w, err, "更新失败")
			return
		}
		writeOK(w, map[string]any{"content": h, "message": "更新成功"})
	}
}

// DeleteHotContent handles DELETE /api/hot/content?id=.
func DeleteHotContent(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "缺少ID")
			return
		}

		if err := store.DeleteHotContent(r.Context(), id); err != nil {
			writeServiceError(w, err, "删除失败")
			return
		}
		writeOK(w, map[string]any{"message": "删除成功"})
	}
}

type importHotContentRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Platform string `json:"platform" validate:"required"`
	Category string `json:"category"`
}

// ImportHotContent handles POST /api/hot/import. It extracts the article at
// the given URL and stores it as a hot content record.
func ImportHotContent(store HotStore, extractor ArticleExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importHotContentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "导入失败")
			return
		}

		meta, err := extractor.ExtractArticleMetadata(req.URL)
		if err != nil {
			slog.Warn("article extraction failed", "url", req.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "无法读取该链接的内容")
			return
		}
		if strings.TrimSpace(meta.Title) == "" {
			writeError(w, http.StatusBadRequest, "未能提取到标题")
			return
		}

		h, err := store.CreateHotContent(r.Context(), models.HotContent{
			Title:       meta.Title,
			Content:     lo.EmptyableToPtr(lo.CoalesceOrEmpty(meta.TextContent, meta.Excerpt)),
			Platform:    req.Platform,
			Category:    lo.CoalesceOrEmpty(req.Category, defaultHotCategory),
			Author:      lo.EmptyableToPtr(meta.Byline),
			CoverImage:  lo.EmptyableToPtr(meta.Image),
			Link:        &req.URL,
			PublishedAt: meta.PublishedAt,
		})
		if err != nil {
			writeServiceError(w, err, "导入失败")
			return
		}
		writeOK(w, map[string]any{"content": h, "message": "导入成功"})
	}
}

// GetHotRanks handles GET /api/hot/rank?platform=&category=. Stored ranks
// win; without them the built-in list filtered by category is served.
func GetHotRanks(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		platform := lo.CoalesceOrEmpty(q.Get("platform"), storage.DefaultRankPlatform)
		category := lo.CoalesceOrEmpty(q.Get("category"), defaultRankCategory)
		now := time.Now()

		ranks, err := store.ListHotRanks(r.Context(), platform)
		if err != nil {
			writeServiceError(w, err, "获取热榜失败")
			return
		}
		if len(ranks) == 0 {
			ranks = storage.SampleHotRanks(platform, category, now)
		}

		writeOK(w, map[string]any{
			"ranks":      ranks,
			"platform":   platform,
			"updateTime": now.UTC().Format(time.RFC3339),
		})
	}
}

// RefreshHotRanks handles POST /api/hot/rank. It replaces the stored ranks
// of a platform.
func RefreshHotRanks(store HotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Platform string `json:"platform"`
			Category string `json:"category"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeServiceError(w, err, "刷新热榜失败")
			return
		}

		platform := lo.CoalesceOrEmpty(body.Platform, storage.DefaultRankPlatform)
		ranks, err := store.RefreshHotRanks(r.Context(), platform, lo.CoalesceOrEmpty(body.Category, defaultRankCategory))
		if err != nil {
			writeServiceError(w, err, "刷新热榜失败")
			return
		}
		writeOK(w, map[string]any{"ranks": ranks, "message": "热榜已更新"})
	}
}
