package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// ContentStore persists content drafts.
type ContentStore interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
	ListContents(ctx context.Context, f models.ContentFilter) ([]models.Content, error)
	UpdateContent(ctx context.Context, id string, u models.ContentUpdate) (*models.Content, error)
	DeleteContent(ctx context.Context, id string) error
}

// Defaults applied to a new content record.
const (
	defaultContentCategory = "food"
	defaultContentPlatform = "xiaohongshu"
	defaultContentType     = "copywriting"
)

// GetContents handles GET /api/contents?category=&status=. Category defaults
// to food; "all" lists every category.
func GetContents(store ContentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		contents, err := store.ListContents(r.Context(), models.ContentFilter{
			Category: filterValue(q.Get("category"), defaultContentCategory),
			Status:   q.Get("status"),
		})
		if err != nil {
			writeServiceError(w, err, "获取内容失败")
			return
		}
		writeOK(w, map[string]any{"contents": contents})
	}
}

type createContentRequest struct {
	Title      string  `json:"title" validate:"required"`
	Content    string  `json:"content" validate:"required"`
	Category   string  `json:"category"`
	Platform   string  `json:"platform"`
	Style      *string `json:"style"`
	Type       string  `json:"type"`
	Tags       *string `json:"tags"`
	CoverImage *string `json:"coverImage"`
	AccountID  *string `json:"accountId"`
}

// CreateContent handles POST /api/contents. New content starts as a draft.
func CreateContent(store ContentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createContentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "保存内容失败")
			return
		}

		content, err := store.CreateContent(r.Context(), models.Content{
			Title:      req.Title,
			Content:    req.Content,
			Category:   lo.CoalesceOrEmpty(req.Category, defaultContentCategory),
			Platform:   lo.CoalesceOrEmpty(req.Platform, defaultContentPlatform),
			Style:      req.Style,
			Type:       lo.CoalesceOrEmpty(req.Type, defaultContentType),
			Tags:       req.Tags,
			CoverImage: req.CoverImage,
			AccountID:  req.AccountID,
		})
		if err != nil {
			writeServiceError(w, err, "保存内容失败")
			return
		}
		writeOK(w, map[string]any{"content": content, "message": "内容保存成功"})
	}
}

type updateContentRequest struct {
	ID          string     `json:"id" validate:"required"`
	Title       *string    `json:"title" validate:"omitnil,min=1"`
	Content     *string    `json:"content" validate:"omitnil,min=1"`
	Tags        *string    `json:"tags"`
	CoverImage  *string    `json:"coverImage"`
	Status      *string    `json:"status" validate:"omitnil,min=1"`
	Likes       *int64     `json:"likes" validate:"omitnil,gte=0"`
	Comments    *int64     `json:"comments" validate:"omitnil,gte=0"`
	Shares      *int64     `json:"shares" validate:"omitnil,gte=0"`
	Views       *int64     `json:"views" validate:"omitnil,gte=0"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// UpdateContent handles PUT /api/contents. Only the fields present in the
// body are changed.
func UpdateContent(store ContentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateContentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "更新内容失败")
			return
		}

		content, err := store.UpdateContent(r.Context(), req.ID, models.ContentUpdate{
			Title:       req.Title,
			Content:     req.Content,
			Tags:        req.Tags,
			CoverImage:  req.CoverImage,
			Status:      req.Status,
			Likes:       req.Likes,
			Comments:    req.Comments,
			Shares:      req.Shares,
			Views:       req.Views,
			PublishedAt: req.PublishedAt,
		})
		if err != nil {
			writeServiceError(w, err, "更新内容失败")
			return
		}
		writeOK(w, map[string]any{"content": content, "message": "内容更新成功"})
	}
}

// DeleteContent handles DELETE /api/contents?id=.
func DeleteContent(store ContentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "缺少内容ID")
			return
		}

		if err := store.DeleteContent(r.Context(), id); err != nil {
			writeServiceError(w, err, "删除内容失败")
			return
		}
		writeOK(w, map[string]any{"message": "内容删除成功"})
	}
}
