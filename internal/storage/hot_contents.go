package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// DefaultHotContentLimit caps a hot content listing when the filter sets no
// limit.
const DefaultHotContentLimit = 50

var hotContentColumns = []string{
	"id", "title", "content", "platform", "category", "author", "author_id",
	"author_avatar", "cover_image", "link", "likes", "comments", "shares", "views",
	"collects", "published_at", "analysis", "keywords", "style_tags", "is_analyzed",
	"is_favorite", "created_at",
}

// CreateHotContent inserts a hot content record and returns it. Analysis
// fields start empty.
func (s *Store) CreateHotContent(ctx context.Context, h models.HotContent) (*models.HotContent, error) {
	id := newID()

	q := s.sql.Insert("hot_contents").
		Columns("id", "title", "content", "platform", "category", "author", "author_id", "author_avatar",
			"cover_image", "link", "likes", "comments", "shares", "views", "collects", "published_at", "created_at").
		Values(id, h.Title, h.Content, h.Platform, h.Category, h.Author, h.AuthorID, h.AuthorAvatar,
			h.CoverImage, h.Link, h.Likes, h.Comments, h.Shares, h.Views, h.Collects, nullTime(h.PublishedAt), s.timestamp())

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create hot content query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("create hot content: %w", err)
	}
	return s.GetHotContent(ctx, id)
}

// GetHotContent returns the record with the given id, or ErrNotFound.
func (s *Store) GetHotContent(ctx context.Context, id string) (*models.HotContent, error) {
	sqlStr, args, err := s.sql.Select(hotContentColumns...).From("hot_contents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hot content query: %w", err)
	}

	h, err := scanHotContent(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hot content: %w", err)
	}
	return h, nil
}

// ListHotContents returns records matching f, newest first.
func (s *Store) ListHotContents(ctx context.Context, f models.HotContentFilter) ([]models.HotContent, error) {
	limit := f.Limit
	if limit == 0 {
		limit = DefaultHotContentLimit
	}

	q := s.sql.Select(hotContentColumns...).From("hot_contents").
		OrderBy("created_at DESC", "rowid DESC").
		Limit(limit)
	if f.Platform != "" {
		q = q.Where(sq.Eq{"platform": f.Platform})
	}
	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.FavoriteOnly {
		q = q.Where(sq.Eq{"is_favorite": true})
	}

	return s.queryHotContents(ctx, q)
}

// ListUnanalyzedHotContents returns the records among ids that have not been
// analyzed yet, oldest first. Unknown ids are ignored.
func (s *Store) ListUnanalyzedHotContents(ctx context.Context, ids []string) ([]models.HotContent, error) {
	if len(ids) == 0 {
		return []models.HotContent{}, nil
	}
	q := s.sql.Select(hotContentColumns...).From("hot_contents").
		Where(sq.Eq{"id": ids, "is_analyzed": false}).
		OrderBy("created_at ASC", "rowid ASC")
	return s.queryHotContents(ctx, q)
}

// UpdateHotContent applies the non-nil fields of u and returns the updated
// record.
func (s *Store) UpdateHotContent(ctx context.Context, id string, u models.HotContentUpdate) (*models.HotContent, error) {
	set := map[string]any{}
	if u.IsFavorite != nil {
		set["is_favorite"] = *u.IsFavorite
	}
	if u.Analysis != nil {
		set["analysis"] = *u.Analysis
	}
	if u.Keywords != nil {
		set["keywords"] = *u.Keywords
	}
	if u.StyleTags != nil {
		set["style_tags"] = *u.StyleTags
	}
	if u.IsAnalyzed != nil {
		set["is_analyzed"] = *u.IsAnalyzed
	}
	if len(set) == 0 {
		return s.GetHotContent(ctx, id)
	}

	if err := s.updateByID(ctx, "hot_contents", id, set); err != nil {
		return nil, fmt.Errorf("update hot content: %w", err)
	}
	return s.GetHotContent(ctx, id)
}

// SaveHotAnalysis stores an analysis result and marks the record analyzed.
func (s *Store) SaveHotAnalysis(ctx context.Context, id string, a models.HotAnalysis) error {
	err := s.updateByID(ctx, "hot_contents", id, map[string]any{
		"analysis":    a.Analysis,
		"keywords":    a.Keywords,
		"style_tags":  a.StyleTags,
		"is_analyzed": true,
	})
	if err != nil {
		return fmt.Errorf("save hot analysis: %w", err)
	}
	return nil
}

// DeleteHotContent removes the record with the given id.
func (s *Store) DeleteHotContent(ctx context.Context, id string) error {
	if err := s.deleteByID(ctx, "hot_contents", id); err != nil {
		return fmt.Errorf("delete hot content: %w", err)
	}
	return nil
}

func (s *Store) queryHotContents(ctx context.Context, q sq.SelectBuilder) ([]models.HotContent, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hot content query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hot contents: %w", err)
	}
	defer rows.Close()

	out := make([]models.HotContent, 0)
	for rows.Next() {
		h, err := scanHotContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hot content: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hot contents: %w", err)
	}
	return out, nil
}

func scanHotContent(r rowScanner) (*models.HotContent, error) {
	var (
		h                                       models.HotContent
		content, author, authorID, authorAvatar sql.NullString
		coverImage, link, publishedAt           sql.NullString
		analysis, keywords, styleTags           sql.NullString
		createdAt                               string
	)
	if err := r.Scan(
		&h.ID, &h.Title, &content, &h.Platform, &h.Category, &author, &authorID,
		&authorAvatar, &coverImage, &link, &h.Likes, &h.Comments, &h.Shares, &h.Views,
		&h.Collects, &publishedAt, &analysis, &keywords, &styleTags, &h.IsAnalyzed,
		&h.IsFavorite, &createdAt,
	); err != nil {
		return nil, err
	}
	h.Content = nullString(content)
	h.Author = nullString(author)
	h.AuthorID = nullString(authorID)
	h.AuthorAvatar = nullString(authorAvatar)
	h.CoverImage = nullString(coverImage)
	h.Link = nullString(link)
	h.PublishedAt = parseNullTime(publishedAt)
	h.Analysis = nullString(analysis)
	h.Keywords = nullString(keywords)
	h.StyleTags = nullString(styleTags)
	h.CreatedAt = parseTime(createdAt)
	return &h, nil
}
