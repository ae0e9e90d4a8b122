package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

var contentColumns = []string{
	"id", "title", "content", "category", "platform", "style", "type", "tags",
	"cover_image", "account_id", "status", "likes", "comments", "shares", "views",
	"published_at", "created_at", "updated_at",
}

// CreateContent inserts a draft and returns the stored record.
func (s *Store) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	now := s.timestamp()
	id := newID()

	q := s.sql.Insert("contents").
		Columns("id", "title", "content", "category", "platform", "style", "type", "tags", "cover_image", "account_id", "status", "created_at", "updated_at").
		Values(id, c.Title, c.Content, c.Category, c.Platform, c.Style, c.Type, c.Tags, c.CoverImage, c.AccountID, "draft", now, now)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create content query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return s.GetContent(ctx, id)
}

// GetContent returns the content with the given id, or ErrNotFound.
func (s *Store) GetContent(ctx context.Context, id string) (*models.Content, error) {
	sqlStr, args, err := s.sql.Select(contentColumns...).From("contents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get content query: %w", err)
	}

	c, err := scanContent(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

// ListContents returns contents matching f, newest first.
func (s *Store) ListContents(ctx context.Context, f models.ContentFilter) ([]models.Content, error) {
	q := s.sql.Select(contentColumns...).From("contents").OrderBy("created_at DESC", "rowid DESC")
	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list contents query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contents: %w", err)
	}
	return out, nil
}

// UpdateContent applies the non-nil fields of u and returns the updated
// record.
func (s *Store) UpdateContent(ctx context.Context, id string, u models.ContentUpdate) (*models.Content, error) {
	set := map[string]any{"updated_at": s.timestamp()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Tags != nil {
		set["tags"] = *u.Tags
	}
	if u.CoverImage != nil {
		set["cover_image"] = *u.CoverImage
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Likes != nil {
		set["likes"] = *u.Likes
	}
	if u.Comments != nil {
		set["comments"] = *u.Comments
	}
	if u.Shares != nil {
		set["shares"] = *u.Shares
	}
	if u.Views != nil {
		set["views"] = *u.Views
	}
	if u.PublishedAt != nil {
		set["published_at"] = nullTime(u.PublishedAt)
	}

	if err := s.updateByID(ctx, "contents", id, set); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return s.GetContent(ctx, id)
}

// DeleteContent removes the content with the given id.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	if err := s.deleteByID(ctx, "contents", id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

func scanContent(r rowScanner) (*models.Content, error) {
	var (
		c                                  models.Content
		style, tags, coverImage, accountID sql.NullString
		publishedAt                        sql.NullString
		createdAt, updatedAt               string
	)
	if err := r.Scan(
		&c.ID, &c.Title, &c.Content, &c.Category, &c.Platform, &style, &c.Type, &tags,
		&coverImage, &accountID, &c.Status, &c.Likes, &c.Comments, &c.Shares, &c.Views,
		&publishedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	c.Style = nullString(style)
	c.Tags = nullString(tags)
	c.CoverImage = nullString(coverImage)
	c.AccountID = nullString(accountID)
	c.PublishedAt = parseNullTime(publishedAt)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
