package models

import "time"

// Content is a drafted or published piece of creator content.
type Content struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Platform    string     `json:"platform"`
	Style       *string    `json:"style,omitempty"`
	Type        string     `json:"type"`
	Tags        *string    `json:"tags,omitempty"`
	CoverImage  *string    `json:"coverImage,omitempty"`
	AccountID   *string    `json:"accountId,omitempty"`
	Status      string     `json:"status"`
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	Shares      int64      `json:"shares"`
	Views       int64      `json:"views"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ContentUpdate carries the fields of a content update. Nil fields are left
// unchanged.
type ContentUpdate struct {
	Title       *string
	Content     *string
	Tags        *string
	CoverImage  *string
	Status      *string
	Likes       *int64
	Comments    *int64
	Shares      *int64
	Views       *int64
	PublishedAt *time.Time
}

// ContentFilter narrows a content listing. Empty fields match everything.
type ContentFilter struct {
	Category string
	Status   string
}
