package models

import "time"

// HotContent is a trending post collected for analysis.
type HotContent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      *string    `json:"content,omitempty"`
	Platform     string     `json:"platform"`
	Category     string     `json:"category"`
	Author       *string    `json:"author,omitempty"`
	AuthorID     *string    `json:"authorId,omitempty"`
	AuthorAvatar *string    `json:"authorAvatar,omitempty"`
	CoverImage   *string    `json:"coverImage,omitempty"`
	Link         *string    `json:"link,omitempty"`
	Likes        int64      `json:"likes"`
	Comments     int64      `json:"comments"`
	Shares       int64      `json:"shares"`
	Views        int64      `json:"views"`
	Collects     int64      `json:"collects"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	Analysis     *string    `json:"analysis,omitempty"`
	Keywords     *string    `json:"keywords,omitempty"`
	StyleTags    *string    `json:"styleTags,omitempty"`
	IsAnalyzed   bool       `json:"isAnalyzed"`
	IsFavorite   bool       `json:"isFavorite"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HotContentUpdate carries the mutable fields of a hot content record. Nil
// fields are left unchanged.
type HotContentUpdate struct {
	IsFavorite *bool
	Analysis   *string
	Keywords   *string
	StyleTags  *string
	IsAnalyzed *bool
}

// HotContentFilter narrows a hot content listing. Empty Platform or Category
// match everything.
type HotContentFilter struct {
	Platform     string
	Category     string
	FavoriteOnly bool
	Limit        uint64
}

// HotAnalysis is the stored result of analyzing one hot content record.
type HotAnalysis struct {
	Analysis  string
	Keywords  string
	StyleTags string
}

// HotRank is one entry of a platform's trending keyword list.
type HotRank struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Keyword   string    `json:"keyword"`
	Rank      int       `json:"rank"`
	Heat      int64     `json:"heat"`
	Category  string    `json:"category"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}
