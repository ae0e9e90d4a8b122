package models

import "time"

// Account is a manually registered social-media account. The access token is
// persisted but never serialized.
type Account struct {
	ID           string    `json:"id"`
	Platform     string    `json:"platform"`
	AccountName  string    `json:"accountName"`
	AccountID    *string   `json:"accountId,omitempty"`
	Avatar       *string   `json:"avatar,omitempty"`
	FansCount    int64     `json:"fansCount"`
	NotesCount   int64     `json:"notesCount"`
	AccessToken  *string   `json:"-"`
	Status       string    `json:"status"`
	ContentCount int64     `json:"contentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountUpdate carries the fields of an account update. Nil fields are left
// unchanged.
type AccountUpdate struct {
	AccountName *string
	AccountID   *string
	Avatar      *string
	FansCount   *int64
	NotesCount  *int64
	Status      *string
}
