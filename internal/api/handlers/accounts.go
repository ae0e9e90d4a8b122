package handlers

import (
	"context"
	"net/http"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// AccountStore persists social-media accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, a models.Account) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// GetAccounts handles GET /api/accounts. Accounts are listed newest first
// with their content counts.
func GetAccounts(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := store.ListAccounts(r.Context())
		if err != nil {
			writeServiceError(w, err, "获取账号失败")
			return
		}
		writeOK(w, map[string]any{"accounts": accounts})
	}
}

type createAccountRequest struct {
	Platform    string  `json:"platform" validate:"required"`
	AccountName string  `json:"accountName" validate:"required"`
	AccountID   *string `json:"accountId"`
	Avatar      *string `json:"avatar"`
	FansCount   int64   `json:"fansCount" validate:"gte=0"`
	AccessToken *string `json:"accessToken"`
}

// CreateAccount handles POST /api/accounts.
func CreateAccount(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAccountRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "添加账号失败")
			return
		}

		account, err := store.CreateAccount(r.Context(), models.Account{
			Platform:    req.Platform,
			AccountName: req.AccountName,
			AccountID:   req.AccountID,
			Avatar:      req.Avatar,
			FansCount:   req.FansCount,
			AccessToken: req.AccessToken,
		})
		if err != nil {
			writeServiceError(w, err, "添加账号失败")
			return
		}
		writeOK(w, map[string]any{"account": account, "message": "账号添加成功"})
	}
}

type updateAccountRequest struct {
	ID          string  `json:"id" validate:"required"`
	AccountName *string `json:"accountName" validate:"omitnil,min=1"`
	AccountID   *string `json:"accountId"`
	Avatar      *string `json:"avatar"`
	FansCount   *int64  `json:"fansCount" validate:"omitnil,gte=0"`
	NotesCount  *int64  `json:"notesCount" validate:"omitnil,gte=0"`
	Status      *string `json:"status" validate:"omitnil,min=1"`
}

// UpdateAccount handles PUT /api/accounts. Only the fields present in the
// body are changed.
func UpdateAccount(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAccountRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, err, "更新账号失败")
			return
		}

		account, err := store.UpdateAccount(r.Context(), req.ID, models.AccountUpdate{
			AccountName: req.AccountName,
			AccountID:   req.AccountID,
			Avatar:      req.Avatar,
			FansCount:   req.FansCount,
			NotesCount:  req.NotesCount,
			Status:      req.Status,
		})
		if err != nil {
			writeServiceError(w, err, "更新账号失败")
			return
		}
		writeOK(w, map[string]any{"account": account, "message": "账号更新成功"})
	}
}

// DeleteAccount handles DELETE /api/accounts?id=. Contents linked to the
// account are kept and unlinked.
func DeleteAccount(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "缺少账号ID")
			return
		}

		if err := store.DeleteAccount(r.Context(), id); err != nil {
			writeServiceError(w, err, "删除账号失败")
			return
		}
		writeOK(w, map[string]any{"message": "账号删除成功"})
	}
}
