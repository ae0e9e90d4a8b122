package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

var accountColumns = []string{
	"a.id", "a.platform", "a.account_name", "a.account_id", "a.avatar",
	"a.fans_count", "a.notes_count", "a.access_token", "a.status",
	"a.created_at", "a.updated_at",
	"(SELECT COUNT(*) FROM contents c WHERE c.account_id = a.id) AS content_count",
}

// CreateAccount inserts a new account with status "active" and returns it.
func (s *Store) CreateAccount(ctx context.Context, a models.Account) (*models.Account, error) {
	now := s.timestamp()
	id := newID()

	q := s.sql.Insert("accounts").
		Columns("id", "platform", "account_name", "account_id", "avatar", "fans_count", "notes_count", "access_token", "status", "created_at", "updated_at").
		Values(id, a.Platform, a.AccountName, a.AccountID, a.Avatar, a.FansCount, a.NotesCount, a.AccessToken, "active", now, now)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create account query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.GetAccount(ctx, id)
}

// GetAccount returns the account with the given id, or ErrNotFound.
func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	q := s.sql.Select(accountColumns...).From("accounts a").Where(sq.Eq{"a.id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get account query: %w", err)
	}

	a, err := scanAccount(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns all accounts, newest first, each with its content
// count.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	q := s.sql.Select(accountColumns...).From("accounts a").OrderBy("a.created_at DESC", "a.rowid DESC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return out, nil
}

// UpdateAccount applies the non-nil fields of u to the account and returns
// the updated record.
func (s *Store) UpdateAccount(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	set := map[string]any{"updated_at": s.timestamp()}
	if u.AccountName != nil {
		set["account_name"] = *u.AccountName
	}
	if u.AccountID != nil {
		set["account_id"] = *u.AccountID
	}
	if u.Avatar != nil {
		set["avatar"] = *u.Avatar
	}
	if u.FansCount != nil {
		set["fans_count"] = *u.FansCount
	}
	if u.NotesCount != nil {
		set["notes_count"] = *u.NotesCount
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}

	if err := s.updateByID(ctx, "accounts", id, set); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.GetAccount(ctx, id)
}

// DeleteAccount removes the account. Contents that referenced it keep their
// data with the account link cleared.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if err := s.deleteByID(ctx, "accounts", id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (*models.Account, error) {
	var (
		a                    models.Account
		accountID, avatar    sql.NullString
		accessToken          sql.NullString
		createdAt, updatedAt string
	)
	if err := r.Scan(
		&a.ID, &a.Platform, &a.AccountName, &accountID, &avatar,
		&a.FansCount, &a.NotesCount, &accessToken, &a.Status,
		&createdAt, &updatedAt, &a.ContentCount,
	); err != nil {
		return nil, err
	}
	a.AccountID = nullString(accountID)
	a.Avatar = nullString(avatar)
	a.AccessToken = nullString(accessToken)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}

// updateByID applies set to the row with the given id, returning ErrNotFound
// when no row matched.
func (s *Store) updateByID(ctx context.Context, table, id string, set map[string]any) error {
	sqlStr, args, err := s.sql.Update(table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// deleteByID removes the row with the given id, returning ErrNotFound when no
// row matched.
func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	sqlStr, args, err := s.sql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
