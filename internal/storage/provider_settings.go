package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// providerSettingID is the id of the single configuration row per capability.
const providerSettingID = "default"

// GetProviderSetting returns the stored configuration for capability, or
// ErrNotFound when none has been saved yet.
func (s *Store) GetProviderSetting(ctx context.Context, capability string) (*models.ProviderSetting, error) {
	q := s.sql.Select("capability", "provider", "api_key", "endpoint", "model", "enabled", "updated_at").
		From("provider_settings").
		Where(sq.Eq{"capability": capability, "id": providerSettingID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get provider setting query: %w", err)
	}

	var (
		p         models.ProviderSetting
		updatedAt string
	)
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&p.Capability, &p.Provider, &p.APIKey, &p.Endpoint, &p.Model, &p.Enabled, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get provider setting: %w", err)
	}
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// SaveProviderSetting inserts or replaces the configuration for
// p.Capability.
func (s *Store) SaveProviderSetting(ctx context.Context, p models.ProviderSetting) error {
	q := s.sql.Insert("provider_settings").
		Columns("capability", "id", "provider", "api_key", "endpoint", "model", "enabled", "updated_at").
		Values(p.Capability, providerSettingID, p.Provider, p.APIKey, p.Endpoint, p.Model, p.Enabled, s.timestamp()).
		Suffix("ON CONFLICT(capability, id) DO UPDATE SET provider=excluded.provider, api_key=excluded.api_key, endpoint=excluded.endpoint, model=excluded.model, enabled=excluded.enabled, updated_at=excluded.updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save provider setting query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save provider setting: %w", err)
	}
	return nil
}
