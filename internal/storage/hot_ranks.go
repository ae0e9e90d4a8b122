package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// DefaultRankPlatform is used when a rank request names no known platform.
const DefaultRankPlatform = "weibo"

// maxRanks caps a rank listing.
const maxRanks = 20

type sampleRank struct {
	keyword string
	heat    int64
}

// sampleRanks is the built-in trending list served until ranks are refreshed.
var sampleRanks = map[string][]sampleRank{
	"weibo": {
		{"春季养生食谱推荐", 982341},
		{"网红餐厅打卡攻略", 876523},
		{"减脂餐一周食谱", 765432},
		{"家常菜做法大全", 654321},
		{"美食博主推荐", 543210},
		{"宠物日常萌宠视频", 432109},
		{"猫咪训练技巧", 321098},
		{"狗狗健康饮食", 210987},
	},
	"douyin": {
		{"美食探店vlog", 1234567},
		{"懒人快手菜", 987654},
		{"网红美食测评", 876543},
		{"萌宠日常", 765432},
		{"宠物训练教程", 654321},
	},
	"xiaohongshu": {
		{"春季养生汤谱", 567890},
		{"减脂餐食谱分享", 456789},
		{"家常菜教程", 345678},
		{"猫咪日常", 234567},
		{"养宠攻略", 123456},
	},
}

// categoryKeywords decides which sample keywords belong to a category.
var categoryKeywords = map[string][]string{
	"food": {"食谱", "美食", "餐厅", "菜", "养生"},
	"pet":  {"宠物", "猫", "狗", "萌宠", "养宠"},
}

func samplesFor(platform string) []sampleRank {
	if s, ok := sampleRanks[platform]; ok {
		return s
	}
	return sampleRanks[DefaultRankPlatform]
}

func matchesCategory(keyword, category string) bool {
	words, ok := categoryKeywords[category]
	if !ok {
		return true
	}
	for _, w := range words {
		if strings.Contains(keyword, w) {
			return true
		}
	}
	return false
}

// SampleHotRanks returns the built-in list for platform filtered by category.
// Ranks are renumbered from 1 after filtering.
func SampleHotRanks(platform, category string, now time.Time) []models.HotRank {
	out := make([]models.HotRank, 0)
	for _, item := range samplesFor(platform) {
		if !matchesCategory(item.keyword, category) {
			continue
		}
		out = append(out, models.HotRank{
			ID:        fmt.Sprintf("sample-%d", len(out)),
			Platform:  platform,
			Keyword:   item.keyword,
			Rank:      len(out) + 1,
			Heat:      item.heat,
			Category:  category,
			CreatedAt: now,
		})
	}
	return out
}

// ListHotRanks returns the stored ranks for platform in rank order.
func (s *Store) ListHotRanks(ctx context.Context, platform string) ([]models.HotRank, error) {
	q := s.sql.Select("id", "platform", "keyword", "rank", "heat", "category", "link", "created_at").
		From("hot_ranks").
		Where(sq.Eq{"platform": platform}).
		OrderBy("rank ASC").
		Limit(maxRanks)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list hot ranks query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list hot ranks: %w", err)
	}
	defer rows.Close()

	out := make([]models.HotRank, 0)
	for rows.Next() {
		var (
			r         models.HotRank
			link      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Platform, &r.Keyword, &r.Rank, &r.Heat, &r.Category, &link, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning hot rank: %w", err)
		}
		r.Link = nullString(link)
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hot ranks: %w", err)
	}
	return out, nil
}

// RefreshHotRanks replaces the stored ranks of platform with the current
// list and returns the new rows.
func (s *Store) RefreshHotRanks(ctx context.Context, platform, category string) ([]models.HotRank, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	sqlStr, args, err := s.sql.Delete("hot_ranks").Where(sq.Eq{"platform": platform}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clear hot ranks query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("clearing hot ranks: %w", err)
	}

	now := s.now()
	ranks := make([]models.HotRank, 0)
	for i, item := range samplesFor(platform) {
		r := models.HotRank{
			ID:        newID(),
			Platform:  platform,
			Keyword:   item.keyword,
			Rank:      i + 1,
			Heat:      item.heat,
			Category:  category,
			CreatedAt: now,
		}
		sqlStr, args, err := s.sql.Insert("hot_ranks").
			Columns("id", "platform", "keyword", "rank", "heat", "category", "link", "created_at").
			Values(r.ID, r.Platform, r.Keyword, r.Rank, r.Heat, r.Category, r.Link, formatTime(now)).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert hot rank query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return nil, fmt.Errorf("inserting hot rank: %w", err)
		}
		ranks = append(ranks, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing hot ranks: %w", err)
	}
	return ranks, nil
}
