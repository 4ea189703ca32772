package searchlogs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/enums"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/pagination"
	"github.com/sijangmap/marketmap-backend/pkg/redis"
)

const maxKeywordLen = 100

type searchLogRepository interface {
	Insert(ctx context.Context, entry *models.SearchLog) error
	Recent(ctx context.Context, limit int) ([]models.SearchLog, error)
	RecentBefore(ctx context.Context, before *pagination.Cursor, limit int) ([]models.SearchLog, error)
	KeywordCounts(ctx context.Context, limit int) ([]KeywordStatDTO, error)
	TypeCounts(ctx context.Context) ([]TypeStatDTO, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type popularCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service exposes the append-only search log and its aggregates.
type Service interface {
	Record(ctx context.Context, keyword *string, searchType enums.SearchType, resultCount int) error
	RecentSearches(ctx context.Context, limit int) ([]SearchLogDTO, error)
	RecentSearchesPage(ctx context.Context, cursor string, limit int) (*SearchLogPageDTO, error)
	KeywordStatistics(ctx context.Context) ([]KeywordStatDTO, error)
	TypeStatistics(ctx context.Context) ([]TypeStatDTO, error)
	PopularKeywords(ctx context.Context, limit int) ([]KeywordStatDTO, error)
	CountToday(ctx context.Context) (int64, error)
}

type service struct {
	repo  searchLogRepository
	cache popularCache
	logg  *logger.Logger
	cfg   config.SearchConfig
	now   func() time.Time
}

// NewService builds the search-log service. The cache may be nil, in
// which case popular keywords always hit the database.
func NewService(repo searchLogRepository, cache popularCache, logg *logger.Logger, cfg config.SearchConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("search log repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		logg:  logg,
		cfg:   cfg,
		now:   time.Now,
	}, nil
}

// Record appends one immutable log entry with a server-assigned
// timestamp. Result counts below zero are clamped; keywords are clipped
// to the column width rather than rejected.
func (s *service) Record(ctx context.Context, keyword *string, searchType enums.SearchType, resultCount int) error {
	if !searchType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown search type")
	}
	if resultCount < 0 {
		resultCount = 0
	}
	if keyword != nil {
		clipped := clipRunes(*keyword, maxKeywordLen)
		keyword = &clipped
	}

	entry := &models.SearchLog{
		SearchKeyword: keyword,
		SearchType:    searchType.String(),
		ResultCount:   resultCount,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append search log")
	}
	return nil
}

func (s *service) RecentSearches(ctx context.Context, limit int) ([]SearchLogDTO, error) {
	if limit <= 0 {
		limit = s.popularLimit()
	}
	rows, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent searches")
	}
	return FromModels(rows), nil
}

// RecentSearchesPage walks the log in pages keyed by an opaque cursor.
// The last page carries no next cursor.
func (s *service) RecentSearchesPage(ctx context.Context, cursor string, limit int) (*SearchLogPageDTO, error) {
	before, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit = pagination.NormalizeLimit(limit)

	rows, err := s.repo.RecentBefore(ctx, before, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent searches")
	}

	page := &SearchLogPageDTO{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.SearchedAt, ID: last.LogID})
	}
	page.Items = FromModels(rows)
	return page, nil
}

func (s *service) KeywordStatistics(ctx context.Context) ([]KeywordStatDTO, error) {
	rows, err := s.repo.KeywordCounts(ctx, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate keywords")
	}
	return rows, nil
}

func (s *service) TypeStatistics(ctx context.Context) ([]TypeStatDTO, error) {
	rows, err := s.repo.TypeCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate search types")
	}
	return rows, nil
}

// PopularKeywords serves the top keywords, preferring the short-lived
// cache. Cache misses and cache errors both fall through to the
// database; a stale or unavailable cache never fails the request.
func (s *service) PopularKeywords(ctx context.Context, limit int) ([]KeywordStatDTO, error) {
	if limit <= 0 {
		limit = s.popularLimit()
	}

	cacheKey := redis.PopularKeywordsKey(limit)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []KeywordStatDTO
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else if !redis.IsNil(err) {
			s.logg.Warn(ctx, fmt.Sprintf("popular keyword cache read failed: %v", err))
		}
	}

	rows, err := s.repo.KeywordCounts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate keywords")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(rows); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.popularTTL()); err != nil {
				s.logg.Warn(ctx, fmt.Sprintf("popular keyword cache write failed: %v", err))
			}
		}
	}
	return rows, nil
}

// CountToday counts entries whose timestamp falls on the current
// server-local calendar day.
func (s *service) CountToday(ctx context.Context) (int64, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	count, err := s.repo.CountBetween(ctx, start, end)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count today's searches")
	}
	return count, nil
}

func (s *service) popularLimit() int {
	if s.cfg.PopularLimit > 0 {
		return s.cfg.PopularLimit
	}
	return 10
}

func (s *service) popularTTL() time.Duration {
	if s.cfg.PopularCacheTTL > 0 {
		return s.cfg.PopularCacheTTL
	}
	return time.Minute
}

func clipRunes(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
