package searchlogs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/pagination"
)

// Repository handles search-log persistence. The table is append-only;
// there is no update or delete path.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to search-log operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one log entry.
func (r *Repository) Insert(ctx context.Context, entry *models.SearchLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the newest entries, most recent first. Entries logged
// in the same instant fall back to descending id, which preserves
// insertion order.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.SearchLog, error) {
	var rows []models.SearchLog
	if err := r.db.WithContext(ctx).
		Order("searched_at DESC, log_id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentBefore returns the page of entries strictly older than the
// cursor position, newest first. A nil cursor starts from the top.
func (r *Repository) RecentBefore(ctx context.Context, before *pagination.Cursor, limit int) ([]models.SearchLog, error) {
	query := r.db.WithContext(ctx).
		Order("searched_at DESC, log_id DESC").
		Limit(limit)
	if before != nil {
		query = query.Where(
			"searched_at < ? OR (searched_at = ? AND log_id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID,
		)
	}

	var rows []models.SearchLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// KeywordCounts aggregates occurrences per non-null keyword, descending
// by count. MIN(log_id) encodes first-occurrence order so equal counts
// rank in the order the keywords first appeared.
func (r *Repository) KeywordCounts(ctx context.Context, limit int) ([]KeywordStatDTO, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SearchLog{}).
		Select("search_keyword AS keyword, COUNT(*) AS count").
		Where("search_keyword IS NOT NULL").
		Group("search_keyword").
		Order("count DESC, MIN(log_id) ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []KeywordStatDTO
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TypeCounts aggregates occurrences per search type, descending by count.
func (r *Repository) TypeCounts(ctx context.Context) ([]TypeStatDTO, error) {
	var rows []TypeStatDTO
	if err := r.db.WithContext(ctx).
		Model(&models.SearchLog{}).
		Select("search_type, COUNT(*) AS count").
		Group("search_type").
		Order("count DESC, MIN(log_id) ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountBetween counts entries in the half-open window [from, to).
func (r *Repository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SearchLog{}).
		Where("searched_at >= ? AND searched_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
