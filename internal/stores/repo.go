package stores

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

// directoryOrder is the canonical listing order for the store directory.
// NULLS LAST keeps unzoned/uncoded stores at the tail on both postgres
// and the sqlite test driver.
const directoryOrder = "zone_number ASC NULLS LAST, store_code ASC NULLS LAST, store_id ASC"

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by id regardless of its active flag, so admin
// screens can still inspect soft-deleted records.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", id).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindActiveByCode returns the active store carrying the given code.
func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("store_code = ? AND is_active = ?", code, true).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// CodeTakenByOther reports whether another active store already uses the
// code. excludeID skips the record being updated.
func (r *Repository) CodeTakenByOther(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("store_code = ? AND is_active = ? AND store_id <> ?", code, true, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActive returns every active store in directory order.
func (r *Repository) ListActive(ctx context.Context) ([]models.Store, error) {
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order(directoryOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByZone returns the active stores of one zone in directory order.
func (r *Repository) ListByZone(ctx context.Context, zone int) ([]models.Store, error) {
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND zone_number = ?", true, zone).
		Order(directoryOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindWithinRadius returns active stores inside the square window
// |x-qx|<=radius AND |y-qy|<=radius, nearest first by squared euclidean
// distance with store_id breaking ties.
func (r *Repository) FindWithinRadius(ctx context.Context, x, y, radius int) ([]models.Store, error) {
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Select("*, (x_coordinate - ?) * (x_coordinate - ?) + (y_coordinate - ?) * (y_coordinate - ?) AS distance_sq", x, x, y, y).
		Where("is_active = ?", true).
		Where("x_coordinate BETWEEN ? AND ?", x-radius, x+radius).
		Where("y_coordinate BETWEEN ? AND ?", y-radius, y+radius).
		Order("distance_sq ASC, store_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindNearest returns the active store with the smallest squared distance
// to (x, y). Ties resolve to the lowest store id.
func (r *Repository) FindNearest(ctx context.Context, x, y int) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Select("*, (x_coordinate - ?) * (x_coordinate - ?) + (y_coordinate - ?) * (y_coordinate - ?) AS distance_sq", x, x, y, y).
		Where("is_active = ?", true).
		Order("distance_sq ASC, store_id ASC").
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// SearchKeyword matches the keyword as a case-sensitive substring of the
// name, code or description of active stores, in directory order.
func (r *Repository) SearchKeyword(ctx context.Context, keyword string) ([]models.Store, error) {
	pattern := containsPattern(keyword)
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("store_name LIKE ? ESCAPE '\\' OR store_code LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order(directoryOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchName matches only the store name field.
func (r *Repository) SearchName(ctx context.Context, name string) ([]models.Store, error) {
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND store_name LIKE ? ESCAPE '\\'", true, containsPattern(name)).
		Order(directoryOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchPhone matches only the phone number field.
func (r *Repository) SearchPhone(ctx context.Context, phone string) ([]models.Store, error) {
	var rows []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND phone_number LIKE ? ESCAPE '\\'", true, containsPattern(phone)).
		Order(directoryOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive counts active stores.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByZone counts active stores per zone number. Unzoned stores are
// excluded from the breakdown.
func (r *Repository) CountByZone(ctx context.Context) (map[int]int64, error) {
	type zoneCount struct {
		ZoneNumber int
		Total      int64
	}
	var rows []zoneCount
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Select("zone_number, COUNT(*) AS total").
		Where("is_active = ? AND zone_number IS NOT NULL", true).
		Group("zone_number").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.ZoneNumber] = row.Total
	}
	return counts, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// SoftDelete flips the active flag off, hiding the store from every
// public query while keeping the row.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("store_id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Purge permanently removes the store and its images in one transaction.
// The public URLs of the purged images are returned so the caller can
// clean up the files behind them.
func (r *Repository) Purge(ctx context.Context, id int64) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StoreImage{}).
			Where("store_id = ?", id).
			Pluck("image_url", &urls).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.StoreImage{}).Error; err != nil {
			return err
		}
		result := tx.Where("store_id = ?", id).Delete(&models.Store{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func containsPattern(term string) string {
	return "%" + escapeLike(term) + "%"
}

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally.
func escapeLike(term string) string {
	out := make([]byte, 0, len(term))
	for i := 0; i < len(term); i++ {
		switch term[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, term[i])
	}
	return string(out)
}
