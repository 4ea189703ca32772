package images

import (
	"context"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

// Repository handles store-image persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to image operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists one image row.
func (r *Repository) Create(ctx context.Context, image *models.StoreImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// FindByID loads one image row.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.StoreImage, error) {
	var image models.StoreImage
	if err := r.db.WithContext(ctx).
		Where("image_id = ?", id).
		First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ListByStore returns a store's active images in display order, with
// insertion order breaking ties.
func (r *Repository) ListByStore(ctx context.Context, storeID int64) ([]models.StoreImage, error) {
	var rows []models.StoreImage
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Order("display_order ASC, image_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// NextDisplayOrder returns the display order for the next image of a
// store, continuing after the current maximum.
func (r *Repository) NextDisplayOrder(ctx context.Context, storeID int64) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.StoreImage{}).
		Where("store_id = ?", storeID).
		Select("MAX(display_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// Delete removes the image row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("image_id = ?", id).Delete(&models.StoreImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
