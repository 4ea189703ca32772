package admins

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

// Repository handles admin-account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to admin operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new admin row.
func (r *Repository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// FindByUsername loads an active admin by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID loads an admin by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).
		Where("admin_id = ?", id).
		First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("admin_id = ?", id).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchLastLogin stamps a successful authentication.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("admin_id = ?", id).
		Update("last_login_at", at).Error
}
