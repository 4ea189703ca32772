// Package maps manages the background market-map images store
// coordinates are drawn against.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
)

// MapDTO is the API-facing shape of a market map.
type MapDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMapDTO holds creation-time data for a market map.
type CreateMapDTO struct {
	Name     string
	ImageURL string
	Width    int
	Height   int
}

// Repository handles market-map persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to market-map operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new map row, active by default.
func (r *Repository) Create(ctx context.Context, m *models.MarketMap) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// List returns every map, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.MarketMap, error) {
	var rows []models.MarketMap
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, map_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Active returns the single active map. When several maps are flagged
// active the first-created one wins.
func (r *Repository) Active(ctx context.Context) (*models.MarketMap, error) {
	var m models.MarketMap
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, map_id ASC").
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetActive flips the active flag of one map.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.MarketMap{}).
		Where("map_id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type mapRepository interface {
	Create(ctx context.Context, m *models.MarketMap) error
	List(ctx context.Context) ([]models.MarketMap, error)
	Active(ctx context.Context) (*models.MarketMap, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service exposes market-map operations.
type Service interface {
	Create(ctx context.Context, dto CreateMapDTO) (*MapDTO, error)
	List(ctx context.Context) ([]MapDTO, error)
	ActiveMap(ctx context.Context) (*MapDTO, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type service struct {
	repo mapRepository
}

// NewService builds the market-map service.
func NewService(repo mapRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("map repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dto CreateMapDTO) (*MapDTO, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "map name is required")
	}
	if dto.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "map image url is required")
	}
	if dto.Width <= 0 || dto.Height <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "map dimensions must be positive")
	}

	m := &models.MarketMap{
		MapName:     dto.Name,
		MapImageURL: dto.ImageURL,
		MapWidth:    dto.Width,
		MapHeight:   dto.Height,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create map")
	}
	return fromModel(m), nil
}

func (s *service) List(ctx context.Context) ([]MapDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list maps")
	}
	out := make([]MapDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ActiveMap(ctx context.Context) (*MapDTO, error) {
	m, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active map")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active map")
	}
	return fromModel(m), nil
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "map not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update map")
	}
	return nil
}

func fromModel(m *models.MarketMap) *MapDTO {
	return &MapDTO{
		ID:        m.MapID,
		Name:      m.MapName,
		ImageURL:  m.MapImageURL,
		Width:     m.MapWidth,
		Height:    m.MapHeight,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}
