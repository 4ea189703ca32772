package stores

import (
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

// StoreDTO is the API-facing shape of a store record.
type StoreDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Code          *string   `json:"code,omitempty"`
	ZoneNumber    *int      `json:"zone_number,omitempty"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	Address       *string   `json:"address,omitempty"`
	DetailAddress *string   `json:"detail_address,omitempty"`
	X             int       `json:"x"`
	Y             int       `json:"y"`
	MarkerRadius  int       `json:"marker_radius"`
	BusinessHours *string   `json:"business_hours,omitempty"`
	Description   *string   `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	Name          string
	Code          *string
	ZoneNumber    *int
	PhoneNumber   *string
	Address       *string
	DetailAddress *string
	X             int
	Y             int
	MarkerRadius  *int
	BusinessHours *string
	Description   *string
	CreatedBy     *int64
}

// ToModel maps the creation payload into a persistable store row.
func (d CreateStoreDTO) ToModel() *models.Store {
	store := &models.Store{
		StoreName:     d.Name,
		StoreCode:     d.Code,
		ZoneNumber:    d.ZoneNumber,
		PhoneNumber:   d.PhoneNumber,
		Address:       d.Address,
		DetailAddress: d.DetailAddress,
		XCoordinate:   d.X,
		YCoordinate:   d.Y,
		MarkerRadius:  10,
		BusinessHours: d.BusinessHours,
		Description:   d.Description,
		IsActive:      true,
		CreatedBy:     d.CreatedBy,
	}
	if d.MarkerRadius != nil {
		store.MarkerRadius = *d.MarkerRadius
	}
	return store
}

// UpdateStoreInput captures the store fields an admin may change.
// Nil pointers leave the current value untouched.
type UpdateStoreInput struct {
	Name          *string
	Code          *string
	ZoneNumber    *int
	PhoneNumber   *string
	Address       *string
	DetailAddress *string
	X             *int
	Y             *int
	MarkerRadius  *int
	BusinessHours *string
	Description   *string
}

// StatsDTO summarizes the active catalog for the admin dashboard.
type StatsDTO struct {
	TotalActive   int64         `json:"total_active"`
	CountByZone   map[int]int64 `json:"count_by_zone"`
	SearchesToday int64         `json:"searches_today"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:            m.StoreID,
		Name:          m.StoreName,
		Code:          m.StoreCode,
		ZoneNumber:    m.ZoneNumber,
		PhoneNumber:   m.PhoneNumber,
		Address:       m.Address,
		DetailAddress: m.DetailAddress,
		X:             m.XCoordinate,
		Y:             m.YCoordinate,
		MarkerRadius:  m.MarkerRadius,
		BusinessHours: m.BusinessHours,
		Description:   m.Description,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromModels maps a slice of store rows preserving order.
func FromModels(rows []models.Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
