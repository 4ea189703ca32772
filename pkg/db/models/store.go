package models

import "time"

// Store is a single stall in the market, positioned on the active map image.
// Coordinates are pixels relative to that image, not geographic.
type Store struct {
	StoreID       int64     `gorm:"column:store_id;primaryKey;autoIncrement" json:"store_id"`
	StoreName     string    `gorm:"column:store_name;size:100;not null" json:"store_name"`
	StoreCode     *string   `gorm:"column:store_code;size:50" json:"store_code,omitempty"`
	ZoneNumber    *int      `gorm:"column:zone_number" json:"zone_number,omitempty"`
	PhoneNumber   *string   `gorm:"column:phone_number;size:20" json:"phone_number,omitempty"`
	Address       *string   `gorm:"column:address;size:255" json:"address,omitempty"`
	DetailAddress *string   `gorm:"column:detail_address;size:100" json:"detail_address,omitempty"`
	XCoordinate   int       `gorm:"column:x_coordinate;not null" json:"x_coordinate"`
	YCoordinate   int       `gorm:"column:y_coordinate;not null" json:"y_coordinate"`
	MarkerRadius  int       `gorm:"column:marker_radius;not null;default:10" json:"marker_radius"`
	BusinessHours *string   `gorm:"column:business_hours;size:200" json:"business_hours,omitempty"`
	Description   *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedBy     *int64    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Store) TableName() string { return "stores" }
