package models

import "time"

// MarketMap is the background image store coordinates are relative to.
type MarketMap struct {
	MapID       int64     `gorm:"column:map_id;primaryKey;autoIncrement" json:"map_id"`
	MapName     string    `gorm:"column:map_name;size:100;not null" json:"map_name"`
	MapImageURL string    `gorm:"column:map_image_url;size:500;not null" json:"map_image_url"`
	MapWidth    int       `gorm:"column:map_width;not null" json:"map_width"`
	MapHeight   int       `gorm:"column:map_height;not null" json:"map_height"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MarketMap) TableName() string { return "market_maps" }
