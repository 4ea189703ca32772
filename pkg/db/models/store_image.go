package models

import (
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/enums"
)

// StoreImage belongs to exactly one store. Display order is scoped per store,
// ties broken by insertion.
type StoreImage struct {
	ImageID      int64           `gorm:"column:image_id;primaryKey;autoIncrement" json:"image_id"`
	StoreID      int64           `gorm:"column:store_id;not null;index" json:"store_id"`
	ImageURL     string          `gorm:"column:image_url;size:500;not null" json:"image_url"`
	ImageType    enums.ImageType `gorm:"column:image_type;size:10;not null;default:'SUB'" json:"image_type"`
	DisplayOrder int             `gorm:"column:display_order;not null;default:0" json:"display_order"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	UploadedAt   time.Time       `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

func (StoreImage) TableName() string { return "store_images" }
