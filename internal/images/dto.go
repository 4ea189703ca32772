package images

import (
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/enums"
)

// ImageDTO is the API-facing shape of a store image record.
type ImageDTO struct {
	ID           int64           `json:"id"`
	StoreID      int64           `json:"store_id"`
	URL          string          `json:"url"`
	Type         enums.ImageType `json:"type"`
	DisplayOrder int             `json:"display_order"`
	UploadedAt   time.Time       `json:"uploaded_at"`
}

// FromModel maps the persisted image into a DTO.
func FromModel(m *models.StoreImage) *ImageDTO {
	if m == nil {
		return nil
	}
	return &ImageDTO{
		ID:           m.ImageID,
		StoreID:      m.StoreID,
		URL:          m.ImageURL,
		Type:         m.ImageType,
		DisplayOrder: m.DisplayOrder,
		UploadedAt:   m.UploadedAt,
	}
}

// FromModels maps a slice of image rows preserving order.
func FromModels(rows []models.StoreImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
