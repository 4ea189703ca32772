package searchlogs

import (
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

// SearchLogDTO is the API-facing shape of one logged search.
type SearchLogDTO struct {
	ID          int64     `json:"id"`
	Keyword     *string   `json:"keyword,omitempty"`
	SearchType  string    `json:"search_type"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// SearchLogPageDTO is one page of the admin log listing.
type SearchLogPageDTO struct {
	Items      []SearchLogDTO `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// KeywordStatDTO pairs a keyword with its occurrence count.
type KeywordStatDTO struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// TypeStatDTO pairs a search type with its occurrence count.
type TypeStatDTO struct {
	SearchType string `json:"search_type"`
	Count      int64  `json:"count"`
}

// FromModel maps the persisted log entry into a DTO.
func FromModel(m *models.SearchLog) *SearchLogDTO {
	if m == nil {
		return nil
	}
	return &SearchLogDTO{
		ID:          m.LogID,
		Keyword:     m.SearchKeyword,
		SearchType:  m.SearchType,
		ResultCount: m.ResultCount,
		SearchedAt:  m.SearchedAt,
	}
}

// FromModels maps a slice of log rows preserving order.
func FromModels(rows []models.SearchLog) []SearchLogDTO {
	out := make([]SearchLogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
