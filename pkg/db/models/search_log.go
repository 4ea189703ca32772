package models

import "time"

// SearchLog is an append-only record of a visitor search. Rows are never
// mutated after insert.
type SearchLog struct {
	LogID         int64     `gorm:"column:log_id;primaryKey;autoIncrement" json:"log_id"`
	SearchKeyword *string   `gorm:"column:search_keyword;size:100;index" json:"search_keyword,omitempty"`
	SearchType    string    `gorm:"column:search_type;size:20" json:"search_type"`
	ResultCount   int       `gorm:"column:result_count;not null;default:0" json:"result_count"`
	SearchedAt    time.Time `gorm:"column:searched_at;autoCreateTime;index" json:"searched_at"`
}

func (SearchLog) TableName() string { return "search_logs" }
