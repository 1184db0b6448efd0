package models

import (
	"gorm.io/datatypes"
)

type Poll struct {
	BaseModel

	Question  string                      `json:"question"`
	Options   datatypes.JSONSlice[string] `json:"options"`
	Language  string                      `json:"language"`
	AccountID string                      `json:"account_id" gorm:"index;size:36"`

	Metric *PollMetric `json:"metric,omitempty" gorm:"-"`
}

type PollMetric struct {
	TotalVotes          int64     `json:"total_votes"`
	ByOptions           []int64   `json:"by_options"`
	ByOptionsPercentage []float64 `json:"by_options_percentage"`
}

// Vote is never updated after it is recorded.
// AccountID is nil for anonymous voters.
type Vote struct {
	BaseModel

	PollID      string  `json:"poll_id" gorm:"index;size:36"`
	AccountID   *string `json:"account_id" gorm:"index;size:36"`
	OptionIndex int     `json:"option_index"`
}
