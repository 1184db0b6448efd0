package models

// PollFlag is a report filed against a poll, one per account.
type PollFlag struct {
	BaseModel

	PollID    string `json:"poll_id" gorm:"uniqueIndex:idx_poll_flag_account;size:36"`
	AccountID string `json:"account_id" gorm:"index;uniqueIndex:idx_poll_flag_account;size:36"`
}

type FlaggedPoll struct {
	Poll
	FlagCount int64 `json:"flag_count"`
}
