package models

import "time"

type Account struct {
	BaseModel

	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"is_admin"`
}

type Session struct {
	BaseModel

	AccountID string    `json:"account_id" gorm:"index;size:36"`
	ExpiredAt time.Time `json:"expired_at"`
}
