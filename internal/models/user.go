package models

import "time"

// User is a registered account. Password holds the bcrypt hash only.
type User struct {
	Base
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"column:password_hash;not null" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserOverview is a user row with ledger counts, as listed to administrators.
type UserOverview struct {
	ID             uint       `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	WatchlistCount int64      `json:"watchlist_count"`
	PortfolioCount int64      `json:"portfolio_count"`
}
