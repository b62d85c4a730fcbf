package models

import "time"

// WatchlistEntry is a ticker symbol tracked by one user.
// (UserID, Symbol) is unique.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watchlists_user_symbol" json:"-"`
	Symbol    string    `gorm:"not null;uniqueIndex:idx_watchlists_user_symbol" json:"symbol"`
	Name      string    `gorm:"not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name used by the original schema.
func (WatchlistEntry) TableName() string { return "watchlists" }
