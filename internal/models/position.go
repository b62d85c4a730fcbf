package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioPosition is an owned lot of a single symbol. Profit and loss are
// always derived from a current price and never stored.
type PortfolioPosition struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"-"`
	Symbol    string          `gorm:"not null" json:"symbol"`
	Name      string          `gorm:"not null" json:"name"`
	Quantity  decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	BuyPrice  decimal.Decimal `gorm:"type:numeric;not null" json:"buy_price"`
	BuyDate   *time.Time      `json:"buy_date,omitempty"`
	AddedAt   time.Time       `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name used by the original schema.
func (PortfolioPosition) TableName() string { return "portfolio" }

// Invested returns quantity × buy price.
func (p *PortfolioPosition) Invested() decimal.Decimal {
	return p.Quantity.Mul(p.BuyPrice)
}
