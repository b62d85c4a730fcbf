package services

import (
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/internal/models"
	"stocktracker/internal/pagination"
)

// UserServicer is the credential store: identities and password hashes.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	VerifyUser(username, password string) (*models.User, error)
	TouchLastLogin(userID uint) error
	GetUserByID(userID uint) (*models.User, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.UserOverview], error)
}

// WatchlistServicer is the per-user watchlist ledger.
type WatchlistServicer interface {
	List(userID uint) ([]models.WatchlistEntry, error)
	Add(userID uint, symbol, name string) (*models.WatchlistEntry, error)
	Remove(userID uint, symbol string) error
	Reorder(userID uint, symbols []string) error
}

// PositionUpdate carries the optional fields of a partial position update.
type PositionUpdate struct {
	Quantity *decimal.Decimal
	BuyPrice *decimal.Decimal
}

// PortfolioSummary aggregates a user's positions against current prices.
// Positions whose symbol has no price are valued at cost and reported in
// StaleSymbols.
type PortfolioSummary struct {
	TotalInvested     decimal.Decimal `json:"total_invested"`
	CurrentValue      decimal.Decimal `json:"total_current"`
	ProfitLoss        decimal.Decimal `json:"total_profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"total_profit_loss_percent"`
	HoldingsCount     int             `json:"holdings_count"`
	StaleSymbols      []string        `json:"stale_symbols"`
}

// Valuation is a position enriched with derived market values. The price
// fields are nil when no current price was available.
type Valuation struct {
	models.PortfolioPosition
	InvestedValue     decimal.Decimal  `json:"invested_value"`
	CurrentPrice      *decimal.Decimal `json:"current_price,omitempty"`
	CurrentValue      *decimal.Decimal `json:"current_value,omitempty"`
	ProfitLoss        *decimal.Decimal `json:"profit_loss,omitempty"`
	ProfitLossPercent *decimal.Decimal `json:"profit_loss_percent,omitempty"`
}

// PortfolioServicer is the per-user portfolio ledger.
type PortfolioServicer interface {
	List(userID uint) ([]models.PortfolioPosition, error)
	Add(userID uint, symbol, name string, quantity, buyPrice decimal.Decimal, buyDate *time.Time) (*models.PortfolioPosition, error)
	Update(userID, positionID uint, update PositionUpdate) (*models.PortfolioPosition, error)
	Remove(userID, positionID uint) error
	Summary(userID uint, prices map[string]decimal.Decimal) (*PortfolioSummary, error)
}

// AuditFilter narrows an audit listing. Zero values match everything.
type AuditFilter struct {
	UserID uint   `form:"user_id"`
	Action string `form:"action" binding:"omitempty,max=32"`
}

// AuditServicer records and lists audit entries.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	List(filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
