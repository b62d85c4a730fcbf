package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// MaxSignificantDigits is the precision a quantity or price keeps through a
// SQLite NUMERIC column, which holds non-integers as 8-byte floats.
const MaxSignificantDigits = 15

// fitsPrecision reports whether d survives storage unchanged.
func fitsPrecision(d decimal.Decimal) bool {
	digits := strings.TrimRight(d.Coefficient().String(), "0")
	return len(strings.TrimPrefix(digits, "-")) <= MaxSignificantDigits
}

// checkAmounts validates an optional quantity and buy price.
func checkAmounts(quantity, buyPrice *decimal.Decimal) error {
	if quantity != nil {
		if !quantity.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
		}
		if !fitsPrecision(*quantity) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity has more than 15 significant digits")
		}
	}
	if buyPrice != nil {
		if !buyPrice.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Buy price must be positive")
		}
		if !fitsPrecision(*buyPrice) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Buy price has more than 15 significant digits")
		}
	}
	return nil
}

// portfolioService handles portfolio business logic.
type portfolioService struct {
	db *gorm.DB
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB) PortfolioServicer {
	return &portfolioService{db: db}
}

// List returns the user's positions, most recently added first.
func (s *portfolioService) List(userID uint) ([]models.PortfolioPosition, error) {
	positions := []models.PortfolioPosition{}
	if err := s.db.Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return positions, nil
}

// Add records a new position. Quantity and buy price must both be positive
// and fit in MaxSignificantDigits.
func (s *portfolioService) Add(userID uint, symbol, name string, quantity, buyPrice decimal.Decimal, buyDate *time.Time) (*models.PortfolioPosition, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol required")
	}
	if err := checkAmounts(&quantity, &buyPrice); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = symbol
	}

	pos := &models.PortfolioPosition{
		UserID:   userID,
		Symbol:   symbol,
		Name:     name,
		Quantity: quantity,
		BuyPrice: buyPrice,
		BuyDate:  buyDate,
	}
	if err := s.db.Create(pos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pos, nil
}

// Update changes quantity and/or buy price of a position owned by the user.
func (s *portfolioService) Update(userID, positionID uint, update PositionUpdate) (*models.PortfolioPosition, error) {
	if update.Quantity == nil && update.BuyPrice == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Nothing to update")
	}
	if err := checkAmounts(update.Quantity, update.BuyPrice); err != nil {
		return nil, err
	}

	var pos models.PortfolioPosition
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.loadOwned(tx, userID, positionID, &pos); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if update.Quantity != nil {
			updates["quantity"] = *update.Quantity
			pos.Quantity = *update.Quantity
		}
		if update.BuyPrice != nil {
			updates["buy_price"] = *update.BuyPrice
			pos.BuyPrice = *update.BuyPrice
		}

		if err := tx.Model(&pos).
			Where("user_id = ?", userID).
			Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// Remove deletes a position owned by the user.
func (s *portfolioService) Remove(userID, positionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var pos models.PortfolioPosition
		if err := s.loadOwned(tx, userID, positionID, &pos); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", positionID, userID).
			Delete(&models.PortfolioPosition{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// loadOwned reads a position and distinguishes a missing row from one that
// belongs to someone else.
func (s *portfolioService) loadOwned(tx *gorm.DB, userID, positionID uint, pos *models.PortfolioPosition) error {
	if err := tx.First(pos, positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPositionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if pos.UserID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}

// Summary totals the user's positions against prices keyed by symbol.
func (s *portfolioService) Summary(userID uint, prices map[string]decimal.Decimal) (*PortfolioSummary, error) {
	positions, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	return Summarize(positions, prices), nil
}

// Summarize computes totals over positions. A position without a price is
// valued at cost and its symbol is reported once in StaleSymbols.
func Summarize(positions []models.PortfolioPosition, prices map[string]decimal.Decimal) *PortfolioSummary {
	invested := decimal.Zero
	current := decimal.Zero
	stale := map[string]bool{}

	for i := range positions {
		p := &positions[i]
		cost := p.Invested()
		invested = invested.Add(cost)

		price, ok := prices[p.Symbol]
		if !ok {
			current = current.Add(cost)
			stale[p.Symbol] = true
			continue
		}
		current = current.Add(p.Quantity.Mul(price))
	}

	pl := current.Sub(invested)
	pct := decimal.Zero
	if !invested.IsZero() {
		pct = pl.Div(invested).Mul(hundred)
	}

	staleSymbols := make([]string, 0, len(stale))
	for sym := range stale {
		staleSymbols = append(staleSymbols, sym)
	}
	sort.Strings(staleSymbols)

	return &PortfolioSummary{
		TotalInvested:     invested.Round(2),
		CurrentValue:      current.Round(2),
		ProfitLoss:        pl.Round(2),
		ProfitLossPercent: pct.Round(2),
		HoldingsCount:     len(positions),
		StaleSymbols:      staleSymbols,
	}
}

// Valuate derives per-position market values. Positions without a price
// carry only their invested value.
func Valuate(positions []models.PortfolioPosition, prices map[string]decimal.Decimal) []Valuation {
	out := make([]Valuation, 0, len(positions))
	for _, p := range positions {
		v := Valuation{
			PortfolioPosition: p,
			InvestedValue:     p.Invested().Round(2),
		}
		if price, ok := prices[p.Symbol]; ok {
			invested := p.Invested()
			value := p.Quantity.Mul(price)
			pl := value.Sub(invested)
			pct := decimal.Zero
			if !invested.IsZero() {
				pct = pl.Div(invested).Mul(hundred)
			}
			quoted := price.Round(2)
			value = value.Round(2)
			pl = pl.Round(2)
			pct = pct.Round(2)
			v.CurrentPrice = &quoted
			v.CurrentValue = &value
			v.ProfitLoss = &pl
			v.ProfitLossPercent = &pct
		}
		out = append(out, v)
	}
	return out
}
