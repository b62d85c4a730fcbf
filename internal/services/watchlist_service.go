package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/models"
)

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// watchlistService handles watchlist business logic.
type watchlistService struct {
	db *gorm.DB
}

// NewWatchlistService creates a new WatchlistServicer.
func NewWatchlistService(db *gorm.DB) WatchlistServicer {
	return &watchlistService{db: db}
}

// List returns the user's watchlist in display order.
func (s *watchlistService) List(userID uint) ([]models.WatchlistEntry, error) {
	entries := []models.WatchlistEntry{}
	if err := s.db.Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// Add appends a symbol to the end of the user's watchlist.
func (s *watchlistService) Add(userID uint, symbol, name string) (*models.WatchlistEntry, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = symbol
	}

	var entry *models.WatchlistEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.WatchlistEntry{}).
			Where("user_id = ? AND symbol = ?", userID, symbol).
			Count(&exists).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if exists > 0 {
			return apperrors.ErrAlreadyWatched
		}

		var next struct{ N int }
		if err := tx.Model(&models.WatchlistEntry{}).
			Select("COALESCE(MAX(sort_order) + 1, 0) AS n").
			Where("user_id = ?", userID).
			Scan(&next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		entry = &models.WatchlistEntry{
			UserID:    userID,
			Symbol:    symbol,
			Name:      name,
			SortOrder: next.N,
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrAlreadyWatched
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes a symbol from the user's watchlist.
func (s *watchlistService) Remove(userID uint, symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol required")
	}

	res := s.db.Where("user_id = ? AND symbol = ?", userID, symbol).Delete(&models.WatchlistEntry{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWatchNotFound
	}
	return nil
}

// Reorder moves the given symbols to the front of the watchlist in the given
// order. Symbols not listed keep their relative order behind them. Either
// every listed symbol is owned by the user and the whole order is rewritten,
// or nothing changes.
func (s *watchlistService) Reorder(userID uint, symbols []string) error {
	if len(symbols) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbols required")
	}

	wanted := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = NormalizeSymbol(sym)
		if sym == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol required")
		}
		if seen[sym] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Duplicate symbol "+sym)
		}
		seen[sym] = true
		wanted = append(wanted, sym)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var current []models.WatchlistEntry
		if err := tx.Where("user_id = ?", userID).
			Order("sort_order ASC, id ASC").
			Find(&current).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		byID := make(map[string]uint, len(current))
		for _, e := range current {
			byID[e.Symbol] = e.ID
		}

		order := make([]uint, 0, len(current))
		for _, sym := range wanted {
			id, ok := byID[sym]
			if !ok {
				return apperrors.WithMessage(apperrors.ErrWatchNotFound, sym+" is not in your watchlist")
			}
			order = append(order, id)
		}
		for _, e := range current {
			if !seen[e.Symbol] {
				order = append(order, e.ID)
			}
		}

		for pos, id := range order {
			if err := tx.Model(&models.WatchlistEntry{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort_order", pos).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}
