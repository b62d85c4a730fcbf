// Package pricing looks up current market prices for ticker symbols.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSymbolNotFound is returned when the data source knows no such symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// Quote is the latest market data for one symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Volume        int64           `json:"volume"`
	Currency      string          `json:"currency,omitempty"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// newQuote derives change fields from price and previous close.
func newQuote(symbol string, price, prevClose float64, volume int64, currency string, now time.Time) *Quote {
	p := decimal.NewFromFloat(price)
	prev := decimal.NewFromFloat(prevClose)
	if prevClose <= 0 {
		prev = p
	}
	change := p.Sub(prev)
	pct := decimal.Zero
	if !prev.IsZero() {
		pct = change.Div(prev).Mul(decimal.NewFromInt(100))
	}
	return &Quote{
		Symbol:        symbol,
		Price:         p,
		PreviousClose: prev.Round(2),
		Change:        change.Round(2),
		ChangePercent: pct.Round(2),
		Volume:        volume,
		Currency:      currency,
		FetchedAt:     now,
	}
}

// FetchError describes a failed lookup for one symbol.
type FetchError struct {
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s: %v", e.Symbol, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// Provider fetches current market prices from an external data source.
type Provider interface {
	// Name returns the provider's display name (e.g., "Yahoo Finance").
	Name() string

	// Quote fetches the latest quote for symbol. Implementations must honour
	// ctx cancellation.
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// SearchResult is one listing matched by a symbol search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Searcher is implemented by providers that can look up symbols by name.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
