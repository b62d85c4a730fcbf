package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultConcurrent = 8
	maxSearchResults  = 10
)

// Result is the outcome of a lookup for one symbol inside a batch.
type Result struct {
	Quote *Quote
	Err   error
}

// Service wraps a Provider with a per-lookup timeout, a cache and
// de-duplication of identical in-flight lookups.
type Service struct {
	provider      Provider
	cache         Cache
	timeout       time.Duration
	maxConcurrent int
	sf            singleflight.Group
}

// NewService creates a Service. A nil cache disables caching.
func NewService(p Provider, c Cache, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{provider: p, cache: c, timeout: timeout, maxConcurrent: defaultConcurrent}
}

// Quote returns the current quote for symbol. Failures are mapped to
// NOT_FOUND, UPSTREAM_TIMEOUT or UPSTREAM_UNAVAILABLE.
func (s *Service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol required")
	}

	if s.cache != nil {
		if q, err := s.cache.Get(ctx, symbol); err == nil && q != nil {
			return q, nil
		} else if err != nil {
			logger.Named("pricing").Warnw("quote cache read failed", "symbol", symbol, "error", err)
		}
	}

	ch := s.sf.DoChan(symbol, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		q, err := s.provider.Quote(fetchCtx, symbol)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(fetchCtx, q); err != nil {
				logger.Named("pricing").Warnw("quote cache write failed", "symbol", symbol, "error", err)
			}
		}
		return q, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.ErrUpstreamTimeout, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, classify(symbol, res.Err)
		}
		return res.Val.(*Quote), nil
	}
}

// Quotes looks up every distinct symbol concurrently. Each symbol gets its
// own Result; one failure never affects the others.
func (s *Service) Quotes(ctx context.Context, symbols []string) map[string]Result {
	unique := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		unique = append(unique, sym)
	}

	results := make([]Result, len(unique))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, sym := range unique {
		i, sym := i, sym
		g.Go(func() error {
			q, err := s.Quote(ctx, sym)
			results[i] = Result{Quote: q, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Result, len(unique))
	for i, sym := range unique {
		out[sym] = results[i]
	}
	return out
}

// Prices returns the current price of every symbol that could be priced.
// Symbols that failed are simply absent.
func (s *Service) Prices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(symbols))
	for sym, r := range s.Quotes(ctx, symbols) {
		if r.Err != nil {
			logger.Named("pricing").Debugw("price unavailable", "symbol", sym, "error", r.Err)
			continue
		}
		prices[sym] = r.Quote.Price
	}
	return prices
}

// Search looks up listings matching query. A non-empty exchange keeps only
// symbols with that suffix, so "NS" keeps RELIANCE.NS. Results are unique by
// symbol and capped at ten.
func (s *Service) Search(ctx context.Context, query, exchange string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Query required")
	}
	searcher, ok := s.provider.(Searcher)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrUpstreamUnavailable, s.provider.Name()+" does not support search")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	found, err := searcher.Search(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(apperrors.ErrUpstreamTimeout, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}

	suffix := ""
	if exchange = strings.Trim(strings.ToUpper(strings.TrimSpace(exchange)), "."); exchange != "" {
		suffix = "." + exchange
	}

	results := make([]SearchResult, 0, maxSearchResults)
	seen := make(map[string]bool, len(found))
	for _, r := range found {
		sym := strings.ToUpper(r.Symbol)
		if seen[sym] || (suffix != "" && !strings.HasSuffix(sym, suffix)) {
			continue
		}
		seen[sym] = true
		r.Symbol = sym
		results = append(results, r)
		if len(results) == maxSearchResults {
			break
		}
	}
	return results, nil
}

func classify(symbol string, err error) error {
	switch {
	case errors.Is(err, ErrSymbolNotFound):
		return apperrors.WithMessage(apperrors.ErrNotFound, "Unknown symbol "+symbol)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrUpstreamTimeout, err)
	default:
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}
}
