package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/internal/testutil"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeProvider serves fixed prices and counts calls per symbol.
type fakeProvider struct {
	mu     sync.Mutex
	prices map[string]string
	calls  map[string]int
	delay  time.Duration
	gate   chan struct{}
	active atomic.Int32
	peak   atomic.Int32
}

func newFakeProvider(prices map[string]string) *fakeProvider {
	return &fakeProvider{prices: prices, calls: map[string]int{}}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[symbol]++
	price, ok := f.prices[symbol]
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, &FetchError{Symbol: symbol, Err: ctx.Err()}
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &FetchError{Symbol: symbol, Err: ctx.Err()}
		}
	}
	if !ok {
		return nil, &FetchError{Symbol: symbol, Err: ErrSymbolNotFound}
	}
	if price == "fail" {
		return nil, &FetchError{Symbol: symbol, Err: errors.New("boom")}
	}
	return &Quote{Symbol: symbol, Price: dec(price)}, nil
}

func (f *fakeProvider) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func TestServiceQuote(t *testing.T) {
	t.Run("normalizes_symbol", func(t *testing.T) {
		svc := NewService(newFakeProvider(map[string]string{"AAPL": "180"}), nil, time.Second)

		q, err := svc.Quote(context.Background(), " aapl ")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "price", q.Price, "180")
	})

	t.Run("empty_symbol", func(t *testing.T) {
		svc := NewService(newFakeProvider(nil), nil, time.Second)
		_, err := svc.Quote(context.Background(), " ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_symbol", func(t *testing.T) {
		svc := NewService(newFakeProvider(map[string]string{}), nil, time.Second)
		_, err := svc.Quote(context.Background(), "NOPE")
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})

	t.Run("upstream_failure", func(t *testing.T) {
		svc := NewService(newFakeProvider(map[string]string{"BAD": "fail"}), nil, time.Second)
		_, err := svc.Quote(context.Background(), "BAD")
		testutil.AssertAppError(t, err, "UPSTREAM_UNAVAILABLE")
	})

	t.Run("timeout", func(t *testing.T) {
		p := newFakeProvider(map[string]string{"SLOW": "1"})
		p.delay = time.Second
		svc := NewService(p, nil, 30*time.Millisecond)

		start := time.Now()
		_, err := svc.Quote(context.Background(), "SLOW")
		testutil.AssertAppError(t, err, "UPSTREAM_TIMEOUT")
		if time.Since(start) > 500*time.Millisecond {
			t.Errorf("timeout not enforced, took %v", time.Since(start))
		}
	})

	t.Run("cached", func(t *testing.T) {
		p := newFakeProvider(map[string]string{"AAPL": "180"})
		svc := NewService(p, NewMemoryCache(time.Minute), time.Second)

		for i := 0; i < 3; i++ {
			_, err := svc.Quote(context.Background(), "AAPL")
			testutil.AssertNoError(t, err)
		}
		if got := p.callCount("AAPL"); got != 1 {
			t.Errorf("provider called %d times, want 1", got)
		}
	})

	t.Run("concurrent_lookups_collapse", func(t *testing.T) {
		p := newFakeProvider(map[string]string{"AAPL": "180"})
		p.gate = make(chan struct{})
		svc := NewService(p, nil, time.Second)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.Quote(context.Background(), "AAPL"); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(p.gate)
		wg.Wait()

		if got := p.callCount("AAPL"); got != 1 {
			t.Errorf("provider called %d times, want 1", got)
		}
	})
}

func TestServiceQuotes(t *testing.T) {
	t.Run("per_symbol_results", func(t *testing.T) {
		p := newFakeProvider(map[string]string{"AAPL": "180", "MSFT": "400", "BAD": "fail"})
		svc := NewService(p, nil, time.Second)

		res := svc.Quotes(context.Background(), []string{"AAPL", "msft", "BAD", "NOPE", "AAPL", ""})
		if len(res) != 4 {
			t.Fatalf("expected 4 results, got %d", len(res))
		}
		if res["AAPL"].Err != nil || res["MSFT"].Err != nil {
			t.Errorf("unexpected errors: %v / %v", res["AAPL"].Err, res["MSFT"].Err)
		}
		testutil.AssertAppError(t, res["BAD"].Err, "UPSTREAM_UNAVAILABLE")
		testutil.AssertAppError(t, res["NOPE"].Err, "NOT_FOUND")
	})

	t.Run("bounded_concurrency", func(t *testing.T) {
		prices := map[string]string{}
		symbols := []string{}
		for _, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
			prices[s] = "1"
			symbols = append(symbols, s)
		}
		p := newFakeProvider(prices)
		p.delay = 20 * time.Millisecond
		svc := NewService(p, nil, time.Second)
		svc.maxConcurrent = 3

		res := svc.Quotes(context.Background(), symbols)
		if len(res) != len(symbols) {
			t.Fatalf("expected %d results, got %d", len(symbols), len(res))
		}
		if peak := p.peak.Load(); peak > 3 {
			t.Errorf("peak concurrency %d exceeds limit 3", peak)
		}
	})
}

func TestServicePrices(t *testing.T) {
	p := newFakeProvider(map[string]string{"AAPL": "180", "BAD": "fail"})
	svc := NewService(p, nil, time.Second)

	prices := svc.Prices(context.Background(), []string{"AAPL", "BAD"})
	if len(prices) != 1 {
		t.Fatalf("expected only AAPL priced, got %v", prices)
	}
	testutil.AssertDecimal(t, "AAPL", prices["AAPL"], "180")
}

// searchProvider adds canned search results to fakeProvider.
type searchProvider struct {
	*fakeProvider
	results []SearchResult
	err     error
	query   string
}

func (p *searchProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	p.query = query
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.results, p.err
}

func TestServiceSearch(t *testing.T) {
	listings := []SearchResult{
		{Symbol: "RELIANCE.NS", Name: "Reliance Industries", Exchange: "NSE"},
		{Symbol: "RELIANCE.BO", Name: "Reliance Industries", Exchange: "BSE"},
		{Symbol: "reliance.ns", Name: "Reliance Industries", Exchange: "NSE"},
		{Symbol: "RELI", Name: "Reliance Global", Exchange: "NASDAQ"},
	}

	t.Run("dedupes_and_keeps_order", func(t *testing.T) {
		p := &searchProvider{fakeProvider: newFakeProvider(nil), results: listings}
		svc := NewService(p, nil, time.Second)

		got, err := svc.Search(context.Background(), "  reliance ", "")
		testutil.AssertNoError(t, err)
		if p.query != "reliance" {
			t.Errorf("provider got query %q", p.query)
		}
		want := []string{"RELIANCE.NS", "RELIANCE.BO", "RELI"}
		if len(got) != len(want) {
			t.Fatalf("expected %d results, got %v", len(want), got)
		}
		for i, sym := range want {
			if got[i].Symbol != sym {
				t.Errorf("result %d = %s, want %s", i, got[i].Symbol, sym)
			}
		}
	})

	t.Run("filters_by_exchange_suffix", func(t *testing.T) {
		p := &searchProvider{fakeProvider: newFakeProvider(nil), results: listings}
		svc := NewService(p, nil, time.Second)

		got, err := svc.Search(context.Background(), "reliance", ".bo")
		testutil.AssertNoError(t, err)
		if len(got) != 1 || got[0].Symbol != "RELIANCE.BO" {
			t.Errorf("expected only RELIANCE.BO, got %v", got)
		}
	})

	t.Run("caps_results", func(t *testing.T) {
		many := make([]SearchResult, 0, 15)
		for i := 0; i < 15; i++ {
			many = append(many, SearchResult{Symbol: "S" + string(rune('A'+i)), Name: "n"})
		}
		p := &searchProvider{fakeProvider: newFakeProvider(nil), results: many}
		svc := NewService(p, nil, time.Second)

		got, err := svc.Search(context.Background(), "s", "")
		testutil.AssertNoError(t, err)
		if len(got) != maxSearchResults {
			t.Errorf("expected %d results, got %d", maxSearchResults, len(got))
		}
	})

	t.Run("empty_query", func(t *testing.T) {
		svc := NewService(&searchProvider{fakeProvider: newFakeProvider(nil)}, nil, time.Second)
		_, err := svc.Search(context.Background(), "  ", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("provider_without_search", func(t *testing.T) {
		svc := NewService(newFakeProvider(nil), nil, time.Second)
		_, err := svc.Search(context.Background(), "apple", "")
		testutil.AssertAppError(t, err, "UPSTREAM_UNAVAILABLE")
	})

	t.Run("upstream_failure", func(t *testing.T) {
		p := &searchProvider{fakeProvider: newFakeProvider(nil), err: errors.New("boom")}
		svc := NewService(p, nil, time.Second)
		_, err := svc.Search(context.Background(), "apple", "")
		testutil.AssertAppError(t, err, "UPSTREAM_UNAVAILABLE")
	})

	t.Run("timeout", func(t *testing.T) {
		slow := newFakeProvider(nil)
		slow.delay = time.Second
		svc := NewService(&searchProvider{fakeProvider: slow}, nil, 20*time.Millisecond)
		_, err := svc.Search(context.Background(), "apple", "")
		testutil.AssertAppError(t, err, "UPSTREAM_TIMEOUT")
	})
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit_and_miss", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		q, err := c.Get(ctx, "AAPL")
		if err != nil || q != nil {
			t.Fatalf("expected miss, got %v %v", q, err)
		}
		testutil.AssertNoError(t, c.Set(ctx, &Quote{Symbol: "AAPL", Price: dec("1")}))
		q, err = c.Get(ctx, "AAPL")
		testutil.AssertNoError(t, err)
		if q == nil || !q.Price.Equal(dec("1")) {
			t.Errorf("expected cached quote, got %v", q)
		}
	})

	t.Run("expires", func(t *testing.T) {
		c := NewMemoryCache(10 * time.Millisecond)
		testutil.AssertNoError(t, c.Set(ctx, &Quote{Symbol: "AAPL", Price: dec("1")}))
		time.Sleep(30 * time.Millisecond)
		if q, _ := c.Get(ctx, "AAPL"); q != nil {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("zero_ttl_disables", func(t *testing.T) {
		c := NewMemoryCache(0)
		testutil.AssertNoError(t, c.Set(ctx, &Quote{Symbol: "AAPL", Price: dec("1")}))
		if q, _ := c.Get(ctx, "AAPL"); q != nil {
			t.Error("expected no caching with zero ttl")
		}
	})
}
