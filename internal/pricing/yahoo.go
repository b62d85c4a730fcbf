package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	yahooChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooQuoteURL  = "https://query2.finance.yahoo.com/v7/finance/quote"
	yahooSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"
	yahooUA        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// yahooChartResponse is the v8 chart API response, reduced to the meta block.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				Currency            string  `json:"currency"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooQuoteResponse is the v7 quote API response.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			Currency                   string  `json:"currency"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// yahooSearchResponse is the v1 search API response.
type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// YahooProvider fetches quotes from Yahoo Finance. The v8 chart endpoint is
// tried first; the v7 quote endpoint is the fallback.
type YahooProvider struct {
	httpClient *http.Client
	chartURL   string // overridable for tests
	quoteURL   string // overridable for tests
	searchURL  string // overridable for tests
}

// NewYahooProvider creates a new Yahoo Finance price provider.
func NewYahooProvider(httpClient *http.Client) *YahooProvider {
	return &YahooProvider{
		httpClient: httpClient,
		chartURL:   yahooChartURL,
		quoteURL:   yahooQuoteURL,
		searchURL:  yahooSearchURL,
	}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// Quote fetches the latest quote for symbol.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	q, chartErr := p.fetchChart(ctx, symbol)
	if chartErr == nil {
		return q, nil
	}
	if ctx.Err() != nil {
		return nil, &FetchError{Symbol: symbol, Err: ctx.Err()}
	}

	q, quoteErr := p.fetchQuote(ctx, symbol)
	if quoteErr == nil {
		return q, nil
	}
	if errors.Is(chartErr, ErrSymbolNotFound) && errors.Is(quoteErr, ErrSymbolNotFound) {
		return nil, &FetchError{Symbol: symbol, Err: ErrSymbolNotFound}
	}
	return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("chart: %w; quote: %v", chartErr, quoteErr)}
}

// fetchChart reads the quote from the v8 chart meta block.
func (p *YahooProvider) fetchChart(ctx context.Context, symbol string) (*Quote, error) {
	u := p.chartURL + "/" + url.PathEscape(symbol) + "?interval=1d&range=2d"

	var chartResp yahooChartResponse
	status, err := p.getJSON(ctx, u, &chartResp)
	if err != nil {
		return nil, err
	}
	if chartResp.Chart.Error != nil {
		if status == http.StatusNotFound || chartResp.Chart.Error.Code == "Not Found" {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("chart error: %s: %s", chartResp.Chart.Error.Code, chartResp.Chart.Error.Description)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	meta := chartResp.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	if price <= 0 {
		price = meta.PreviousClose
	}
	if price <= 0 {
		return nil, fmt.Errorf("zero price for %s", symbol)
	}
	prev := meta.PreviousClose
	if prev <= 0 {
		prev = meta.ChartPreviousClose
	}
	return newQuote(symbol, price, prev, meta.RegularMarketVolume, meta.Currency, time.Now().UTC()), nil
}

// fetchQuote reads the quote from the v7 quote endpoint.
func (p *YahooProvider) fetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	u := p.quoteURL + "?symbols=" + url.QueryEscape(symbol)

	var quoteResp yahooQuoteResponse
	status, err := p.getJSON(ctx, u, &quoteResp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}

	for _, r := range quoteResp.QuoteResponse.Result {
		if r.Symbol != symbol {
			continue
		}
		if r.RegularMarketPrice <= 0 {
			return nil, fmt.Errorf("zero price for %s", symbol)
		}
		return newQuote(symbol, r.RegularMarketPrice, r.RegularMarketPreviousClose, r.RegularMarketVolume, r.Currency, time.Now().UTC()), nil
	}
	return nil, ErrSymbolNotFound
}

// Search returns the listings Yahoo matches for query, in Yahoo's order.
func (p *YahooProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := p.searchURL + "?q=" + url.QueryEscape(query) + "&quotesCount=20&newsCount=0&lang=en-US"

	var searchResp yahooSearchResponse
	status, err := p.getJSON(ctx, u, &searchResp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}

	results := make([]SearchResult, 0, len(searchResp.Quotes))
	for _, q := range searchResp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		results = append(results, SearchResult{Symbol: q.Symbol, Name: name, Exchange: exchange, Type: q.QuoteType})
	}
	return results, nil
}

// getJSON performs a GET and decodes the body into out. Non-2xx bodies are
// still decoded when they are JSON; the status is returned for the caller.
func (p *YahooProvider) getJSON(ctx context.Context, u string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUA)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}
