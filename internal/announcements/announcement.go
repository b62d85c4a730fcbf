// Package announcements collects recent corporate filings from the Indian
// stock exchanges for a set of ticker symbols.
package announcements

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

var (
	// ErrUnknownSymbol is returned when an exchange does not list the symbol.
	ErrUnknownSymbol = errors.New("symbol not listed")

	// errEmptyBody is what NSE sends when its session cookie has expired.
	errEmptyBody = errors.New("empty response body")
)

// ist is the exchanges' local time. Filing timestamps carry no zone.
var ist = time.FixedZone("IST", 5*60*60+30*60)

// Announcement is one corporate filing.
type Announcement struct {
	Symbol        string    `json:"symbol"`
	Company       string    `json:"company"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	Exchange      string    `json:"exchange"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
}

// Source fetches recent filings for one symbol from one exchange.
type Source interface {
	// Name returns the exchange name, e.g. "BSE".
	Name() string

	// Announcements returns recent filings for symbol, newest first.
	// Implementations must honour ctx cancellation.
	Announcements(ctx context.Context, symbol string) ([]Announcement, error)
}

// baseSymbol strips the Yahoo exchange suffix: RELIANCE.NS → RELIANCE.
func baseSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range []string{".NS", ".BO"} {
		symbol = strings.TrimSuffix(symbol, suffix)
	}
	return symbol
}

var dateLayouts = []string{
	"02-Jan-2006 15:04:05",
	"02-Jan-2006 15:04",
	"02-Jan-2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate reads the exchanges' assorted timestamp formats as IST.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, ist); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// getJSON performs a GET with headers and decodes the body into out.
func getJSON(ctx context.Context, client *http.Client, u string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
