package announcements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"stocktracker/internal/logger"
)

const (
	nseSiteURL    = "https://www.nseindia.com"
	nseArchiveURL = "https://nsearchives.nseindia.com/corporate/"

	// nseSessionTTL is how long the cookies from the home page are trusted.
	nseSessionTTL = 5 * time.Minute
	// nseWindow keeps only recent filings; the extra hours cover IST vs UTC.
	nseWindow = 54 * time.Hour
)

var nseHeaders = map[string]string{
	"User-Agent":      browserUA,
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         nseSiteURL + "/",
}

type nseFiling struct {
	Description string `json:"desc"`
	Subject     string `json:"subject"`
	AnnouncedAt string `json:"an_dt"`
	Date        string `json:"date"`
	Company     string `json:"comp"`
	CompanyName string `json:"company"`
	Industry    string `json:"smIndustry"`
	Category    string `json:"category"`
	Attachment  string `json:"attchmntFile"`
}

// NSESource reads filings from the NSE corporate announcements API. NSE only
// answers requests carrying the cookies its home page sets, so the source
// keeps a cookie jar and refreshes it periodically.
type NSESource struct {
	httpClient *http.Client
	siteURL    string // overridable for tests
	apiURL     string // overridable for tests
	now        func() time.Time

	mu       sync.Mutex
	primedAt time.Time
}

// NewNSESource creates an NSE filings source. The client is copied and given
// a cookie jar if it has none.
func NewNSESource(httpClient *http.Client) *NSESource {
	client := *httpClient
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	return &NSESource{
		httpClient: &client,
		siteURL:    nseSiteURL,
		apiURL:     nseSiteURL + "/api",
		now:        time.Now,
	}
}

// Name returns the exchange name.
func (s *NSESource) Name() string { return "NSE" }

// Announcements returns filings for symbol from roughly the last two days.
func (s *NSESource) Announcements(ctx context.Context, symbol string) ([]Announcement, error) {
	base := baseSymbol(symbol)
	q := url.Values{}
	q.Set("index", "equities")
	q.Set("symbol", base)
	u := s.apiURL + "/corporate-announcements?" + q.Encode()

	s.prime(ctx, false)
	var raw json.RawMessage
	err := getJSON(ctx, s.httpClient, u, nseHeaders, &raw)
	if errors.Is(err, errEmptyBody) {
		s.prime(ctx, true)
		err = getJSON(ctx, s.httpClient, u, nseHeaders, &raw)
	}
	if err != nil {
		return nil, err
	}

	filings, err := decodeNSEFilings(raw)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-nseWindow)
	out := make([]Announcement, 0, len(filings))
	for _, f := range filings {
		date, ok := parseDate(firstNonEmpty(f.AnnouncedAt, f.Date))
		if !ok || date.Before(cutoff) {
			continue
		}
		attachment := strings.TrimSpace(f.Attachment)
		if attachment != "" && !strings.HasPrefix(attachment, "http") {
			attachment = nseArchiveURL + attachment
		}
		out = append(out, Announcement{
			Symbol:        symbol,
			Company:       firstNonEmpty(f.Company, f.CompanyName, base),
			Title:         firstNonEmpty(f.Description, f.Subject, "Corporate Announcement"),
			Date:          date,
			Category:      firstNonEmpty(f.Industry, f.Category, "General"),
			Exchange:      "NSE",
			AttachmentURL: attachment,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// decodeNSEFilings accepts both the bare list and the {"data": [...]} shape.
func decodeNSEFilings(raw json.RawMessage) ([]nseFiling, error) {
	var filings []nseFiling
	if err := json.Unmarshal(raw, &filings); err == nil {
		return filings, nil
	}
	var wrapped struct {
		Data []nseFiling `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

// prime visits the home page to collect session cookies. Failures are only
// logged: the API call that follows reports the real error.
func (s *NSESource) prime(ctx context.Context, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !force && !s.primedAt.IsZero() && s.now().Sub(s.primedAt) < nseSessionTTL {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.siteURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Named("announcements").Warnw("nse session refresh failed", "error", err)
		return
	}
	_ = resp.Body.Close()
	s.primedAt = s.now()
}
