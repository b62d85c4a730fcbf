package announcements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	bseAPIURL  = "https://api.bseindia.com/BseIndiaAPI/api"
	bseSiteURL = "https://www.bseindia.com"

	// bseLookback is how far back AnnGetData is asked for filings.
	bseLookback = 7 * 24 * time.Hour
	// Attachments older than this have moved from AttachLive to AttachHis.
	bseLiveAttachmentAge = 30 * 24 * time.Hour
)

// BSE answers 403 without the headers a browser on its own site would send.
var bseHeaders = map[string]string{
	"User-Agent":      browserUA,
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Origin":          bseSiteURL,
	"Referer":         bseSiteURL + "/",
	"Sec-Fetch-Site":  "same-site",
	"Sec-Fetch-Mode":  "cors",
	"Sec-Fetch-Dest":  "empty",
}

type bseCompanies struct {
	Table []struct {
		NSESymbol string      `json:"nsesymbol"`
		ScripCode json.Number `json:"scripcode"`
	} `json:"Table"`
}

type bseFilings struct {
	Table []struct {
		NewsID       string `json:"NEWSID"`
		Headline     string `json:"HEADLINE"`
		NewsSubject  string `json:"NEWSSUB"`
		NewsDate     string `json:"NEWS_DT"`
		DateTime     string `json:"DT_TM"`
		LongName     string `json:"SLONGNAME"`
		Category     string `json:"CATEGORYNAME"`
		NewsCategory string `json:"NEWSCATNAME"`
		Attachment   string `json:"ATTACHMENTNAME"`
	} `json:"Table"`
}

// BSESource reads filings from the BSE announcements API. Symbols are
// resolved to BSE scrip codes once and remembered.
type BSESource struct {
	httpClient *http.Client
	apiURL     string // overridable for tests
	siteURL    string // overridable for tests
	now        func() time.Time

	mu    sync.RWMutex
	codes map[string]string
}

// NewBSESource creates a BSE filings source.
func NewBSESource(httpClient *http.Client) *BSESource {
	return &BSESource{
		httpClient: httpClient,
		apiURL:     bseAPIURL,
		siteURL:    bseSiteURL,
		now:        time.Now,
		codes:      make(map[string]string),
	}
}

// Name returns the exchange name.
func (s *BSESource) Name() string { return "BSE" }

// Announcements returns the last week of filings for symbol.
func (s *BSESource) Announcements(ctx context.Context, symbol string) ([]Announcement, error) {
	base := baseSymbol(symbol)
	code, err := s.scripCode(ctx, base)
	if err != nil {
		return nil, err
	}

	to := s.now().In(ist)
	from := to.Add(-bseLookback)
	q := url.Values{}
	q.Set("strCat", "-1")
	q.Set("strPrevDate", from.Format("20060102"))
	q.Set("strScrip", code)
	q.Set("strSearch", "P")
	q.Set("strToDate", to.Format("20060102"))
	q.Set("strType", "C")

	var filings bseFilings
	if err := getJSON(ctx, s.httpClient, s.apiURL+"/AnnGetData/w?"+q.Encode(), bseHeaders, &filings); err != nil {
		return nil, err
	}

	out := make([]Announcement, 0, len(filings.Table))
	for _, f := range filings.Table {
		company := firstNonEmpty(f.LongName, base)
		// A stale or wrong scrip code returns another company's filings.
		if !sameCompany(base, company) {
			s.forget(base)
			return nil, fmt.Errorf("scrip %s belongs to %q, not %s", code, company, base)
		}

		rawDate := firstNonEmpty(f.NewsDate, f.DateTime)
		date, _ := parseDate(rawDate)
		out = append(out, Announcement{
			Symbol:        symbol,
			Company:       company,
			Title:         firstNonEmpty(f.Headline, f.NewsSubject, "Corporate Announcement"),
			Date:          date,
			Category:      firstNonEmpty(f.Category, f.NewsCategory, "General"),
			Exchange:      "BSE",
			AttachmentURL: s.attachmentURL(strings.TrimSpace(f.NewsID), strings.TrimSpace(f.Attachment), date),
		})
	}
	return out, nil
}

// scripCode maps an NSE-style symbol to its numeric BSE scrip code.
func (s *BSESource) scripCode(ctx context.Context, base string) (string, error) {
	s.mu.RLock()
	code, ok := s.codes[base]
	s.mu.RUnlock()
	if ok {
		return code, nil
	}

	q := url.Values{}
	q.Set("companySortOrder", "A")
	q.Set("issuerType", "C")
	q.Set("status", "Active")
	q.Set("pageno", "1")
	q.Set("pagesize", "25")
	q.Set("search", base)

	var companies bseCompanies
	if err := getJSON(ctx, s.httpClient, s.apiURL+"/fetchComp/w?"+q.Encode(), bseHeaders, &companies); err != nil {
		return "", fmt.Errorf("resolving scrip code: %w", err)
	}
	for _, c := range companies.Table {
		if strings.EqualFold(c.NSESymbol, base) && c.ScripCode != "" {
			code = c.ScripCode.String()
			s.mu.Lock()
			s.codes[base] = code
			s.mu.Unlock()
			return code, nil
		}
	}
	return "", ErrUnknownSymbol
}

func (s *BSESource) forget(base string) {
	s.mu.Lock()
	delete(s.codes, base)
	s.mu.Unlock()
}

// attachmentURL prefers the filing page, which always resolves, over the
// direct PDF whose folder depends on the filing's age.
func (s *BSESource) attachmentURL(newsID, attachment string, filed time.Time) string {
	if newsID != "" {
		return s.siteURL + "/corporates/ann.html?newsid=" + url.QueryEscape(newsID)
	}
	if attachment == "" {
		return ""
	}
	folder := "AttachHis"
	if !filed.IsZero() && s.now().Sub(filed) <= bseLiveAttachmentAge {
		folder = "AttachLive"
	}
	return s.siteURL + "/xml-data/corpfiling/" + folder + "/" + url.PathEscape(attachment)
}

// sameCompany reports whether a BSE company name plausibly belongs to base.
func sameCompany(base, company string) bool {
	name := strings.ToUpper(strings.ReplaceAll(company, " ", ""))
	prefix := base
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return strings.Contains(name, prefix) || strings.Contains(name, base)
}
