package announcements

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fixedNow is 12 May 2024, 10:00 IST.
var fixedNow = time.Date(2024, 5, 12, 10, 0, 0, 0, ist)

// newBSEMockServer answers fetchComp with companies and AnnGetData with filings.
func newBSEMockServer(t *testing.T, companies, filings string, lookups *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") == "" || r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/fetchComp/w"):
			if lookups != nil {
				lookups.Add(1)
			}
			_, _ = w.Write([]byte(companies))
		case strings.HasSuffix(r.URL.Path, "/AnnGetData/w"):
			if r.URL.Query().Get("strScrip") != "500325" {
				t.Errorf("unexpected scrip %q", r.URL.Query().Get("strScrip"))
			}
			if r.URL.Query().Get("strToDate") != "20240512" || r.URL.Query().Get("strPrevDate") != "20240505" {
				t.Errorf("unexpected date range %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(filings))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestBSESource(server *httptest.Server) *BSESource {
	s := NewBSESource(server.Client())
	s.apiURL = server.URL
	s.siteURL = "https://bse.example"
	s.now = func() time.Time { return fixedNow }
	return s
}

const relianceCompanies = `{"Table":[
	{"nsesymbol":"RELIANCEX","scripcode":"999999"},
	{"nsesymbol":"RELIANCE","scripcode":500325}
]}`

func TestBSESource_Announcements(t *testing.T) {
	filings := `{"Table":[
		{"NEWSID":"a1-b2","HEADLINE":"Board meeting outcome","NEWS_DT":"2024-05-10T18:23:45.73","SLONGNAME":"Reliance Industries Ltd","CATEGORYNAME":"Board Meeting"},
		{"NEWSSUB":"Analyst call","DT_TM":"2024-05-09T09:00:00","SLONGNAME":"Reliance Industries Ltd","ATTACHMENTNAME":"call.pdf"}
	]}`
	var lookups atomic.Int32
	server := newBSEMockServer(t, relianceCompanies, filings, &lookups)
	defer server.Close()
	src := newTestBSESource(server)

	got, err := src.Announcements(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(got))
	}

	first := got[0]
	if first.Symbol != "RELIANCE.NS" || first.Exchange != "BSE" || first.Category != "Board Meeting" {
		t.Errorf("unexpected announcement %+v", first)
	}
	if want := time.Date(2024, 5, 10, 18, 23, 45, 730000000, ist); !first.Date.Equal(want) {
		t.Errorf("date = %v, want %v", first.Date, want)
	}
	if first.AttachmentURL != "https://bse.example/corporates/ann.html?newsid=a1-b2" {
		t.Errorf("attachment = %q", first.AttachmentURL)
	}

	second := got[1]
	if second.Title != "Analyst call" || second.Category != "General" {
		t.Errorf("unexpected fallbacks %+v", second)
	}
	if second.AttachmentURL != "https://bse.example/xml-data/corpfiling/AttachLive/call.pdf" {
		t.Errorf("attachment = %q", second.AttachmentURL)
	}

	if _, err := src.Announcements(context.Background(), "RELIANCE"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if n := lookups.Load(); n != 1 {
		t.Errorf("expected scrip code lookup once, got %d", n)
	}
}

func TestBSESource_UnknownSymbol(t *testing.T) {
	server := newBSEMockServer(t, `{"Table":[]}`, `{"Table":[]}`, nil)
	defer server.Close()

	_, err := newTestBSESource(server).Announcements(context.Background(), "NOSUCH")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestBSESource_RejectsOtherCompanysFilings(t *testing.T) {
	filings := `{"Table":[{"HEADLINE":"Dividend","NEWS_DT":"2024-05-10T10:00:00","SLONGNAME":"Tata Motors Ltd"}]}`
	var lookups atomic.Int32
	server := newBSEMockServer(t, relianceCompanies, filings, &lookups)
	defer server.Close()
	src := newTestBSESource(server)

	for i := 0; i < 2; i++ {
		if _, err := src.Announcements(context.Background(), "RELIANCE"); err == nil {
			t.Fatal("expected mismatch error")
		}
	}
	if n := lookups.Load(); n != 2 {
		t.Errorf("mismatched scrip code should be looked up again, got %d lookups", n)
	}
}

func TestBSESource_AttachmentFolderByAge(t *testing.T) {
	src := NewBSESource(http.DefaultClient)
	src.siteURL = "https://bse.example"
	src.now = func() time.Time { return fixedNow }

	old := fixedNow.AddDate(0, -2, 0)
	if got := src.attachmentURL("", "old.pdf", old); !strings.Contains(got, "/AttachHis/old.pdf") {
		t.Errorf("old filing attachment = %q", got)
	}
	if got := src.attachmentURL("", "undated.pdf", time.Time{}); !strings.Contains(got, "/AttachHis/") {
		t.Errorf("undated filing attachment = %q", got)
	}
	if got := src.attachmentURL("", "", fixedNow); got != "" {
		t.Errorf("expected no attachment, got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"10-May-2024 18:23:45", time.Date(2024, 5, 10, 18, 23, 45, 0, ist), true},
		{"10-May-2024", time.Date(2024, 5, 10, 0, 0, 0, 0, ist), true},
		{"10/05/2024", time.Date(2024, 5, 10, 0, 0, 0, 0, ist), true},
		{"2024-05-10", time.Date(2024, 5, 10, 0, 0, 0, 0, ist), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
