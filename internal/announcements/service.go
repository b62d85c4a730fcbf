package announcements

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultConcurrent = 4
	// MaxFeedSize caps the announcements returned for one request.
	MaxFeedSize = 60
)

// Feed is the merged announcements for a set of symbols.
type Feed struct {
	Announcements []Announcement `json:"announcements"`
	// Errors maps symbols no exchange could answer for to the last failure.
	Errors    map[string]string `json:"errors,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	// Stale marks a cached feed served because a refresh found nothing.
	Stale bool `json:"stale,omitempty"`
}

// Service merges filings from several exchanges. For each symbol the sources
// are tried in order and the first that has filings wins.
type Service struct {
	sources       []Source
	cache         Cache
	ttl           time.Duration
	timeout       time.Duration
	maxConcurrent int
	now           func() time.Time
	sf            singleflight.Group
}

// NewService creates a Service. A cached feed younger than ttl is served
// without refetching; a nil cache disables caching.
func NewService(cache Cache, ttl, timeout time.Duration, sources ...Source) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		sources:       sources,
		cache:         cache,
		ttl:           ttl,
		timeout:       timeout,
		maxConcurrent: defaultConcurrent,
		now:           time.Now,
	}
}

// Recent returns the newest filings across symbols, newest first.
func (s *Service) Recent(ctx context.Context, symbols []string) (*Feed, error) {
	symbols = normalize(symbols)
	if len(symbols) == 0 {
		return &Feed{Announcements: []Announcement{}, FetchedAt: s.now().UTC()}, nil
	}
	key := strings.Join(symbols, ",")
	log := logger.Named("announcements")

	var cached *Feed
	if s.cache != nil {
		f, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warnw("announcement cache read failed", "key", key, "error", err)
		}
		cached = f
		if cached != nil && s.now().Sub(cached.FetchedAt) < s.ttl {
			return cached, nil
		}
	}

	ch := s.sf.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		feed := s.collect(fetchCtx, symbols)
		if len(feed.Announcements) == 0 && cached != nil {
			stale := *cached
			stale.Stale = true
			return &stale, nil
		}
		if len(feed.Announcements) > 0 && s.cache != nil {
			if err := s.cache.Set(fetchCtx, key, feed); err != nil {
				log.Warnw("announcement cache write failed", "key", key, "error", err)
			}
		}
		return feed, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.ErrUpstreamTimeout, ctx.Err())
	case res := <-ch:
		return res.Val.(*Feed), nil
	}
}

// collect fetches every symbol concurrently and merges the results.
func (s *Service) collect(ctx context.Context, symbols []string) *Feed {
	found := make([][]Announcement, len(symbols))
	failures := make([]error, len(symbols))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			found[i], failures[i] = s.fetchSymbol(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	feed := &Feed{FetchedAt: s.now().UTC()}
	var all []Announcement
	for i, sym := range symbols {
		all = append(all, found[i]...)
		if failures[i] != nil {
			if feed.Errors == nil {
				feed.Errors = make(map[string]string)
			}
			feed.Errors[sym] = failureMessage(failures[i])
		}
	}
	feed.Announcements = merge(all)
	return feed
}

// fetchSymbol walks the sources in order. It reports an error only when no
// source produced filings and at least one failed.
func (s *Service) fetchSymbol(ctx context.Context, symbol string) ([]Announcement, error) {
	log := logger.Named("announcements")
	var lastErr error
	for _, src := range s.sources {
		items, err := src.Announcements(ctx, symbol)
		if err != nil {
			log.Debugw("announcement source failed", "source", src.Name(), "symbol", symbol, "error", err)
			if !errors.Is(err, ErrUnknownSymbol) {
				lastErr = err
			}
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, lastErr
}

// merge sorts newest first, drops repeats of the same filing and caps the
// feed at MaxFeedSize.
func merge(all []Announcement) []Announcement {
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	out := make([]Announcement, 0, min(len(all), MaxFeedSize))
	seen := make(map[string]bool, len(all))
	for _, a := range all {
		title := []rune(a.Title)
		if len(title) > 50 {
			title = title[:50]
		}
		key := a.Symbol + "|" + string(title) + "|" + a.Date.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
		if len(out) == MaxFeedSize {
			break
		}
	}
	return out
}

func normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrUpstreamTimeout.Message
	}
	return "Announcements unavailable"
}
