// Package feeds finds trending news through RSS search feeds and extracts
// readable article text from web pages.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 30 * time.Second
	maxConcurrent  = 4
	queryToken     = "{query}"
)

// DefaultSearchFeeds are RSS search endpoints used when none are configured.
var DefaultSearchFeeds = []string{
	"https://news.google.com/rss/search?q={query}&hl=zh-CN&gl=CN&ceid=CN:zh-Hans",
	"https://www.bing.com/news/search?q={query}&format=rss&setlang=zh-hans",
}

// ErrNoResults is returned when every search feed failed.
var ErrNoResults = errors.New("search feeds unavailable")

// SearchResult is one hit of a news search.
type SearchResult struct {
	Title       string     `json:"name"`
	Snippet     string     `json:"snippet"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Searcher queries RSS search feeds concurrently. Each feed URL is a template
// in which {query} is replaced by the escaped query.
type Searcher struct {
	client    *http.Client
	templates []string
}

// NewSearcher creates a Searcher over templates. An empty list selects
// DefaultSearchFeeds; a zero timeout selects 30 seconds.
func NewSearcher(templates []string, timeout time.Duration) *Searcher {
	if len(templates) == 0 {
		templates = DefaultSearchFeeds
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Searcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		templates: templates,
	}
}

// userAgentTransport wraps an http.RoundTripper to inject browser-like
// headers on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	return t.base.RoundTrip(req)
}

// Search runs query against every feed and returns at most n results. Results
// keep feed order, and within a feed the feed's own order; duplicate URLs are
// dropped. Failing feeds are skipped unless all of them fail.
func (s *Searcher) Search(ctx context.Context, query string, n int) ([]SearchResult, error) {
	perFeed := make([][]SearchResult, len(s.templates))
	failures := make([]error, len(s.templates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, tmpl := range s.templates {
		g.Go(func() error {
			feedURL := strings.ReplaceAll(tmpl, queryToken, url.QueryEscape(query))
			results, err := s.fetchFeed(ctx, feedURL)
			if err != nil {
				slog.Warn("search feed failed", "feed", hostOf(feedURL), "error", err)
				failures[i] = err
				return nil // one feed failing does not fail the search
			}
			perFeed[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("searching feeds: %w", err)
	}

	if lo.EveryBy(failures, func(err error) bool { return err != nil }) {
		return nil, fmt.Errorf("%w: %w", ErrNoResults, errors.Join(failures...))
	}

	merged := lo.UniqBy(lo.Flatten(perFeed), func(r SearchResult) string { return r.URL })
	if n > 0 && len(merged) > n {
		merged = merged[:n]
	}
	slog.Debug("search completed", "query", query, "results", len(merged))
	return merged, nil
}

func (s *Searcher) fetchFeed(ctx context.Context, feedURL string) ([]SearchResult, error) {
	fp := gofeed.NewParser()
	fp.Client = s.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return parseFeedItems(feed), nil
}

// hostOf returns the hostname of rawURL, or rawURL itself when it does not
// parse. Used to keep queries out of logs.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
