package feeds

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxWords caps the text kept from an imported article.
const maxWords = 5000

// browserHeaders sets browser-like request headers so sites that check Accept
// or User-Agent don't reject the request.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CreatorPilot/1.0)")
}

// ArticleMetadata holds the metadata extracted from a web page.
type ArticleMetadata struct {
	Title       string
	Byline      string
	SiteName    string
	Excerpt     string
	Image       string
	TextContent string
	PublishedAt *time.Time
}

// Extractor pulls readable content out of web pages.
type Extractor struct {
	timeout time.Duration
}

// NewExtractor creates an Extractor. A zero timeout selects 30 seconds.
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{timeout: timeout}
}

// ExtractArticleMetadata fetches a web page and returns its metadata and main
// text, truncated to 5000 words.
func (e *Extractor) ExtractArticleMetadata(url string) (*ArticleMetadata, error) {
	article, err := readability.FromURL(url, e.timeout, browserHeaders)
	if err != nil {
		return nil, fmt.Errorf("readability extraction: %w", err)
	}

	return &ArticleMetadata{
		Title:       strings.TrimSpace(article.Title),
		Byline:      strings.TrimSpace(article.Byline),
		SiteName:    article.SiteName,
		Excerpt:     article.Excerpt,
		Image:       article.Image,
		TextContent: truncateWords(article.TextContent, maxWords),
		PublishedAt: article.PublishedTime,
	}, nil
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}
