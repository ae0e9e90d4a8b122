package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// maxSnippetRunes bounds a result snippet.
const maxSnippetRunes = 300

// parseFeedItems converts gofeed items into search results. Items with an
// empty title or link are skipped.
func parseFeedItems(feed *gofeed.Feed) []SearchResult {
	var results []SearchResult
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			publishedAt = &t
		}

		results = append(results, SearchResult{
			Title:       strings.TrimSpace(stripHTML(item.Title)),
			Snippet:     truncateRunes(strings.TrimSpace(stripHTML(item.Description)), maxSnippetRunes),
			URL:         item.Link,
			PublishedAt: publishedAt,
		})
	}
	return results
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
