package capability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchEndpoint   = "https://html.duckduckgo.com/html/"
	searchTimeout    = 30 * time.Second
	maxSearchResults = 8
)

// WebSearch resolves queries against the DuckDuckGo HTML endpoint and
// returns a plain-text digest of the top results.
type WebSearch struct {
	httpClient *http.Client
}

func NewWebSearch() *WebSearch {
	return &WebSearch{
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

func (w *WebSearch) Name() string { return NameWebSearch }

func (w *WebSearch) Invoke(ctx context.Context, query string, _ Options) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("web search: empty query")
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("web search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "missiond/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web search: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("web search: parse html: %w", err)
	}
	return renderResults(doc, query)
}

func renderResults(doc *goquery.Document, query string) (string, error) {
	var sb strings.Builder
	count := 0
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find(".result__a").Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		href, _ := s.Find(".result__a").Attr("href")
		if title == "" && snippet == "" {
			return true
		}
		count++
		sb.WriteString(fmt.Sprintf("%d. %s\n", count, title))
		if snippet != "" {
			sb.WriteString("   " + snippet + "\n")
		}
		if href != "" {
			sb.WriteString("   " + href + "\n")
		}
		return count < maxSearchResults
	})

	if count == 0 {
		return "", fmt.Errorf("web search: no results found for %q", query)
	}
	return fmt.Sprintf("Search results for %q:\n%s", query, sb.String()), nil
}
