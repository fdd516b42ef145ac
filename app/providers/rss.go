package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/news-comb/app/news"
)

var _ news.Provider = (*RSS)(nil)

// RSS fetches a publisher feed configured per topic. Topics without an
// rss_url simply contribute nothing from this adapter.
type RSS struct {
	httpClient *http.Client
	userAgent  string
	parser     *gofeed.Parser
}

func NewRSS(httpClient *http.Client, userAgent string) *RSS {
	return &RSS{
		httpClient: httpClient,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
	}
}

func (p *RSS) ID() string {
	return "rss"
}

func (p *RSS) Fetch(ctx context.Context, topic *news.Topic, since time.Time, limit int) news.FetchResult {
	feedURL := topic.Queries.RSSURL
	if feedURL == "" {
		slog.Debug("No RSS feed configured for topic", "topic", topic.Name)
		return news.FetchResult{}
	}

	data, err := p.fetchFeed(ctx, feedURL)
	if err != nil {
		slog.Warn("Provider fetch failed", "provider", p.ID(), "topic", topic.Name, "error", err)
		return news.FetchResult{Query: feedURL}
	}

	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Provider parse failed", "provider", p.ID(), "topic", topic.Name, "error", err)
		return news.FetchResult{Query: feedURL}
	}

	items := make([]news.Item, 0, len(feed.Items))
	for _, feedItem := range feed.Items {
		if feedItem.Title == "" {
			continue
		}
		// Items with no parsable date are kept; the pipeline's window
		// filter is fail-open for the same reason.
		if feedItem.PublishedParsed != nil && feedItem.PublishedParsed.Before(since) {
			continue
		}

		item := news.Item{
			Title:       feedItem.Title,
			URL:         feedItem.Link,
			Source:      feed.Title,
			PublishedAt: feedItem.Published,
			Description: feedItem.Description,
			Provider:    p.ID(),
		}
		if feedItem.Image != nil {
			item.ImageURL = feedItem.Image.URL
		}

		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}

	return news.FetchResult{Items: items, Query: feedURL}
}

func (p *RSS) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
