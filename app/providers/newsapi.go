package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const newsAPIBase = "https://newsapi.org/v2"

var _ news.Provider = (*NewsAPI)(nil)

// NewsAPI queries the NewsAPI "everything" endpoint with the topic's
// free-text query.
type NewsAPI struct {
	apiKey     string
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

func NewNewsAPI(apiKey string, httpClient *http.Client, userAgent string) *NewsAPI {
	return &NewsAPI{
		apiKey:     apiKey,
		httpClient: httpClient,
		userAgent:  userAgent,
		baseURL:    newsAPIBase,
	}
}

func (p *NewsAPI) ID() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (p *NewsAPI) Fetch(ctx context.Context, topic *news.Topic, since time.Time, limit int) news.FetchResult {
	query := topic.Queries.NewsAPI
	if query == "" {
		query = topic.Name
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", limit))
	if !since.IsZero() {
		params.Set("from", since.UTC().Format("2006-01-02"))
	}

	resp, err := p.request(ctx, params)
	if err != nil {
		slog.Warn("Provider fetch failed", "provider", p.ID(), "topic", topic.Name, "error", err)
		return news.FetchResult{Query: query}
	}

	items := make([]news.Item, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		if article.Title == "" {
			continue
		}
		items = append(items, news.Item{
			Title:       article.Title,
			URL:         article.URL,
			Source:      article.Source.Name,
			PublishedAt: article.PublishedAt,
			ImageURL:    article.URLToImage,
			Description: article.Description,
			Provider:    p.ID(),
		})
	}

	return news.FetchResult{Items: items, Query: query}
}

func (p *NewsAPI) request(ctx context.Context, params url.Values) (*newsAPIResponse, error) {
	reqURL := fmt.Sprintf("%s/everything?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if parsed.Status != "ok" {
		return nil, fmt.Errorf("API status: %s", parsed.Status)
	}

	return &parsed, nil
}
