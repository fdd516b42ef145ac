package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const gnewsAPIBase = "https://gnews.io/api/v4"

var _ news.Provider = (*GNews)(nil)

// GNews queries gnews.io with a strict fallback cascade: each step runs only
// if the previous one returned zero items. The winning query string is
// recorded in the result for diagnostics.
type GNews struct {
	apiKey     string
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

func NewGNews(apiKey string, httpClient *http.Client, userAgent string) *GNews {
	return &GNews{
		apiKey:     apiKey,
		httpClient: httpClient,
		userAgent:  userAgent,
		baseURL:    gnewsAPIBase,
	}
}

func (p *GNews) ID() string {
	return "gnews"
}

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// queryStrategy is one step of the fallback cascade. build returns false
// when the step does not apply to the topic (e.g. no native topic is
// configured), in which case the cascade moves on without a request.
type queryStrategy struct {
	name  string
	build func(topic *news.Topic) (path string, params url.Values, query string, ok bool)
}

func (p *GNews) strategies() []queryStrategy {
	return []queryStrategy{
		{
			name: "primary",
			build: func(topic *news.Topic) (string, url.Values, string, bool) {
				query := primaryQuery(topic)
				params := url.Values{}
				params.Set("q", query)
				if topic.Settings.Country != "" {
					params.Set("country", strings.ToLower(topic.Settings.Country))
				}
				return "/search", params, query, true
			},
		},
		{
			name: "simplified",
			build: func(topic *news.Topic) (string, url.Values, string, bool) {
				query := simplifyQuery(primaryQuery(topic))
				if query == "" || query == primaryQuery(topic) {
					return "", nil, "", false
				}
				params := url.Values{}
				params.Set("q", query)
				if topic.Settings.Country != "" {
					params.Set("country", strings.ToLower(topic.Settings.Country))
				}
				return "/search", params, query, true
			},
		},
		{
			name: "topic",
			build: func(topic *news.Topic) (string, url.Values, string, bool) {
				if topic.Queries.GNewsTopic == "" {
					return "", nil, "", false
				}
				params := url.Values{}
				params.Set("topic", topic.Queries.GNewsTopic)
				if topic.Settings.Country != "" {
					params.Set("country", strings.ToLower(topic.Settings.Country))
				}
				return "/top-headlines", params, "topic:" + topic.Queries.GNewsTopic, true
			},
		},
		{
			name: "global",
			build: func(topic *news.Topic) (string, url.Values, string, bool) {
				if topic.Settings.Country == "" {
					return "", nil, "", false
				}
				query := simplifyQuery(primaryQuery(topic))
				if query == "" {
					query = primaryQuery(topic)
				}
				params := url.Values{}
				params.Set("q", query)
				return "/search", params, query + " (global)", true
			},
		},
	}
}

func (p *GNews) Fetch(ctx context.Context, topic *news.Topic, since time.Time, limit int) news.FetchResult {
	for _, strategy := range p.strategies() {
		path, params, query, ok := strategy.build(topic)
		if !ok {
			continue
		}

		params.Set("token", p.apiKey)
		params.Set("lang", "en")
		params.Set("max", fmt.Sprintf("%d", limit))
		if !since.IsZero() {
			params.Set("from", since.UTC().Format(time.RFC3339))
		}

		resp, err := p.request(ctx, path, params)
		if err != nil {
			slog.Warn("Provider fetch failed", "provider", p.ID(), "topic", topic.Name, "strategy", strategy.name, "error", err)
			continue
		}

		if len(resp.Articles) == 0 {
			slog.Debug("Fallback step returned no items", "provider", p.ID(), "topic", topic.Name, "strategy", strategy.name)
			continue
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
				ImageURL:    article.Image,
				Description: article.Description,
				Provider:    p.ID(),
			})
		}

		return news.FetchResult{Items: items, Query: query}
	}

	return news.FetchResult{}
}

func (p *GNews) request(ctx context.Context, path string, params url.Values) (*gnewsResponse, error) {
	reqURL := fmt.Sprintf("%s%s?%s", p.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var parsed gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &parsed, nil
}

func primaryQuery(topic *news.Topic) string {
	if topic.Queries.GNews != "" {
		return topic.Queries.GNews
	}
	return topic.Name
}

// simplifyQuery strips boolean operators, quotes and punctuation from a
// keyword query, leaving plain free text.
func simplifyQuery(query string) string {
	fields := strings.Fields(query)
	simplified := make([]string, 0, len(fields))

	for _, field := range fields {
		switch field {
		case "AND", "OR", "NOT":
			continue
		}
		field = strings.Map(func(r rune) rune {
			switch r {
			case '"', '(', ')', '+', '-':
				return -1
			}
			return r
		}, field)
		if field == "" {
			continue
		}
		simplified = append(simplified, field)
	}

	return strings.Join(simplified, " ")
}
