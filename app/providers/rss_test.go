package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

func rssFeedXML(now time.Time) string {
	fresh := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-72 * time.Hour).Format(time.RFC1123Z)

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Example Tech Feed</title>
	<link>https://example.com</link>
	<description>Technology news</description>
	<item>
		<title>A fresh story inside the window</title>
		<link>https://example.com/fresh</link>
		<description>Fresh description</description>
		<pubDate>%s</pubDate>
	</item>
	<item>
		<title>A stale story outside the window</title>
		<link>https://example.com/stale</link>
		<pubDate>%s</pubDate>
	</item>
	<item>
		<title>A story without any publication date</title>
		<link>https://example.com/undated</link>
	</item>
	<item>
		<title></title>
		<link>https://example.com/untitled</link>
	</item>
</channel>
</rss>`, fresh, stale)
}

func TestRSSFetch(t *testing.T) {
	now := time.Now().UTC()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected User-Agent header, got '%s'", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, rssFeedXML(now))
	}))
	defer server.Close()

	provider := NewRSS(server.Client(), "test-agent")

	topic := &news.Topic{
		Name:    "technology",
		Queries: news.TopicQueries{RSSURL: server.URL + "/feed.xml"},
	}

	result := provider.Fetch(context.Background(), topic, now.Add(-24*time.Hour), 10)

	// Fresh item and undated item survive; stale and untitled are dropped.
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}

	if result.Items[0].URL != "https://example.com/fresh" {
		t.Errorf("Expected fresh item first, got '%s'", result.Items[0].URL)
	}
	if result.Items[1].URL != "https://example.com/undated" {
		t.Errorf("Expected undated item kept, got '%s'", result.Items[1].URL)
	}

	for _, item := range result.Items {
		if item.Source != "Example Tech Feed" {
			t.Errorf("Expected feed title as source, got '%s'", item.Source)
		}
		if item.Provider != "rss" {
			t.Errorf("Expected provider 'rss', got '%s'", item.Provider)
		}
	}

	if result.Query != server.URL+"/feed.xml" {
		t.Errorf("Expected feed URL as query, got '%s'", result.Query)
	}
}

func TestRSSFetchRespectsLimit(t *testing.T) {
	now := time.Now().UTC()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeedXML(now))
	}))
	defer server.Close()

	provider := NewRSS(server.Client(), "test-agent")

	topic := &news.Topic{
		Name:    "technology",
		Queries: news.TopicQueries{RSSURL: server.URL},
	}

	result := provider.Fetch(context.Background(), topic, now.Add(-24*time.Hour), 1)

	if len(result.Items) != 1 {
		t.Errorf("Expected limit of 1 to be respected, got %d items", len(result.Items))
	}
}

func TestRSSFetchWithoutConfiguredFeed(t *testing.T) {
	provider := NewRSS(http.DefaultClient, "test-agent")

	topic := &news.Topic{Name: "technology"}

	result := provider.Fetch(context.Background(), topic, time.Time{}, 10)

	if len(result.Items) != 0 {
		t.Errorf("Expected no items for topic without rss_url, got %d", len(result.Items))
	}
	if result.Query != "" {
		t.Errorf("Expected empty query, got '%s'", result.Query)
	}
}

func TestRSSAbsorbsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewRSS(server.Client(), "test-agent")

	topic := &news.Topic{
		Name:    "technology",
		Queries: news.TopicQueries{RSSURL: server.URL},
	}

	result := provider.Fetch(context.Background(), topic, time.Time{}, 10)

	if len(result.Items) != 0 {
		t.Errorf("Expected empty result on fetch error, got %d items", len(result.Items))
	}
}

func TestRSSAbsorbsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer server.Close()

	provider := NewRSS(server.Client(), "test-agent")

	topic := &news.Topic{
		Name:    "technology",
		Queries: news.TopicQueries{RSSURL: server.URL},
	}

	result := provider.Fetch(context.Background(), topic, time.Time{}, 10)

	if len(result.Items) != 0 {
		t.Errorf("Expected empty result on parse error, got %d items", len(result.Items))
	}
}
