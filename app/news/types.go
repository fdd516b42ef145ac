package news

import (
	"context"
	"time"
)

// Aggregation types

// Item is a single candidate article as produced by a provider adapter.
// Adapters never mutate items after returning them; every pipeline stage
// works on derived slices.
type Item struct {
	Title       string
	URL         string
	Source      string // publisher name as reported by the provider
	PublishedAt string // provider-native date string, may be unparsable
	ImageURL    string
	Description string

	Provider string  // adapter that produced the item, stripped before response
	Score    float64 // assigned during scoring, transient
}

type FetchResult struct {
	Items []Item
	Query string // query string that ultimately produced the items
}

// Provider is an upstream news source queried independently of others.
// Fetch absorbs transport, auth, and parse failures into an empty result;
// one provider's outage never fails the aggregation.
type Provider interface {
	ID() string
	Fetch(ctx context.Context, topic *Topic, since time.Time, limit int) FetchResult
}

// Timeframe buckets

type Timeframe string

const (
	TimeframeLastDay  Timeframe = "last-day"
	TimeframeTwoDays  Timeframe = "two-days"
	TimeframeLastWeek Timeframe = "last-week"
)

// ParseTimeframe maps a caller-supplied timeframe string to a known bucket,
// falling back to last-day for anything unrecognized.
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case TimeframeLastDay, TimeframeTwoDays, TimeframeLastWeek:
		return Timeframe(s)
	default:
		return TimeframeLastDay
	}
}

// Cutoff returns the oldest publication time still inside the window.
func (t Timeframe) Cutoff(now time.Time) time.Time {
	switch t {
	case TimeframeTwoDays:
		return now.Add(-48 * time.Hour)
	case TimeframeLastWeek:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return now.Add(-24 * time.Hour)
	}
}

// TTL returns the allowed cache staleness for the bucket. Short display
// windows tolerate long TTLs; longer windows refresh sooner so that newly
// published items surface.
func (t Timeframe) TTL() time.Duration {
	switch t {
	case TimeframeTwoDays:
		return 12 * time.Hour
	case TimeframeLastWeek:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Request/response types at the facade boundary

const (
	DefaultLimit = 12
	MaxLimit     = 24
)

type Request struct {
	Category  string
	Timeframe Timeframe
	Limit     int
	Provider  string // provider ID to restrict the fetch to, empty or "all" for all
	Debug     bool
}

type ResponseItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
}

type Meta struct {
	Category        string            `json:"category"`
	Timeframe       string            `json:"timeframe"`
	MinScore        float64           `json:"min_score"`
	ServedFromCache bool              `json:"served_from_cache"`
	ProviderCounts  map[string]int    `json:"provider_counts"`
	Debug           bool              `json:"debug"`
	TTL             string            `json:"ttl,omitempty"`     // debug only
	Queries         map[string]string `json:"queries,omitempty"` // debug only, winning query per provider
}

type Response struct {
	Items []ResponseItem `json:"items"`
	Meta  Meta           `json:"meta"`
}

// Topic configuration types

type Topic struct {
	Name     string        // derived from filename (without .yml extension)
	Queries  TopicQueries  `yaml:"queries"`
	Settings TopicSettings `yaml:"settings"`
}

type TopicQueries struct {
	NewsAPI    string `yaml:"newsapi"`     // free-text query for the NewsAPI adapter
	GNews      string `yaml:"gnews"`       // primary keyword query for the GNews adapter
	GNewsTopic string `yaml:"gnews_topic"` // GNews native topic parameter, used by the fallback cascade
	RSSURL     string `yaml:"rss_url"`     // publisher feed consumed by the RSS adapter
}

type TopicSettings struct {
	Enabled bool   `yaml:"enabled"`
	Country string `yaml:"country"` // two-letter country constraint, dropped by the last fallback step
}
