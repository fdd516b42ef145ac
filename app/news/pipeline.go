package news

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Pipeline turns a raw aggregate snapshot into a bounded, ranked result.
// Stages run in fixed order: time re-filter, cross-source dedup, scoring,
// recency sort, truncation. Every stage returns a derived slice; the raw
// snapshot is never mutated.
type Pipeline struct {
	minScore float64
}

func NewPipeline(minScore float64) *Pipeline {
	return &Pipeline{minScore: minScore}
}

func (p *Pipeline) MinScore() float64 {
	return p.minScore
}

// Run applies all stages. debug bypasses the score-based discard so that
// operators can see items the quality filter would hide.
func (p *Pipeline) Run(items []Item, timeframe Timeframe, limit int, debug bool) []Item {
	result := p.filterByWindow(items, timeframe.Cutoff(time.Now().UTC()))
	result = p.dedupeBySource(result)
	result = p.score(result, debug)
	result = p.sortByRecency(result)

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// filterByWindow drops items published before the cutoff. Items whose date
// string is missing or unparsable are kept; provider date fields are too
// unreliable to drop on.
func (p *Pipeline) filterByWindow(items []Item, cutoff time.Time) []Item {
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		publishedAt, ok := parsePublishedAt(item.PublishedAt)
		if ok && publishedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// dedupeBySource keeps the first item per identity key in input order. The
// key is the normalized URL host, or the lower-cased source name when the
// URL has no usable host: one item per domain, not one per title.
func (p *Pipeline) dedupeBySource(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	deduped := make([]Item, 0, len(items))

	for _, item := range items {
		key := identityKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, item)
	}

	return deduped
}

// score assigns the coarse title-length quality score and discards items
// below the configured minimum. This is a stub filter, not a relevance
// ranker: it exists to drop placeholder titles, nothing more.
func (p *Pipeline) score(items []Item, debug bool) []Item {
	scored := make([]Item, 0, len(items))
	for _, item := range items {
		item.Score = titleScore(item.Title)
		if !debug && item.Score < p.minScore {
			continue
		}
		scored = append(scored, item)
	}
	return scored
}

// sortByRecency orders descending by parsed publication time. Unparsable
// dates sort as the zero time so they land at the end deterministically;
// they were already exempted from being dropped by the window filter.
func (p *Pipeline) sortByRecency(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := parsePublishedAt(sorted[i].PublishedAt)
		tj, _ := parsePublishedAt(sorted[j].PublishedAt)
		return ti.After(tj)
	})

	return sorted
}

// Externalize strips internal-only fields from pipeline output.
func Externalize(items []Item) []ResponseItem {
	external := make([]ResponseItem, 0, len(items))
	for _, item := range items {
		external = append(external, ResponseItem{
			Title:       item.Title,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: item.PublishedAt,
			ImageURL:    item.ImageURL,
			Description: item.Description,
		})
	}
	return external
}

func titleScore(title string) float64 {
	if len(strings.TrimSpace(title)) >= 20 {
		return 1.0
	}
	return 0.3
}

func identityKey(item Item) string {
	if u, err := url.Parse(item.URL); err == nil && u.Host != "" {
		host := strings.ToLower(u.Host)
		return strings.TrimPrefix(host, "www.")
	}
	return strings.ToLower(strings.TrimSpace(item.Source))
}

func parsePublishedAt(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
