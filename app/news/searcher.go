package news

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// rawFetchLimit bounds how many candidates each provider is asked for on a
// cache miss. Raw snapshots are cached unbounded by the caller's page size,
// so this is deliberately larger than MaxLimit.
const rawFetchLimit = 50

// Searcher orchestrates the externally visible search operation: cache
// lookup, concurrent provider fan-out on miss, cache store, post-processing.
// All work completes within the lifetime of a single call; there is no
// background refresh.
type Searcher struct {
	topics    *TopicCache
	cache     *AggregateCache
	pipeline  *Pipeline
	providers []Provider // registration order fixes concatenation order
}

func NewSearcher(topics *TopicCache, cache *AggregateCache, pipeline *Pipeline, providers []Provider) *Searcher {
	return &Searcher{
		topics:    topics,
		cache:     cache,
		pipeline:  pipeline,
		providers: providers,
	}
}

// Search serves one aggregation request. A total provider outage yields a
// successful empty response with zeroed provider counts; "no news right now"
// is a valid state, not an error.
func (s *Searcher) Search(ctx context.Context, req Request) (Response, error) {
	topic, err := s.topics.Resolve(req.Category)
	if err != nil {
		return Response{}, err
	}

	limit := clampLimit(req.Limit)
	selected := s.selectProviders(req.Provider)

	entry, hit := s.cache.Get(topic.Name, req.Timeframe)
	if !hit {
		entry = s.fetchAll(ctx, topic, req.Timeframe, selected)
		s.cache.Put(topic.Name, req.Timeframe, entry)
	}

	items := s.pipeline.Run(entry.Items, req.Timeframe, limit, req.Debug)

	meta := Meta{
		Category:        topic.Name,
		Timeframe:       string(req.Timeframe),
		MinScore:        s.pipeline.MinScore(),
		ServedFromCache: hit,
		ProviderCounts:  entry.ProviderCounts,
		Debug:           req.Debug,
	}
	if req.Debug {
		meta.TTL = req.Timeframe.TTL().String()
		meta.Queries = entry.Queries
	}

	return Response{Items: Externalize(items), Meta: meta}, nil
}

// fetchAll fans out to the selected providers concurrently and concatenates
// their results in registration order so that the dedup stage's
// first-occurrence rule stays deterministic for a given provider set.
func (s *Searcher) fetchAll(ctx context.Context, topic *Topic, timeframe Timeframe, selected []Provider) CacheEntry {
	since := timeframe.Cutoff(time.Now().UTC())
	results := make([]FetchResult, len(selected))

	var wg sync.WaitGroup
	for i, provider := range selected {
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()
			results[i] = provider.Fetch(ctx, topic, since, rawFetchLimit)
		}(i, provider)
	}
	wg.Wait()

	entry := CacheEntry{
		ProviderCounts: make(map[string]int, len(selected)),
		Queries:        make(map[string]string, len(selected)),
	}
	for i, provider := range selected {
		entry.Items = append(entry.Items, results[i].Items...)
		entry.ProviderCounts[provider.ID()] = len(results[i].Items)
		if results[i].Query != "" {
			entry.Queries[provider.ID()] = results[i].Query
		}
	}

	slog.Debug("Providers fetched", "topic", topic.Name, "timeframe", string(timeframe), "counts", entry.ProviderCounts)

	return entry
}

func (s *Searcher) selectProviders(providerID string) []Provider {
	if providerID == "" || providerID == "all" {
		return s.providers
	}

	for _, provider := range s.providers {
		if provider.ID() == providerID {
			return []Provider{provider}
		}
	}

	slog.Debug("Unknown provider filter, using all providers", "provider", providerID)
	return s.providers
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
