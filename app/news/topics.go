package news

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var titleCaser = cases.Title(language.English)

// TopicCache holds the closed set of topic configurations, one yaml file per
// topic. Unknown categories resolve to the default topic rather than erroring
// so that minor client drift never breaks the endpoint.
type TopicCache struct {
	topicsDir    string
	defaultTopic string
	cache        map[string]*Topic
	mu           sync.RWMutex
}

func NewTopicCache(topicsDir, defaultTopic string) *TopicCache {
	return &TopicCache{
		topicsDir:    topicsDir,
		defaultTopic: defaultTopic,
		cache:        make(map[string]*Topic),
	}
}

func (tc *TopicCache) Run() error {
	if _, err := os.Stat(tc.topicsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(tc.topicsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		topicName := fileName[:len(fileName)-4] // Remove .yml extension

		topic, err := tc.LoadTopic(topicName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Topic configuration loaded", "topic", topicName, "enabled", topic.Settings.Enabled)
	}

	return nil
}

func (tc *TopicCache) LoadTopic(topicName string) (*Topic, error) {
	topicFile := tc.getTopicFilePath(topicName)
	topic, err := tc.parseTopic(topicFile)
	if err != nil {
		return nil, err
	}

	// Set topic name from parameter
	topic.Name = topicName

	if err := tc.validateTopic(topic); err != nil {
		return nil, fmt.Errorf("invalid topic %s: %w", topicFile, err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache[topic.Name] = topic

	return topic, nil
}

func (tc *TopicCache) GetTopic(topicName string) (*Topic, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	topic, ok := tc.cache[topicName]
	if !ok {
		return nil, fmt.Errorf("topic with name '%s' not found", topicName)
	}
	return topic, nil
}

// Resolve returns the topic for the given category, falling back to the
// default topic when the category is unknown, disabled or empty.
func (tc *TopicCache) Resolve(category string) (*Topic, error) {
	category = strings.ToLower(strings.TrimSpace(category))

	if category != "" {
		if topic, err := tc.GetTopic(category); err == nil && topic.Settings.Enabled {
			return topic, nil
		}
		slog.Debug("Unknown or disabled category, falling back to default topic", "category", category, "default", tc.defaultTopic)
	}

	return tc.GetTopic(tc.defaultTopic)
}

func (tc *TopicCache) GetTopics() map[string]*Topic {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	topicsCopy := make(map[string]*Topic, len(tc.cache))
	for k, v := range tc.cache {
		topicsCopy[k] = v
	}
	return topicsCopy
}

func (tc *TopicCache) GetTopicCount() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.cache)
}

// DisplayName renders a topic name for UI-facing metadata, e.g.
// "machine-learning" becomes "Machine Learning".
func DisplayName(topicName string) string {
	return titleCaser.String(strings.ReplaceAll(topicName, "-", " "))
}

func (tc *TopicCache) parseTopic(topicFile string) (*Topic, error) {
	data, err := os.ReadFile(topicFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var topic Topic
	if err := yaml.Unmarshal(data, &topic); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &topic, nil
}

func (tc *TopicCache) validateTopic(topic *Topic) error {
	if topic == nil {
		return fmt.Errorf("topic is nil")
	}

	if topic.Name == "" {
		return fmt.Errorf("topic name is required")
	}

	q := topic.Queries
	if q.NewsAPI == "" && q.GNews == "" && q.GNewsTopic == "" && q.RSSURL == "" {
		return fmt.Errorf("at least one provider query is required")
	}

	if q.RSSURL != "" && !strings.HasPrefix(q.RSSURL, "http://") && !strings.HasPrefix(q.RSSURL, "https://") {
		return fmt.Errorf("rss_url must be an http(s) URL")
	}

	if c := topic.Settings.Country; c != "" && len(c) != 2 {
		return fmt.Errorf("country must be a two-letter code")
	}

	return nil
}

func (tc *TopicCache) getTopicFilePath(topicName string) string {
	return filepath.Join(tc.topicsDir, topicName+".yml")
}
