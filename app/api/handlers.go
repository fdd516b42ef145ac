package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

func NewHandler(searcher SearcherInterface, topics *news.TopicCache,
	cache *news.AggregateCache, articleRepo database.ArticleRepository) *Handler {
	return &Handler{
		searcher:    searcher,
		topics:      topics,
		cache:       cache,
		articleRepo: articleRepo,
	}
}

// GetNews serves the aggregation endpoint. Malformed parameters are
// normalized rather than rejected: unknown categories fall back to the
// default topic, out-of-range limits are clamped, unknown timeframes and
// providers fall back to their defaults.
func (h *Handler) GetNews(c *gin.Context) {
	req := news.Request{
		Category:  c.Query("category"),
		Timeframe: news.ParseTimeframe(c.Query("timeframe")),
		Provider:  c.Query("provider"),
		Debug:     isTruthy(c.Query("debug")),
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		req.Limit = limit
	}

	resp, err := h.searcher.Search(c.Request.Context(), req)
	if err != nil {
		slog.Error("Search failed", "category", req.Category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	if resp.Meta.ServedFromCache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("X-Cache-TTL", req.Timeframe.TTL().String())

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
	}

	health["loaded_topics"] = h.topics.GetTopicCount()
	health["cache_entries"] = h.cache.Size()

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["saved_articles"] = articleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	topicConfigs := h.topics.GetTopics()

	topics := make([]map[string]interface{}, 0, len(topicConfigs))
	for _, topic := range topicConfigs {
		topics = append(topics, map[string]interface{}{
			"name":         topic.Name,
			"display_name": news.DisplayName(topic.Name),
			"enabled":      topic.Settings.Enabled,
			"has_newsapi":  topic.Queries.NewsAPI != "",
			"has_gnews":    topic.Queries.GNews != "" || topic.Queries.GNewsTopic != "",
			"has_rss":      topic.Queries.RSSURL != "",
		})
	}

	stats := map[string]interface{}{
		"topics":        topics,
		"total_topics":  len(topics),
		"cache_entries": h.cache.Size(),
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		stats["saved_articles"] = articleCount
	}

	c.JSON(http.StatusOK, stats)
}

type saveArticleRequest struct {
	Topic       string `json:"topic"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

func (h *Handler) APISaveArticle(c *gin.Context) {
	var req saveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Title == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and URL are required"})
		return
	}

	id, err := h.articleRepo.SaveArticle(database.SavedArticle{
		Topic:       req.Topic,
		Title:       req.Title,
		URL:         req.URL,
		Source:      req.Source,
		PublishedAt: req.PublishedAt,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	})
	if err != nil {
		slog.Error("Database error", "operation", "save_article", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) APIListArticles(c *gin.Context) {
	limit := 50
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 200 {
		limit = parsed
	}

	articles, err := h.articleRepo.GetArticles(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(articles))
	for _, article := range articles {
		entry := map[string]interface{}{
			"id":                article.ID,
			"topic":             article.Topic,
			"title":             article.Title,
			"url":               article.URL,
			"source":            article.Source,
			"published_at":      article.PublishedAt,
			"image_url":         article.ImageURL,
			"description":       article.Description,
			"extraction_status": article.ExtractionStatus,
			"created_at":        article.CreatedAt,
		}
		if article.ExtractedAt != nil {
			entry["extracted_at"] = article.ExtractedAt
			entry["content_length"] = len(article.Content)
		}
		list = append(list, entry)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"articles": list,
		"total":    len(list),
	})
}

func isTruthy(value string) bool {
	return value == "1" || value == "true"
}
