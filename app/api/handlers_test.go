package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

// mockSearcher implements SearcherInterface with a canned response
type mockSearcher struct {
	response    news.Response
	err         error
	lastRequest news.Request
}

func (m *mockSearcher) Search(ctx context.Context, req news.Request) (news.Response, error) {
	m.lastRequest = req
	return m.response, m.err
}

// mockRepo implements database.ArticleRepository for handler tests
type mockRepo struct {
	articles []database.SavedArticle
	saveErr  error
	lastSave database.SavedArticle
}

var _ database.ArticleRepository = (*mockRepo)(nil)

func (m *mockRepo) SaveArticle(article database.SavedArticle) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.lastSave = article
	return 42, nil
}

func (m *mockRepo) GetArticles(limit int) ([]database.SavedArticle, error) {
	if len(m.articles) > limit {
		return m.articles[:limit], nil
	}
	return m.articles, nil
}

func (m *mockRepo) GetArticleCount() (int, error) {
	return len(m.articles), nil
}

func (m *mockRepo) GetArticlesForExtraction(limit int) ([]database.ArticleForExtraction, error) {
	return nil, nil
}

func (m *mockRepo) UpdateExtractedContent(articleID int64, content string, extractedAt time.Time) error {
	return nil
}

func (m *mockRepo) UpdateExtractionStatus(articleID int64, status string, errorMsg string) error {
	return nil
}

func newTestTopics(t *testing.T) *news.TopicCache {
	t.Helper()
	tempDir := t.TempDir()
	content := `
queries:
  gnews: "technology"
settings:
  enabled: true
`
	if err := os.WriteFile(filepath.Join(tempDir, "technology.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	topics := news.NewTopicCache(tempDir, "technology")
	if err := topics.Run(); err != nil {
		t.Fatal(err)
	}
	return topics
}

func newTestRouter(t *testing.T, searcher SearcherInterface, repo database.ArticleRepository, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewHandler(searcher, newTestTopics(t), news.NewAggregateCache(), repo)
	return NewServer(handler, apiKey)
}

func TestGetNews(t *testing.T) {
	searcher := &mockSearcher{
		response: news.Response{
			Items: []news.ResponseItem{{Title: "A headline", URL: "https://a.com/1"}},
			Meta:  news.Meta{Category: "technology", Timeframe: "last-day"},
		},
	}
	router := newTestRouter(t, searcher, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news/search?category=technology&timeframe=two-days&limit=5&debug=1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if searcher.lastRequest.Category != "technology" {
		t.Errorf("Expected category passed through, got '%s'", searcher.lastRequest.Category)
	}
	if searcher.lastRequest.Timeframe != news.TimeframeTwoDays {
		t.Errorf("Expected timeframe two-days, got '%s'", searcher.lastRequest.Timeframe)
	}
	if searcher.lastRequest.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", searcher.lastRequest.Limit)
	}
	if !searcher.lastRequest.Debug {
		t.Errorf("Expected debug flag to be set")
	}

	if w.Header().Get("X-Cache") != "MISS" {
		t.Errorf("Expected X-Cache MISS, got '%s'", w.Header().Get("X-Cache"))
	}
	if w.Header().Get("X-Cache-TTL") != "12h0m0s" {
		t.Errorf("Expected X-Cache-TTL for two-days, got '%s'", w.Header().Get("X-Cache-TTL"))
	}

	var resp news.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "A headline" {
		t.Errorf("Unexpected response body: %s", w.Body.String())
	}
}

func TestGetNewsCacheHitHeader(t *testing.T) {
	searcher := &mockSearcher{
		response: news.Response{Meta: news.Meta{ServedFromCache: true}},
	}
	router := newTestRouter(t, searcher, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news/search", nil)
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Cache") != "HIT" {
		t.Errorf("Expected X-Cache HIT, got '%s'", w.Header().Get("X-Cache"))
	}
}

func TestGetNewsSearchError(t *testing.T) {
	searcher := &mockSearcher{err: fmt.Errorf("topic with name 'technology' not found")}
	router := newTestRouter(t, searcher, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news/search", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(t, &mockSearcher{}, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["loaded_topics"] != float64(1) {
		t.Errorf("Expected 1 loaded topic, got %v", health["loaded_topics"])
	}
}

func TestGetStats(t *testing.T) {
	router := newTestRouter(t, &mockSearcher{}, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stats", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats["total_topics"] != float64(1) {
		t.Errorf("Expected 1 topic in stats, got %v", stats["total_topics"])
	}
}

func TestAPISaveArticleRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &mockSearcher{}, &mockRepo{}, "secret")

	body := bytes.NewBufferString(`{"title": "A headline", "url": "https://a.com/1"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/articles", body)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without API key, got %d", w.Code)
	}
}

func TestAPISaveArticle(t *testing.T) {
	repo := &mockRepo{}
	router := newTestRouter(t, &mockSearcher{}, repo, "secret")

	body := bytes.NewBufferString(`{"topic": "technology", "title": "A headline", "url": "https://a.com/1", "source": "A"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/articles", body)
	req.Header.Set("X-API-Key", "secret")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if repo.lastSave.URL != "https://a.com/1" {
		t.Errorf("Expected article to be saved, got %+v", repo.lastSave)
	}
}

func TestAPISaveArticleValidation(t *testing.T) {
	router := newTestRouter(t, &mockSearcher{}, &mockRepo{}, "secret")

	body := bytes.NewBufferString(`{"topic": "technology"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/articles", body)
	req.Header.Set("X-API-Key", "secret")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title and URL, got %d", w.Code)
	}
}

func TestAPIListArticlesBearerAuth(t *testing.T) {
	repo := &mockRepo{
		articles: []database.SavedArticle{
			{ID: 1, Title: "A headline", URL: "https://a.com/1", ExtractionStatus: "pending"},
		},
	}
	router := newTestRouter(t, &mockSearcher{}, repo, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with bearer token, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["total"] != float64(1) {
		t.Errorf("Expected 1 article, got %v", resp["total"])
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	router := newTestRouter(t, &mockSearcher{}, &mockRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/articles", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", w.Code)
	}
}
