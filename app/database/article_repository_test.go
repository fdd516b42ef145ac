package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *SQLArticleRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return NewArticleRepository(db)
}

func testArticle(url string) SavedArticle {
	return SavedArticle{
		Topic:       "technology",
		Title:       "A sufficiently long headline",
		URL:         url,
		Source:      "Example",
		PublishedAt: "2026-08-29T10:00:00Z",
		Description: "Description",
	}
}

func TestSaveArticle(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.SaveArticle(testArticle("https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Errorf("Expected non-zero article ID")
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article, got %d", count)
	}
}

func TestSaveArticleUpsertsOnURL(t *testing.T) {
	repo := newTestRepo(t)

	first, err := repo.SaveArticle(testArticle("https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}

	updated := testArticle("https://example.com/a")
	updated.Title = "An updated headline for the same URL"
	second, err := repo.SaveArticle(updated)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("Expected same ID for same URL, got %d and %d", first, second)
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article after upsert, got %d", count)
	}

	articles, err := repo.GetArticles(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Title != "An updated headline for the same URL" {
		t.Errorf("Expected upsert to update title, got '%s'", articles[0].Title)
	}
}

func TestGetArticlesForExtraction(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.SaveArticle(testArticle("https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.SaveArticle(testArticle("https://example.com/b")); err != nil {
		t.Fatal(err)
	}

	pending, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending articles, got %d", len(pending))
	}

	if err := repo.UpdateExtractedContent(id, "<p>extracted</p>", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	pending, err = repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("Expected 1 pending article after extraction, got %d", len(pending))
	}
}

func TestUpdateExtractedContent(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.SaveArticle(testArticle("https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateExtractedContent(id, "<p>extracted</p>", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	articles, err := repo.GetArticles(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}

	article := articles[0]
	if article.ExtractionStatus != "success" {
		t.Errorf("Expected status 'success', got '%s'", article.ExtractionStatus)
	}
	if article.Content != "<p>extracted</p>" {
		t.Errorf("Expected content to be stored, got '%s'", article.Content)
	}
	if article.ExtractionAttempts != 1 {
		t.Errorf("Expected 1 extraction attempt, got %d", article.ExtractionAttempts)
	}
	if article.ExtractedAt == nil {
		t.Errorf("Expected extracted_at to be set")
	}
}

func TestUpdateExtractionStatus(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.SaveArticle(testArticle("https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateExtractionStatus(id, "failed", "HTTP error: 404"); err != nil {
		t.Fatal(err)
	}

	articles, err := repo.GetArticles(10)
	if err != nil {
		t.Fatal(err)
	}

	article := articles[0]
	if article.ExtractionStatus != "failed" {
		t.Errorf("Expected status 'failed', got '%s'", article.ExtractionStatus)
	}
	if article.ExtractionError != "HTTP error: 404" {
		t.Errorf("Expected error message to be stored, got '%s'", article.ExtractionError)
	}
	if article.ExtractionAttempts != 1 {
		t.Errorf("Expected 1 extraction attempt, got %d", article.ExtractionAttempts)
	}

	// failed articles are not retried automatically
	pending, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no pending articles, got %d", len(pending))
	}
}
