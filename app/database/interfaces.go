package database

import (
	"time"
)

type ArticleForExtraction struct {
	ID  int64
	URL string
}

type ArticleRepository interface {
	SaveArticle(article SavedArticle) (int64, error)
	GetArticles(limit int) ([]SavedArticle, error)
	GetArticleCount() (int, error)

	GetArticlesForExtraction(limit int) ([]ArticleForExtraction, error)
	UpdateExtractedContent(articleID int64, content string, extractedAt time.Time) error
	UpdateExtractionStatus(articleID int64, status string, errorMsg string) error
}
