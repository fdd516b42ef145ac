package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ArticleRepository = (*SQLArticleRepository)(nil)

// SQLArticleRepository handles database operations for saved articles
type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// SaveArticle stores an article, updating topic and metadata when the URL
// was already saved. Returns the article's database ID.
func (r *SQLArticleRepository) SaveArticle(article SavedArticle) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO saved_articles (
			topic, title, url, source, published_at, image_url, description
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			topic = excluded.topic,
			title = excluded.title,
			source = excluded.source,
			published_at = excluded.published_at,
			image_url = excluded.image_url,
			description = excluded.description
		RETURNING id
	`, article.Topic, article.Title, article.URL, article.Source,
		article.PublishedAt, article.ImageURL, article.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save article: %w", err)
	}

	return id, nil
}

func (r *SQLArticleRepository) GetArticles(limit int) ([]SavedArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, topic, title, url, source, published_at, image_url,
		       description, content, extraction_status, extraction_error,
		       extraction_attempts, extracted_at, created_at
		FROM saved_articles
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	var articles []SavedArticle
	for rows.Next() {
		var article SavedArticle
		var extractedAt sql.NullTime
		err := rows.Scan(
			&article.ID, &article.Topic, &article.Title, &article.URL,
			&article.Source, &article.PublishedAt, &article.ImageURL,
			&article.Description, &article.Content, &article.ExtractionStatus,
			&article.ExtractionError, &article.ExtractionAttempts,
			&extractedAt, &article.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		if extractedAt.Valid {
			article.ExtractedAt = &extractedAt.Time
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM saved_articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticlesForExtraction returns saved articles still pending content
// extraction, oldest first.
func (r *SQLArticleRepository) GetArticlesForExtraction(limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM saved_articles
		WHERE extraction_status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var article ArticleForExtraction
		if err := rows.Scan(&article.ID, &article.URL); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) UpdateExtractedContent(articleID int64, content string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE saved_articles
		SET content = ?,
		    extraction_status = 'success',
		    extraction_error = '',
		    extraction_attempts = extraction_attempts + 1,
		    extracted_at = ?
		WHERE id = ?
	`, content, extractedAt, articleID)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

func (r *SQLArticleRepository) UpdateExtractionStatus(articleID int64, status string, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE saved_articles
		SET extraction_status = ?,
		    extraction_error = ?,
		    extraction_attempts = extraction_attempts + 1
		WHERE id = ?
	`, status, errorMsg, articleID)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}
