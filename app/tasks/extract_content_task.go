package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/database"
)

// extractBatchSize caps how many pending articles one task run processes.
const extractBatchSize = 10

type ExtractContentTask struct {
	Task
	httpClient  *http.Client
	extractor   *content.Extractor
	articleRepo database.ArticleRepository
	userAgent   string
}

func NewExtractContentTask(httpClient *http.Client, extractor *content.Extractor, articleRepo database.ArticleRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:        NewTask(TaskTypeExtractContent),
		httpClient:  httpClient,
		extractor:   extractor,
		articleRepo: articleRepo,
		userAgent:   userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(extractBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No saved articles pending content extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := t.extractContentForArticle(ctx, article)
		if err != nil {
			slog.Error("Failed to extract content for article", "article_id", article.ID, "url", article.URL, "error", err)
			errorCount++

			if updateErr := t.articleRepo.UpdateExtractionStatus(article.ID, "failed", err.Error()); updateErr != nil {
				slog.Error("Failed to update extraction status", "article_id", article.ID, "error", updateErr)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForArticle(ctx context.Context, article database.ArticleForExtraction) error {
	if article.URL == "" {
		return fmt.Errorf("article has no URL")
	}

	data, err := t.fetchArticlePage(ctx, article.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	extractedContent, err := t.extractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	err = t.articleRepo.UpdateExtractedContent(article.ID, extractedContent, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "article_id", article.ID, "url", article.URL, "content_length", len(extractedContent))
	return nil
}

func (t *ExtractContentTask) fetchArticlePage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
