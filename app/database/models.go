package database

import (
	"time"
)

// SavedArticle is an aggregated item the user kept for content generation.
type SavedArticle struct {
	ID                 int64
	Topic              string
	Title              string
	URL                string
	Source             string
	PublishedAt        string // provider-native date string, kept verbatim
	ImageURL           string
	Description        string
	Content            string // readable text extracted from the article page
	ExtractionStatus   string // pending, success, failed
	ExtractionError    string
	ExtractionAttempts int
	ExtractedAt        *time.Time
	CreatedAt          time.Time
}
