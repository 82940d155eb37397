// Package gnews collects news articles from the GNews API
// (https://gnews.io/docs/v4). Search is the critical fetch; individual
// articles that fail to parse are skipped without failing the batch.
package gnews

import (
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds GNews credentials and HTTP settings. Treat as immutable once
// the collector is constructed.
type Config struct {
	APIKey    string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 = unlimited
	UserAgent string
}

// Spec describes what to collect on one run.
type Spec struct {
	Query    string
	Language string // en, es, fr, ...
	Country  string // us, gb, ...
	Category string // general, world, business, ...
	From     time.Time
	To       time.Time
	SortBy   string // publishedAt or relevance
	Max      int    // 1..100, API caps at 100

	// Filter is an optional expr-lang expression evaluated per article with
	// Title, Description, SourceName fields. Articles failing it are skipped.
	Filter string
}

// Article is a single news article.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Image       string    `json:"image,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
	SourceURL   string    `json:"source_url"`
}

// Result is the outcome of one Fetch call.
type Result struct {
	Articles      []Article         `json:"articles"`
	TotalArticles int               `json:"total_articles"`
	Query         string            `json:"query"`
	Language      string            `json:"language,omitempty"`
	Country       string            `json:"country,omitempty"`
	Category      string            `json:"category,omitempty"`
	CollectedAt   time.Time         `json:"collected_at"`
	Status        connectors.Status `json:"status"`
	Error         string            `json:"error,omitempty"`
}

var allowedLanguages = map[string]bool{
	"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
	"ru": true, "zh": true, "ja": true, "ko": true, "ar": true, "hi": true,
}

var allowedCategories = map[string]bool{
	"general": true, "world": true, "nation": true, "business": true,
	"technology": true, "entertainment": true, "sports": true,
	"science": true, "health": true,
}

func (s *Spec) validate() error {
	if s.Query == "" {
		return &connectors.ConfigError{Field: "query", Msg: "required"}
	}
	if s.Language != "" && !allowedLanguages[s.Language] {
		return &connectors.ConfigError{Field: "language", Msg: "unsupported language code " + s.Language}
	}
	if s.Category != "" && !allowedCategories[s.Category] {
		return &connectors.ConfigError{Field: "category", Msg: "unsupported category " + s.Category}
	}
	if s.SortBy != "" && s.SortBy != "publishedAt" && s.SortBy != "relevance" {
		return &connectors.ConfigError{Field: "sort_by", Msg: "must be publishedAt or relevance"}
	}
	if s.Max < 0 || s.Max > 100 {
		return &connectors.ConfigError{Field: "max", Msg: "must be between 0 and 100"}
	}
	return nil
}
