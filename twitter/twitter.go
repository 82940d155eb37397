// Package twitter collects recent tweets through the Twitter API v2
// /tweets/search/recent endpoint. The search is the critical fetch; tweets
// that fail to parse are skipped individually.
package twitter

import (
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds the API v2 bearer token and HTTP settings.
type Config struct {
	BearerToken string
	Timeout     time.Duration
	RateLimit   int // requests per minute, 0 = unlimited
	UserAgent   string
}

// Spec describes one search run.
type Spec struct {
	Query      string
	MaxResults int // 10..100 per the API
	StartTime  time.Time
	EndTime    time.Time
}

func (s *Spec) validate() error {
	if s.Query == "" {
		return &connectors.ConfigError{Field: "query", Msg: "required"}
	}
	if s.MaxResults != 0 && (s.MaxResults < 10 || s.MaxResults > 100) {
		return &connectors.ConfigError{Field: "max_results", Msg: "must be between 10 and 100"}
	}
	return nil
}

// Tweet is a single tweet with public engagement metrics.
type Tweet struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int       `json:"like_count"`
	RetweetCount int       `json:"retweet_count"`
	ReplyCount   int       `json:"reply_count"`
	QuoteCount   int       `json:"quote_count"`
}

// Result is the outcome of one Fetch call.
type Result struct {
	Tweets      []Tweet           `json:"tweets"`
	Query       string            `json:"query"`
	CollectedAt time.Time         `json:"collected_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}
