// Package gtrends collects Google Trends data through the unofficial widget
// API that backs trends.google.com (the same endpoints pytrends drives), and
// trending searches through the public RSS feed.
//
// Interest-over-time is the critical fetch; related queries and regional
// breakdown are optional enrichment whose failures degrade to empty fields.
package gtrends

import (
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds Google Trends client settings. No credentials are required.
type Config struct {
	Language  string // hl parameter, default en-US
	Timezone  int    // tz parameter, minutes west of UTC
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 = unlimited
	UserAgent string
}

// Spec describes one collection run.
type Spec struct {
	Keywords  []string // 1..5, the API limit per request
	Timeframe string   // "now 1-d", "today 3-m", "today 12-m", ...
	Geo       string   // "US", "GB", "" for worldwide
	Category  int      // 0 for all categories

	IncludeRelatedQueries   bool
	IncludeInterestByRegion bool
}

func (s *Spec) validate() error {
	if len(s.Keywords) == 0 {
		return &connectors.ConfigError{Field: "keywords", Msg: "at least one keyword required"}
	}
	if len(s.Keywords) > 5 {
		return &connectors.ConfigError{Field: "keywords", Msg: "at most 5 keywords per request"}
	}
	for _, kw := range s.Keywords {
		if kw == "" {
			return &connectors.ConfigError{Field: "keywords", Msg: "empty keyword"}
		}
	}
	return nil
}

func (s *Spec) timeframe() string {
	if s.Timeframe == "" {
		return "today 3-m"
	}
	return s.Timeframe
}

// TrendPoint is one interest measurement for one keyword.
type TrendPoint struct {
	Keyword   string    `json:"keyword"`
	Date      time.Time `json:"date"`
	Interest  int       `json:"interest"` // 0..100
	IsPartial bool      `json:"is_partial"`
}

// RelatedQuery is a related search query. Value is -1 for "Breakout"
// entries, which the API reports without a numeric score.
type RelatedQuery struct {
	Query string `json:"query"`
	Value int    `json:"value"`
}

// Result is the outcome of one Fetch call.
type Result struct {
	Keywords  []string `json:"keywords"`
	Timeframe string   `json:"timeframe"`
	Geo       string   `json:"geo,omitempty"`

	InterestOverTime []TrendPoint              `json:"interest_over_time"`
	RelatedTop       map[string][]RelatedQuery `json:"related_queries_top,omitempty"`
	RelatedRising    map[string][]RelatedQuery `json:"related_queries_rising,omitempty"`
	InterestByRegion map[string]map[string]int `json:"interest_by_region,omitempty"`

	CollectedAt time.Time         `json:"collected_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}
