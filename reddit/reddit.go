// Package reddit collects subreddit submissions, optionally with their full
// comment trees. Client initialization is the critical step; each subreddit
// is fetched independently and a failing subreddit never aborts the batch.
// Comment fetches are optional enrichment and degrade to an empty list.
package reddit

import (
	"strings"
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds Reddit API credentials and HTTP settings. Script-type
// credentials (username/password) are optional; without them the client is
// read-only.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	Timeout      time.Duration
	RateLimit    int // requests per minute, 0 = unlimited
}

// Spec describes what to collect on one run.
type Spec struct {
	Subreddits      []string // with or without the r/ prefix
	Sort            string   // hot, new, top, rising, controversial
	TimeFilter      string   // for top/controversial: hour, day, week, month, year, all
	MaxPosts        int      // per subreddit
	IncludeComments bool
	SkipStickied    bool

	// Filter is an optional expr-lang expression evaluated per post with
	// Title, Score, NumComments, Stickied, Author fields.
	Filter string
}

var allowedSorts = map[string]bool{
	"hot": true, "new": true, "top": true, "rising": true, "controversial": true,
}

func (s *Spec) validate() error {
	if len(s.Subreddits) == 0 {
		return &connectors.ConfigError{Field: "subreddits", Msg: "at least one subreddit required"}
	}
	if s.Sort != "" && !allowedSorts[strings.ToLower(s.Sort)] {
		return &connectors.ConfigError{Field: "sort", Msg: "unsupported sort " + s.Sort}
	}
	if s.MaxPosts < 0 {
		return &connectors.ConfigError{Field: "max_posts", Msg: "must be >= 0"}
	}
	return nil
}

// normalizeSubreddit strips the r/ prefix users tend to paste in.
func normalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return name
}

// Post is a single submission.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	NumComments int       `json:"num_comments"`
	Score       int       `json:"score"`
	URL         string    `json:"url"`
	Subreddit   string    `json:"subreddit"`
	Stickied    bool      `json:"stickied"`
	Comments    []string  `json:"comments,omitempty"`
}

// Result is the outcome of one Fetch call.
type Result struct {
	Posts       []Post            `json:"posts"`
	Subreddits  []string          `json:"subreddits"`
	CollectedAt time.Time         `json:"collected_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}
