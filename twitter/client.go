package twitter

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/signalhouse/connectors/internal/httpx"
)

const searchRecentURL = "https://api.twitter.com/2/tweets/search/recent"

type apiTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

type apiResponse struct {
	Data []apiTweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

type api interface {
	searchRecent(ctx context.Context, spec Spec) (*apiResponse, error)
}

type client struct {
	http   *httpx.Client
	bearer string
}

func newClient(cfg Config) *client {
	return &client{
		http: httpx.New("twitter", httpx.Options{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: cfg.UserAgent,
		}),
		bearer: cfg.BearerToken,
	}
}

func (c *client) searchRecent(ctx context.Context, spec Spec) (*apiResponse, error) {
	max := spec.MaxResults
	if max == 0 {
		max = 10
	}

	params := url.Values{}
	params.Set("query", spec.Query)
	params.Set("max_results", strconv.Itoa(max))
	params.Set("tweet.fields", "created_at,author_id,public_metrics")
	if !spec.StartTime.IsZero() {
		params.Set("start_time", spec.StartTime.UTC().Format(time.RFC3339))
	}
	if !spec.EndTime.IsZero() {
		params.Set("end_time", spec.EndTime.UTC().Format(time.RFC3339))
	}

	headers := map[string]string{"Authorization": "Bearer " + c.bearer}

	var resp apiResponse
	if err := c.http.GetJSON(ctx, searchRecentURL, params, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
