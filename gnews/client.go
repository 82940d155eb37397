package gnews

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/signalhouse/connectors/internal/httpx"
)

const baseURL = "https://gnews.io/api/v4"

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

// api is the low-level surface the collector drives, split out so tests can
// substitute a fake.
type api interface {
	search(ctx context.Context, spec Spec) (*apiResponse, error)
	topHeadlines(ctx context.Context, spec Spec) (*apiResponse, error)
}

type client struct {
	http   *httpx.Client
	apiKey string
}

func newClient(cfg Config) *client {
	return &client{
		http: httpx.New("gnews", httpx.Options{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: cfg.UserAgent,
		}),
		apiKey: cfg.APIKey,
	}
}

func (c *client) search(ctx context.Context, spec Spec) (*apiResponse, error) {
	return c.get(ctx, baseURL+"/search", spec, true)
}

func (c *client) topHeadlines(ctx context.Context, spec Spec) (*apiResponse, error) {
	return c.get(ctx, baseURL+"/top-headlines", spec, false)
}

func (c *client) get(ctx context.Context, endpoint string, spec Spec, withQuery bool) (*apiResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	if withQuery {
		params.Set("q", spec.Query)
	} else if spec.Query != "" {
		params.Set("q", spec.Query)
	}

	max := spec.Max
	if max <= 0 {
		max = 10
	}
	params.Set("max", strconv.Itoa(max))

	sortBy := spec.SortBy
	if sortBy == "" {
		sortBy = "publishedAt"
	}
	params.Set("sortby", sortBy)

	if spec.Language != "" {
		params.Set("lang", spec.Language)
	}
	if spec.Country != "" {
		params.Set("country", spec.Country)
	}
	if spec.Category != "" {
		// GNews names this parameter "topic".
		params.Set("topic", spec.Category)
	}
	if !spec.From.IsZero() {
		params.Set("from", spec.From.UTC().Format(time.RFC3339))
	}
	if !spec.To.IsZero() {
		params.Set("to", spec.To.UTC().Format(time.RFC3339))
	}

	var resp apiResponse
	if err := c.http.GetJSON(ctx, endpoint, params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
