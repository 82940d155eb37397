package twitter

import (
	"context"
	"errors"
	"testing"

	"github.com/signalhouse/connectors"
)

type fakeAPI struct {
	resp     *apiResponse
	err      error
	lastSpec Spec
}

func (f *fakeAPI) searchRecent(ctx context.Context, spec Spec) (*apiResponse, error) {
	f.lastSpec = spec
	return f.resp, f.err
}

func TestFetchMapsTweets(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{resp: &apiResponse{Data: []apiTweet{
		{ID: "1", Text: "hello", AuthorID: "42", CreatedAt: "2026-08-30T10:00:00Z"},
		{ID: "2", Text: "bad ts", AuthorID: "42", CreatedAt: "yesterday"},
	}}}
	fake.resp.Data[0].PublicMetrics.LikeCount = 7

	c := &Collector{config: Config{BearerToken: "t"}, client: fake}
	result, err := c.Fetch(context.Background(), Spec{Query: "golang", MaxResults: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Status != connectors.StatusSuccess {
		t.Fatalf("Status = %q", result.Status)
	}
	if len(result.Tweets) != 1 {
		t.Fatalf("Tweets = %d, malformed tweet should be skipped", len(result.Tweets))
	}
	if result.Tweets[0].LikeCount != 7 {
		t.Errorf("LikeCount = %d", result.Tweets[0].LikeCount)
	}
}

func TestFetchSearchFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{err: &connectors.RateLimitError{Provider: "twitter"}}
	c := &Collector{config: Config{BearerToken: "t"}, client: fake}
	result, err := c.Fetch(context.Background(), Spec{Query: "golang"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Status != connectors.StatusFailed || result.Error == "" {
		t.Fatalf("result = %+v, want failed with error", result)
	}
	if result.Query != "golang" {
		t.Errorf("Query echo = %q", result.Query)
	}
}

func TestFetchValidatesSpec(t *testing.T) {
	t.Parallel()

	c := &Collector{config: Config{BearerToken: "t"}, client: &fakeAPI{}}
	for _, spec := range []Spec{{}, {Query: "x", MaxResults: 5}, {Query: "x", MaxResults: 101}} {
		_, err := c.Fetch(context.Background(), spec)
		var cfgErr *connectors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("spec %+v: err = %v, want ConfigError", spec, err)
		}
	}
}

func TestNewRequiresBearerToken(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	var cfgErr *connectors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}
