package gtrends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalhouse/connectors"
)

type fakeAPI struct {
	points     []TrendPoint
	iotErr     error
	top        map[string][]RelatedQuery
	rising     map[string][]RelatedQuery
	relatedErr error
	regions    map[string]map[string]int
	regionErr  error
	trending   []string

	iotCalls     int
	relatedCalls int
	regionCalls  int
}

func (f *fakeAPI) interestOverTime(ctx context.Context, spec Spec) ([]TrendPoint, error) {
	f.iotCalls++
	return f.points, f.iotErr
}

func (f *fakeAPI) relatedQueries(ctx context.Context, spec Spec) (map[string][]RelatedQuery, map[string][]RelatedQuery, error) {
	f.relatedCalls++
	return f.top, f.rising, f.relatedErr
}

func (f *fakeAPI) interestByRegion(ctx context.Context, spec Spec) (map[string]map[string]int, error) {
	f.regionCalls++
	return f.regions, f.regionErr
}

func (f *fakeAPI) trendingSearches(ctx context.Context, geo string) ([]string, error) {
	return f.trending, nil
}

func samplePoints() []TrendPoint {
	return []TrendPoint{
		{Keyword: "bitcoin", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Interest: 70},
		{Keyword: "bitcoin", Date: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), Interest: 85, IsPartial: true},
	}
}

func TestFetchCriticalFailureSkipsOptionalFetches(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{iotErr: connectors.Transient("gtrends", "request", errors.New("widget timeout"))}
	c := &Collector{client: fake}

	result, err := c.Fetch(context.Background(), Spec{
		Keywords:                []string{"bitcoin"},
		IncludeRelatedQueries:   true,
		IncludeInterestByRegion: true,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Status != connectors.StatusFailed {
		t.Fatalf("Status = %q, want failed", result.Status)
	}
	if fake.relatedCalls != 0 || fake.regionCalls != 0 {
		t.Fatalf("optional fetches attempted after critical failure: related=%d region=%d", fake.relatedCalls, fake.regionCalls)
	}
	if result.Timeframe != "today 3-m" {
		t.Errorf("Timeframe echo = %q", result.Timeframe)
	}
}

func TestFetchOptionalFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		points:     samplePoints(),
		relatedErr: connectors.Transient("gtrends", "request", errors.New("429")),
		regions:    map[string]map[string]int{"bitcoin": {"California": 100}},
	}
	c := &Collector{client: fake}

	result, err := c.Fetch(context.Background(), Spec{
		Keywords:                []string{"bitcoin"},
		IncludeRelatedQueries:   true,
		IncludeInterestByRegion: true,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Status != connectors.StatusSuccess {
		t.Fatalf("Status = %q, optional failure must not fail the run", result.Status)
	}
	if result.RelatedTop != nil || result.RelatedRising != nil {
		t.Errorf("related queries should be empty after optional failure")
	}
	if len(result.InterestByRegion) != 1 {
		t.Errorf("InterestByRegion = %+v, remaining optional fetch should still run", result.InterestByRegion)
	}
	if len(result.InterestOverTime) != 2 {
		t.Errorf("InterestOverTime = %+v", result.InterestOverTime)
	}
}

func TestFetchSkipsOptionalFetchesWhenNotRequested(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{points: samplePoints()}
	c := &Collector{client: fake}

	if _, err := c.Fetch(context.Background(), Spec{Keywords: []string{"bitcoin"}}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fake.relatedCalls != 0 || fake.regionCalls != 0 {
		t.Fatalf("optional fetches ran without being requested")
	}
}

func TestFetchValidatesSpec(t *testing.T) {
	t.Parallel()

	c := &Collector{client: &fakeAPI{}}
	specs := []Spec{
		{},
		{Keywords: []string{"a", "b", "c", "d", "e", "f"}},
		{Keywords: []string{""}},
	}
	for _, spec := range specs {
		_, err := c.Fetch(context.Background(), spec)
		var cfgErr *connectors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("spec %+v: err = %v, want ConfigError", spec, err)
		}
	}
}

func TestTrendingSearches(t *testing.T) {
	t.Parallel()

	c := &Collector{client: &fakeAPI{trending: []string{"solar eclipse", "transfer deadline"}}}
	got, err := c.TrendingSearches(context.Background(), "US")
	if err != nil {
		t.Fatalf("TrendingSearches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("trending = %v", got)
	}
}
