package gtrends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/httpx"
)

const (
	exploreURL      = "https://trends.google.com/trends/api/explore"
	multilineURL    = "https://trends.google.com/trends/api/widgetdata/multiline"
	relatedURL      = "https://trends.google.com/trends/api/widgetdata/relatedsearches"
	comparedGeoURL  = "https://trends.google.com/trends/api/widgetdata/comparedgeo"
	trendingRSSURL  = "https://trends.google.com/trending/rss"
	defaultLanguage = "en-US"
)

// api is the low-level surface the collector drives, split out so tests can
// substitute a fake.
type api interface {
	interestOverTime(ctx context.Context, spec Spec) ([]TrendPoint, error)
	relatedQueries(ctx context.Context, spec Spec) (top, rising map[string][]RelatedQuery, err error)
	interestByRegion(ctx context.Context, spec Spec) (map[string]map[string]int, error)
	trendingSearches(ctx context.Context, geo string) ([]string, error)
}

type client struct {
	http     *httpx.Client
	language string
	timezone int
}

func newClient(cfg Config) *client {
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	return &client{
		http: httpx.New("gtrends", httpx.Options{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: cfg.UserAgent,
		}),
		language: language,
		timezone: cfg.Timezone,
	}
}

// widget is one entry of the explore response. Request is echoed back
// verbatim to the widgetdata endpoints.
type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

// explore resolves the widget tokens for a spec. Every widgetdata call needs
// the token and request blob issued here.
func (c *client) explore(ctx context.Context, spec Spec) (*exploreResponse, error) {
	type comparisonItem struct {
		Keyword string `json:"keyword"`
		Geo     string `json:"geo"`
		Time    string `json:"time"`
	}
	req := struct {
		ComparisonItem []comparisonItem `json:"comparisonItem"`
		Category       int              `json:"category"`
		Property       string           `json:"property"`
	}{Category: spec.Category, Property: ""}
	for _, kw := range spec.Keywords {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{
			Keyword: kw,
			Geo:     spec.Geo,
			Time:    spec.timeframe(),
		})
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, connectors.Permanent("gtrends", "encode explore request", err)
	}

	params := c.baseParams()
	params.Set("req", string(reqJSON))

	body, err := c.http.Get(ctx, exploreURL, params, nil)
	if err != nil {
		return nil, err
	}

	var resp exploreResponse
	if err := unmarshalPrefixed(body, &resp); err != nil {
		return nil, connectors.Permanent("gtrends", "decode explore response", err)
	}
	if len(resp.Widgets) == 0 {
		return nil, connectors.Permanent("gtrends", "explore", errors.New("no widgets in response"))
	}
	return &resp, nil
}

func (c *client) interestOverTime(ctx context.Context, spec Spec) ([]TrendPoint, error) {
	resp, err := c.explore(ctx, spec)
	if err != nil {
		return nil, err
	}
	w := findWidget(resp.Widgets, "TIMESERIES")
	if w == nil {
		return nil, connectors.Permanent("gtrends", "explore", errors.New("no TIMESERIES widget"))
	}

	var data struct {
		Default struct {
			TimelineData []struct {
				Time      string `json:"time"`
				Value     []int  `json:"value"`
				IsPartial bool   `json:"isPartial"`
			} `json:"timelineData"`
		} `json:"default"`
	}
	if err := c.widgetData(ctx, multilineURL, w, &data); err != nil {
		return nil, err
	}

	var points []TrendPoint
	for _, row := range data.Default.TimelineData {
		secs, err := strconv.ParseInt(row.Time, 10, 64)
		if err != nil {
			continue
		}
		date := time.Unix(secs, 0).UTC()
		for i, kw := range spec.Keywords {
			if i >= len(row.Value) {
				break
			}
			points = append(points, TrendPoint{
				Keyword:   kw,
				Date:      date,
				Interest:  row.Value[i],
				IsPartial: row.IsPartial,
			})
		}
	}
	return points, nil
}

func (c *client) relatedQueries(ctx context.Context, spec Spec) (map[string][]RelatedQuery, map[string][]RelatedQuery, error) {
	resp, err := c.explore(ctx, spec)
	if err != nil {
		return nil, nil, err
	}

	top := make(map[string][]RelatedQuery)
	rising := make(map[string][]RelatedQuery)
	for i := range resp.Widgets {
		w := &resp.Widgets[i]
		if w.ID != "RELATED_QUERIES" {
			continue
		}
		keyword := widgetKeyword(w.Request)
		if keyword == "" && len(spec.Keywords) == 1 {
			keyword = spec.Keywords[0]
		}
		if keyword == "" {
			continue
		}

		var data struct {
			Default struct {
				RankedList []struct {
					RankedKeyword []struct {
						Query          string `json:"query"`
						Value          int    `json:"value"`
						FormattedValue string `json:"formattedValue"`
					} `json:"rankedKeyword"`
				} `json:"rankedList"`
			} `json:"default"`
		}
		if err := c.widgetData(ctx, relatedURL, w, &data); err != nil {
			return nil, nil, err
		}

		// The first ranked list is "top", the second "rising".
		for listIdx, list := range data.Default.RankedList {
			for _, rk := range list.RankedKeyword {
				q := RelatedQuery{Query: rk.Query, Value: rk.Value}
				if rk.FormattedValue == "Breakout" {
					q.Value = -1
				}
				if listIdx == 0 {
					top[keyword] = append(top[keyword], q)
				} else {
					rising[keyword] = append(rising[keyword], q)
				}
			}
		}
	}
	return top, rising, nil
}

func (c *client) interestByRegion(ctx context.Context, spec Spec) (map[string]map[string]int, error) {
	resp, err := c.explore(ctx, spec)
	if err != nil {
		return nil, err
	}
	w := findWidget(resp.Widgets, "GEO_MAP")
	if w == nil {
		w = findWidget(resp.Widgets, "GEO_MAP_0")
	}
	if w == nil {
		return nil, connectors.Permanent("gtrends", "explore", errors.New("no GEO_MAP widget"))
	}

	var data struct {
		Default struct {
			GeoMapData []struct {
				GeoName string `json:"geoName"`
				Value   []int  `json:"value"`
				HasData []bool `json:"hasData"`
			} `json:"geoMapData"`
		} `json:"default"`
	}
	if err := c.widgetData(ctx, comparedGeoURL, w, &data); err != nil {
		return nil, err
	}

	byRegion := make(map[string]map[string]int)
	for _, region := range data.Default.GeoMapData {
		for i, kw := range spec.Keywords {
			if i >= len(region.Value) || region.Value[i] == 0 {
				continue
			}
			if byRegion[kw] == nil {
				byRegion[kw] = make(map[string]int)
			}
			byRegion[kw][region.GeoName] = region.Value[i]
		}
	}
	return byRegion, nil
}

func (c *client) trendingSearches(ctx context.Context, geo string) ([]string, error) {
	if geo == "" {
		geo = "US"
	}
	params := url.Values{}
	params.Set("geo", geo)

	body, err := c.http.Get(ctx, trendingRSSURL, params, nil)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, connectors.Permanent("gtrends", "parse trending feed", err)
	}

	trending := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item != nil && item.Title != "" {
			trending = append(trending, item.Title)
		}
	}
	return trending, nil
}

func (c *client) widgetData(ctx context.Context, endpoint string, w *widget, out any) error {
	params := c.baseParams()
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)

	body, err := c.http.Get(ctx, endpoint, params, nil)
	if err != nil {
		return err
	}
	if err := unmarshalPrefixed(body, out); err != nil {
		return connectors.Permanent("gtrends", "decode widget data", err)
	}
	return nil
}

func (c *client) baseParams() url.Values {
	params := url.Values{}
	params.Set("hl", c.language)
	params.Set("tz", strconv.Itoa(c.timezone))
	return params
}

func findWidget(widgets []widget, id string) *widget {
	for i := range widgets {
		if widgets[i].ID == id {
			return &widgets[i]
		}
	}
	return nil
}

// widgetKeyword pulls the keyword a RELATED_QUERIES widget is scoped to out
// of its echoed request blob.
func widgetKeyword(request json.RawMessage) string {
	var req struct {
		Restriction struct {
			ComplexKeywordsRestriction struct {
				Keyword []struct {
					Value string `json:"value"`
				} `json:"keyword"`
			} `json:"complexKeywordsRestriction"`
		} `json:"restriction"`
	}
	if err := json.Unmarshal(request, &req); err != nil {
		return ""
	}
	if kws := req.Restriction.ComplexKeywordsRestriction.Keyword; len(kws) > 0 {
		return kws[0].Value
	}
	return ""
}

// unmarshalPrefixed strips the anti-XSSI prefix (`)]}'` plus an optional
// comma) Google puts in front of the JSON payload.
func unmarshalPrefixed(body []byte, out any) error {
	idx := bytes.IndexAny(body, "{[")
	if idx < 0 {
		return errors.New("no JSON payload in response")
	}
	return json.Unmarshal(body[idx:], out)
}
