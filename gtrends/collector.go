package gtrends

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector is the public entry point for Google Trends collection.
type Collector struct {
	config Config
	client api
}

func New(cfg Config) *Collector {
	return &Collector{config: cfg, client: newClient(cfg)}
}

// Fetch collects trend data per spec. Interest-over-time is critical: if it
// fails the whole run fails. Related queries and regional breakdown are
// optional and degrade to empty fields.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	ctx, span := otelx.Tracer().Start(ctx, "gtrends.fetch")
	span.SetAttributes(attribute.String("gtrends.keywords", strings.Join(spec.Keywords, ",")))
	defer span.End()

	logger := connectors.LoggerFromContext(ctx).With("connector", "gtrends")
	result := &Result{
		Keywords:    spec.Keywords,
		Timeframe:   spec.timeframe(),
		Geo:         spec.Geo,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	logger.Info("fetching interest over time", "keywords", strings.Join(spec.Keywords, ","), "timeframe", result.Timeframe)
	points, err := c.client.interestOverTime(ctx, spec)
	if err != nil {
		// Critical fetch failed: abort before touching the optional fetches.
		logger.Error("interest over time failed", "error", err)
		result.Status = connectors.StatusFailed
		result.Error = err.Error()
		return result, nil
	}
	result.InterestOverTime = points
	if len(points) == 0 {
		logger.Warn("no interest over time data returned")
	}

	if spec.IncludeRelatedQueries {
		top, rising, err := c.client.relatedQueries(ctx, spec)
		if err != nil {
			logger.Warn("related queries failed, skipped", "error", err)
		} else {
			result.RelatedTop = top
			result.RelatedRising = rising
		}
	}

	if spec.IncludeInterestByRegion {
		byRegion, err := c.client.interestByRegion(ctx, spec)
		if err != nil {
			logger.Warn("interest by region failed, skipped", "error", err)
		} else {
			result.InterestByRegion = byRegion
		}
	}

	logger.Info("collected trends", "points", len(result.InterestOverTime))
	return result, nil
}

// TrendingSearches returns the current trending search terms for a region.
func (c *Collector) TrendingSearches(ctx context.Context, geo string) ([]string, error) {
	ctx, span := otelx.Tracer().Start(ctx, "gtrends.trending_searches")
	span.SetAttributes(attribute.String("gtrends.geo", geo))
	defer span.End()

	return c.client.trendingSearches(ctx, geo)
}
