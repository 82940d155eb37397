package twitter

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector is the public entry point for Twitter collection.
type Collector struct {
	config Config
	client api
}

func New(cfg Config) (*Collector, error) {
	if cfg.BearerToken == "" {
		return nil, &connectors.ConfigError{Field: "bearer_token", Msg: "required"}
	}
	return &Collector{config: cfg, client: newClient(cfg)}, nil
}

// Fetch searches recent tweets per spec. Operational failures land in
// Result.Status/Error; only caller misconfiguration returns an error.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	ctx, span := otelx.Tracer().Start(ctx, "twitter.fetch")
	span.SetAttributes(attribute.String("twitter.query", spec.Query))
	defer span.End()

	logger := connectors.LoggerFromContext(ctx).With("connector", "twitter")
	result := &Result{
		Query:       spec.Query,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	logger.Info("searching tweets", "query", spec.Query)
	resp, err := c.client.searchRecent(ctx, spec)
	if err != nil {
		logger.Error("tweet search failed", "error", err)
		result.Status = connectors.StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	for _, t := range resp.Data {
		createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			logger.Warn("skipping tweet with bad timestamp", "id", t.ID, "error", err)
			continue
		}
		result.Tweets = append(result.Tweets, Tweet{
			ID:           t.ID,
			Text:         t.Text,
			AuthorID:     t.AuthorID,
			CreatedAt:    createdAt,
			LikeCount:    t.PublicMetrics.LikeCount,
			RetweetCount: t.PublicMetrics.RetweetCount,
			ReplyCount:   t.PublicMetrics.ReplyCount,
			QuoteCount:   t.PublicMetrics.QuoteCount,
		})
	}

	logger.Info("collected tweets", "count", len(result.Tweets))
	return result, nil
}
