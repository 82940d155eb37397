package gnews

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/filter"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector is the public entry point for GNews collection.
type Collector struct {
	config Config
	client api
}

func New(cfg Config) (*Collector, error) {
	if cfg.APIKey == "" {
		return nil, &connectors.ConfigError{Field: "api_key", Msg: "required"}
	}
	return &Collector{config: cfg, client: newClient(cfg)}, nil
}

// Fetch collects articles per spec. Operational failures land in
// Result.Status/Error; only caller misconfiguration returns an error.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	prog, err := filter.Compile(spec.Filter)
	if err != nil {
		return nil, &connectors.ConfigError{Field: "filter", Msg: err.Error()}
	}

	ctx, span := otelx.Tracer().Start(ctx, "gnews.fetch")
	span.SetAttributes(attribute.String("gnews.query", spec.Query))
	defer span.End()

	logger := connectors.LoggerFromContext(ctx).With("connector", "gnews")
	result := &Result{
		Query:       spec.Query,
		Language:    spec.Language,
		Country:     spec.Country,
		Category:    spec.Category,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	logger.Info("fetching articles", "query", spec.Query, "max", spec.Max)
	resp, err := c.client.search(ctx, spec)
	if err != nil {
		// Critical fetch failed: the whole run fails.
		logger.Error("article search failed", "error", err)
		result.Status = connectors.StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	c.appendArticles(ctx, result, resp, prog)
	logger.Info("collected articles", "count", len(result.Articles), "total_available", resp.TotalArticles)
	return result, nil
}

// TopHeadlines collects current headlines for the spec's category/country.
// The query is optional here.
func (c *Collector) TopHeadlines(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Language != "" && !allowedLanguages[spec.Language] {
		return nil, &connectors.ConfigError{Field: "language", Msg: "unsupported language code " + spec.Language}
	}
	prog, err := filter.Compile(spec.Filter)
	if err != nil {
		return nil, &connectors.ConfigError{Field: "filter", Msg: err.Error()}
	}

	ctx, span := otelx.Tracer().Start(ctx, "gnews.top_headlines")
	defer span.End()

	logger := connectors.LoggerFromContext(ctx).With("connector", "gnews")
	result := &Result{
		Query:       spec.Query,
		Language:    spec.Language,
		Country:     spec.Country,
		Category:    spec.Category,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	resp, err := c.client.topHeadlines(ctx, spec)
	if err != nil {
		logger.Error("top headlines fetch failed", "error", err)
		result.Status = connectors.StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	c.appendArticles(ctx, result, resp, prog)
	return result, nil
}

func (c *Collector) appendArticles(ctx context.Context, result *Result, resp *apiResponse, prog *filter.Program) {
	logger := connectors.LoggerFromContext(ctx).With("connector", "gnews")
	result.TotalArticles = resp.TotalArticles

	for _, a := range resp.Articles {
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			// Malformed article: skip it, keep the batch.
			logger.Warn("skipping article with bad timestamp", "title", a.Title, "error", err)
			continue
		}
		keep, err := prog.Keep(map[string]interface{}{
			"Title":       a.Title,
			"Description": a.Description,
			"SourceName":  a.Source.Name,
		})
		if err != nil {
			logger.Warn("skipping article, filter error", "title", a.Title, "error", err)
			continue
		}
		if !keep {
			continue
		}
		result.Articles = append(result.Articles, Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Image:       a.Image,
			PublishedAt: publishedAt,
			SourceName:  a.Source.Name,
			SourceURL:   a.Source.URL,
		})
	}
}
