package reddit

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/filter"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector is the public entry point for Reddit collection.
type Collector struct {
	config  Config
	client  api
	initErr error
}

// New builds a collector. Client construction errors are deferred to Fetch
// so a misbehaving provider shows up as a failed result, not a panic at
// wiring time.
func New(cfg Config) *Collector {
	c, err := newClient(cfg)
	if err != nil {
		return &Collector{config: cfg, initErr: err}
	}
	return &Collector{config: cfg, client: c}
}

// Fetch collects posts per spec. A failing subreddit is skipped; comment
// failures degrade to an empty comment list. Only client initialization is
// critical.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	prog, err := filter.Compile(spec.Filter)
	if err != nil {
		return nil, &connectors.ConfigError{Field: "filter", Msg: err.Error()}
	}

	ctx, span := otelx.Tracer().Start(ctx, "reddit.fetch")
	span.SetAttributes(attribute.Int("reddit.subreddits", len(spec.Subreddits)))
	defer span.End()

	logger := connectors.LoggerFromContext(ctx).With("connector", "reddit")
	result := &Result{
		Subreddits:  spec.Subreddits,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	if c.initErr != nil {
		logger.Error("reddit client unavailable", "error", c.initErr)
		result.Status = connectors.StatusFailed
		result.Error = c.initErr.Error()
		return result, nil
	}

	maxPosts := spec.MaxPosts
	if maxPosts <= 0 {
		maxPosts = 20
	}

	for _, raw := range spec.Subreddits {
		subreddit := normalizeSubreddit(raw)
		logger.Info("fetching subreddit", "subreddit", subreddit, "sort", spec.Sort)

		posts, err := c.client.submissions(ctx, subreddit, spec.Sort, maxPosts, spec.TimeFilter)
		if err != nil {
			// One bad subreddit never aborts the batch.
			logger.Error("subreddit fetch failed, skipping", "subreddit", subreddit, "error", err)
			continue
		}

		for _, post := range posts {
			if post == nil {
				continue
			}
			if spec.SkipStickied && post.Stickied {
				continue
			}
			keep, err := prog.Keep(map[string]interface{}{
				"Title":       post.Title,
				"Score":       post.Score,
				"NumComments": post.NumberOfComments,
				"Stickied":    post.Stickied,
				"Author":      post.Author,
			})
			if err != nil {
				logger.Warn("skipping post, filter error", "id", post.ID, "error", err)
				continue
			}
			if !keep {
				continue
			}

			p := Post{
				ID:          post.ID,
				Title:       post.Title,
				Text:        post.Body,
				Author:      post.Author,
				NumComments: post.NumberOfComments,
				Score:       post.Score,
				URL:         permalinkURL(post.Permalink),
				Subreddit:   subreddit,
				Stickied:    post.Stickied,
			}
			if post.Created != nil {
				p.CreatedAt = post.Created.Time.UTC()
			}

			if spec.IncludeComments {
				comments, err := c.client.comments(ctx, post.ID)
				if err != nil {
					// Comments are optional enrichment.
					logger.Warn("comment fetch failed, continuing without", "id", post.ID, "error", err)
				} else {
					p.Comments = comments
				}
			}

			result.Posts = append(result.Posts, p)
		}
	}

	logger.Info("collected posts", "count", len(result.Posts), "subreddits", len(spec.Subreddits))
	return result, nil
}

func permalinkURL(permalink string) string {
	if permalink == "" {
		return ""
	}
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if strings.HasPrefix(permalink, "/") {
		return "https://www.reddit.com" + permalink
	}
	return "https://www.reddit.com/" + permalink
}
