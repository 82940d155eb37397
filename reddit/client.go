package reddit

import (
	"context"
	"net/http"
	"strings"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/ratelimit"
	"github.com/signalhouse/connectors/internal/retry"
)

// api is the low-level surface the collector drives, split out so tests can
// substitute a fake.
type api interface {
	submissions(ctx context.Context, subreddit, sort string, limit int, timeFilter string) ([]*goreddit.Post, error)
	comments(ctx context.Context, postID string) ([]string, error)
}

type client struct {
	reddit  *goreddit.Client
	limiter *ratelimit.Limiter
	retry   retry.Config
}

func newClient(cfg Config) (*client, error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "signalhouse-connectors/0.1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	var (
		rc  *goreddit.Client
		err error
	)
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.Username != "" && cfg.Password != "" {
		rc, err = goreddit.NewClient(goreddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}, goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
	} else {
		rc, err = goreddit.NewReadonlyClient(goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
	}
	if err != nil {
		return nil, &connectors.AuthError{Provider: "reddit", Err: err}
	}

	return &client{
		reddit:  rc,
		limiter: ratelimit.PerMinute(cfg.RateLimit),
		retry:   retry.Default,
	}, nil
}

func (c *client) submissions(ctx context.Context, subreddit, sort string, limit int, timeFilter string) ([]*goreddit.Post, error) {
	var posts []*goreddit.Post
	err := retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}

		var (
			resp *goreddit.Response
			err  error
		)
		switch strings.ToLower(sort) {
		case "", "hot":
			posts, resp, err = c.reddit.Subreddit.HotPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
		case "new":
			posts, resp, err = c.reddit.Subreddit.NewPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
		case "rising":
			posts, resp, err = c.reddit.Subreddit.RisingPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
		case "top":
			posts, resp, err = c.reddit.Subreddit.TopPosts(ctx, subreddit, &goreddit.ListPostOptions{
				ListOptions: goreddit.ListOptions{Limit: limit},
				Time:        timeFilter,
			})
		case "controversial":
			posts, resp, err = c.reddit.Subreddit.ControversialPosts(ctx, subreddit, &goreddit.ListPostOptions{
				ListOptions: goreddit.ListOptions{Limit: limit},
				Time:        timeFilter,
			})
		default:
			return &connectors.ConfigError{Field: "sort", Msg: "unsupported sort " + sort}
		}
		return classify(resp, err, "fetch r/"+subreddit)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// comments returns every comment body in the post's tree, expanding "load
// more" stubs until the tree is complete.
func (c *client) comments(ctx context.Context, postID string) ([]string, error) {
	var pc *goreddit.PostAndComments
	err := retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		var (
			resp *goreddit.Response
			err  error
		)
		pc, resp, err = c.reddit.Post.Get(ctx, postID)
		return classify(resp, err, "fetch comments for "+postID)
	})
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, nil
	}

	for pc.HasMore() {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		if _, err := c.reddit.Post.LoadMoreComments(ctx, pc); err != nil {
			// Partial tree is still useful; stop expanding.
			break
		}
	}

	var bodies []string
	var walk func(cs []*goreddit.Comment)
	walk = func(cs []*goreddit.Comment) {
		for _, cm := range cs {
			if cm == nil {
				continue
			}
			body := strings.TrimSpace(cm.Body)
			if body != "" && body != "[deleted]" && body != "[removed]" {
				bodies = append(bodies, body)
			}
			if cm.Replies.Comments != nil {
				walk(cm.Replies.Comments)
			}
		}
	}
	walk(pc.Comments)
	return bodies, nil
}

func classify(resp *goreddit.Response, err error, op string) error {
	if err == nil {
		return nil
	}
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return &connectors.AuthError{Provider: "reddit", Err: err}
		case resp.StatusCode == http.StatusTooManyRequests:
			return &connectors.RateLimitError{Provider: "reddit", Err: err}
		case resp.StatusCode >= http.StatusInternalServerError:
			return connectors.Transient("reddit", op, err)
		}
	}
	return connectors.Permanent("reddit", op, err)
}
