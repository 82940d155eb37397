package telegram

import (
	"context"
	"time"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/filter"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector fetches channel messages for a Spec over one MTProto session
// per Fetch call.
type Collector struct {
	cfg     Config
	api     api
	initErr error
}

func New(cfg Config) *Collector {
	c := &Collector{cfg: cfg}
	if err := cfg.validate(); err != nil {
		c.initErr = err
		return c
	}
	c.api = newClient(cfg)
	return c
}

// Fetch collects recent messages from every channel in the spec. Failing to
// establish or authenticate the session fails the whole batch; a single
// channel failing is skipped; a reply fetch failing leaves that message
// without replies.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	ctx, span := otelx.Tracer().Start(ctx, "telegram.Fetch")
	defer span.End()
	logger := connectors.LoggerFromContext(ctx)

	result := &Result{
		Channels:    spec.Channels,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}
	if c.initErr != nil {
		result.Status = connectors.StatusFailed
		result.Error = c.initErr.Error()
		return result, nil
	}

	prog, err := filter.Compile(spec.Filter)
	if err != nil {
		return nil, &connectors.ConfigError{Field: "filter", Msg: err.Error()}
	}

	limit := spec.MessagesPerChannel
	if limit <= 0 {
		limit = 50
	}
	replyLimit := spec.RepliesPerMessage
	if replyLimit <= 0 {
		replyLimit = 20
	}
	var since time.Time
	if spec.DaysBack > 0 {
		since = time.Now().UTC().AddDate(0, 0, -spec.DaysBack)
	}

	err = c.api.run(ctx, func(ctx context.Context, s conn) error {
		for _, channel := range spec.Channels {
			messages, err := s.channelMessages(ctx, channel, limit, since)
			if err != nil {
				logger.WarnContext(ctx, "skipping channel",
					"channel", channel, "error", err)
				continue
			}
			for _, msg := range messages {
				keep, err := prog.Keep(map[string]interface{}{
					"Text":       msg.Text,
					"Channel":    msg.Channel,
					"Views":      msg.Views,
					"Forwards":   msg.Forwards,
					"ReplyCount": msg.ReplyCount,
				})
				if err != nil {
					logger.WarnContext(ctx, "filter error, keeping message",
						"channel", msg.Channel, "message_id", msg.ID, "error", err)
				} else if !keep {
					continue
				}
				if spec.IncludeReplies && msg.ReplyCount > 0 {
					replies, err := s.messageReplies(ctx, msg.Channel, msg.ID, replyLimit)
					if err != nil {
						logger.WarnContext(ctx, "reply fetch failed",
							"channel", msg.Channel, "message_id", msg.ID, "error", err)
					} else {
						msg.Replies = replies
					}
				}
				result.Messages = append(result.Messages, msg)
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "telegram session failed", "error", err)
		result.Status = connectors.StatusFailed
		result.Error = err.Error()
		result.Messages = nil
		return result, nil
	}

	logger.InfoContext(ctx, "telegram collection complete",
		"channels", len(spec.Channels), "messages", len(result.Messages))
	return result, nil
}
