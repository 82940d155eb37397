package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/ratelimit"
)

// api runs a connected session. Implemented by client and by test fakes.
type api interface {
	run(ctx context.Context, fn func(ctx context.Context, s conn) error) error
}

// conn is the per-session surface the collector uses.
type conn interface {
	channelMessages(ctx context.Context, channel string, limit int, since time.Time) ([]Message, error)
	messageReplies(ctx context.Context, channel string, msgID, limit int) ([]Reply, error)
}

type client struct {
	cfg Config
}

func newClient(cfg Config) *client {
	if cfg.SessionFile == "" {
		cfg.SessionFile = "telegram.session"
	}
	return &client{cfg: cfg}
}

// run connects, authenticates if the session file holds no authorization,
// and invokes fn while the connection is alive. API calls made through the
// session are throttled to stay under Telegram's flood limits.
func (c *client) run(ctx context.Context, fn func(ctx context.Context, s conn) error) error {
	tc := telegram.NewClient(c.cfg.APIID, c.cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.cfg.SessionFile},
	})
	err := tc.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(authenticator{cfg: c.cfg}, auth.SendCodeOptions{})
		if err := tc.Auth().IfNecessary(ctx, flow); err != nil {
			return &connectors.AuthError{Provider: "telegram", Err: err}
		}
		return fn(ctx, &tgConn{
			api:     tc.API(),
			limiter: ratelimit.PerMinute(c.cfg.RateLimit),
			peers:   map[string]*tg.InputPeerChannel{},
		})
	})
	if err != nil {
		var authErr *connectors.AuthError
		if errors.As(err, &authErr) {
			return err
		}
		return connectors.Transient("telegram", "session", err)
	}
	return nil
}

// authenticator feeds the login flow from the configured prompts. Sign-up is
// refused: collection requires an existing account.
type authenticator struct {
	cfg Config
}

func (a authenticator) Phone(_ context.Context) (string, error) {
	return a.cfg.Phone, nil
}

func (a authenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	if a.cfg.CodePrompt == nil {
		return "", &connectors.AuthError{Provider: "telegram",
			Err: fmt.Errorf("login code required but no code prompt configured")}
	}
	return a.cfg.CodePrompt(ctx)
}

func (a authenticator) Password(ctx context.Context) (string, error) {
	if a.cfg.PasswordPrompt == nil {
		return "", &connectors.AuthError{Provider: "telegram",
			Err: fmt.Errorf("2fa password required but no password prompt configured")}
	}
	return a.cfg.PasswordPrompt(ctx)
}

func (a authenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a authenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, fmt.Errorf("account sign-up is not supported")
}

// tgConn is the live MTProto session. Resolved channel peers are cached for
// the lifetime of the run.
type tgConn struct {
	api     *tg.Client
	limiter *ratelimit.Limiter
	peers   map[string]*tg.InputPeerChannel
}

func normalizeChannel(channel string) string {
	return strings.TrimPrefix(strings.TrimSpace(channel), "@")
}

func (s *tgConn) resolve(ctx context.Context, channel string) (*tg.InputPeerChannel, error) {
	name := normalizeChannel(channel)
	if peer, ok := s.peers[name]; ok {
		return peer, nil
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	resolved, err := s.api.ContactsResolveUsername(ctx, name)
	if err != nil {
		return nil, connectors.Transient("telegram", "resolve "+name, err)
	}
	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			peer := &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
			s.peers[name] = peer
			return peer, nil
		}
	}
	return nil, connectors.Permanent("telegram", "resolve "+name,
		fmt.Errorf("username does not refer to a channel"))
}

func (s *tgConn) channelMessages(ctx context.Context, channel string, limit int, since time.Time) ([]Message, error) {
	peer, err := s.resolve(ctx, channel)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	hist, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, connectors.Transient("telegram", "history "+channel, err)
	}

	name := normalizeChannel(channel)
	messages := make([]Message, 0, limit)
	for _, raw := range historyMessages(hist) {
		msg, ok := raw.(*tg.Message)
		if !ok {
			continue // service messages
		}
		date := time.Unix(int64(msg.Date), 0).UTC()
		if !since.IsZero() && date.Before(since) {
			continue
		}
		m := Message{
			ID:       msg.ID,
			Channel:  name,
			Text:     msg.Message,
			Date:     date,
			Views:    msg.Views,
			Forwards: msg.Forwards,
			URL:      fmt.Sprintf("https://t.me/%s/%d", name, msg.ID),
		}
		if replies, ok := msg.GetReplies(); ok {
			m.ReplyCount = replies.Replies
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (s *tgConn) messageReplies(ctx context.Context, channel string, msgID, limit int) ([]Reply, error) {
	peer, err := s.resolve(ctx, channel)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	hist, err := s.api.MessagesGetReplies(ctx, &tg.MessagesGetRepliesRequest{
		Peer:  peer,
		MsgID: msgID,
		Limit: limit,
	})
	if err != nil {
		return nil, connectors.Transient("telegram",
			fmt.Sprintf("replies %s/%d", normalizeChannel(channel), msgID), err)
	}

	replies := make([]Reply, 0, limit)
	for _, raw := range historyMessages(hist) {
		msg, ok := raw.(*tg.Message)
		if !ok {
			continue
		}
		r := Reply{
			ID:   msg.ID,
			Text: msg.Message,
			Date: time.Unix(int64(msg.Date), 0).UTC(),
		}
		if from, ok := msg.GetFromID(); ok {
			if u, ok := from.(*tg.PeerUser); ok {
				r.SenderID = u.UserID
			}
		}
		replies = append(replies, r)
	}
	return replies, nil
}

func historyMessages(hist tg.MessagesMessagesClass) []tg.MessageClass {
	switch h := hist.(type) {
	case *tg.MessagesChannelMessages:
		return h.Messages
	case *tg.MessagesMessagesSlice:
		return h.Messages
	case *tg.MessagesMessages:
		return h.Messages
	default:
		return nil
	}
}
