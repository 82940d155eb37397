// Package telegram collects messages from public Telegram channels over
// MTProto using a persisted user session. The first run performs the
// interactive login flow through the configured prompts; later runs reuse
// the session file.
package telegram

import (
	"context"
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds MTProto credentials and session settings. CodePrompt is
// required for the first login; PasswordPrompt only when the account has
// two-step verification enabled.
type Config struct {
	APIID       int
	APIHash     string
	Phone       string
	SessionFile string
	RateLimit   int // API requests per minute, 0 = unlimited

	CodePrompt     func(ctx context.Context) (string, error)
	PasswordPrompt func(ctx context.Context) (string, error)
}

func (c *Config) validate() error {
	if c.APIID == 0 {
		return &connectors.ConfigError{Field: "api_id", Msg: "required"}
	}
	if c.APIHash == "" {
		return &connectors.ConfigError{Field: "api_hash", Msg: "required"}
	}
	if c.Phone == "" {
		return &connectors.ConfigError{Field: "phone", Msg: "required"}
	}
	return nil
}

// Spec describes one collection run across public channels.
type Spec struct {
	Channels           []string // usernames, with or without the @ prefix
	MessagesPerChannel int      // default 50
	DaysBack           int      // 0 = no age cutoff
	IncludeReplies     bool
	RepliesPerMessage  int // default 20

	// Filter is an expression evaluated per message with Text, Channel,
	// Views, Forwards and ReplyCount in scope. Empty keeps everything.
	Filter string
}

func (s *Spec) validate() error {
	if len(s.Channels) == 0 {
		return &connectors.ConfigError{Field: "channels", Msg: "at least one channel required"}
	}
	return nil
}

// Message is one channel post.
type Message struct {
	ID         int       `json:"id"`
	Channel    string    `json:"channel"`
	Text       string    `json:"text"`
	Date       time.Time `json:"date"`
	Views      int       `json:"views"`
	Forwards   int       `json:"forwards"`
	ReplyCount int       `json:"reply_count"`
	URL        string    `json:"url"`
	Replies    []Reply   `json:"replies,omitempty"`
}

// Reply is one comment in a post's discussion thread.
type Reply struct {
	ID       int       `json:"id"`
	Text     string    `json:"text"`
	Date     time.Time `json:"date"`
	SenderID int64     `json:"sender_id,omitempty"`
}

// Result is the outcome of one Fetch call.
type Result struct {
	Messages    []Message         `json:"messages"`
	Channels    []string          `json:"channels"`
	CollectedAt time.Time         `json:"collected_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}
