package telegram

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/signalhouse/connectors"
)

type fakeConn struct {
	messages   map[string][]Message
	messageErr map[string]error

	replies   map[int][]Reply
	replyErr  map[int]error
	replyCall int
}

func (f *fakeConn) channelMessages(_ context.Context, channel string, _ int, _ time.Time) ([]Message, error) {
	if err := f.messageErr[channel]; err != nil {
		return nil, err
	}
	return f.messages[channel], nil
}

func (f *fakeConn) messageReplies(_ context.Context, _ string, msgID, _ int) ([]Reply, error) {
	f.replyCall++
	if err := f.replyErr[msgID]; err != nil {
		return nil, err
	}
	return f.replies[msgID], nil
}

type fakeAPI struct {
	conn   *fakeConn
	runErr error
}

func (f *fakeAPI) run(ctx context.Context, fn func(ctx context.Context, s conn) error) error {
	if f.runErr != nil {
		return f.runErr
	}
	return fn(ctx, f.conn)
}

func msg(id int, channel, text string, replyCount int) Message {
	return Message{
		ID:         id,
		Channel:    channel,
		Text:       text,
		Date:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ReplyCount: replyCount,
	}
}

func TestFetchSessionFailureFailsBatch(t *testing.T) {
	t.Parallel()

	c := &Collector{api: &fakeAPI{
		runErr: &connectors.AuthError{Provider: "telegram", Err: fmt.Errorf("code invalid")},
	}}
	result, err := c.Fetch(context.Background(), Spec{Channels: []string{"gonews"}})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Status != connectors.StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
	if result.Error == "" {
		t.Fatal("failed result has empty error")
	}
	if len(result.Messages) != 0 {
		t.Fatalf("failed result carries %d messages", len(result.Messages))
	}
}

func TestFetchSkipsFailingChannel(t *testing.T) {
	t.Parallel()

	c := &Collector{api: &fakeAPI{conn: &fakeConn{
		messages: map[string][]Message{
			"gonews": {msg(1, "gonews", "release day", 0)},
		},
		messageErr: map[string]error{
			"missing": connectors.Permanent("telegram", "resolve missing",
				fmt.Errorf("username does not refer to a channel")),
		},
	}}}

	result, err := c.Fetch(context.Background(), Spec{Channels: []string{"gonews", "missing"}})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Status != connectors.StatusSuccess {
		t.Fatalf("status = %q, want success", result.Status)
	}
	if len(result.Messages) != 1 || result.Messages[0].ID != 1 {
		t.Fatalf("got %d messages, want the one from the working channel", len(result.Messages))
	}
}

func TestFetchReplyFailureIsOptional(t *testing.T) {
	t.Parallel()

	c := &Collector{api: &fakeAPI{conn: &fakeConn{
		messages: map[string][]Message{
			"gonews": {msg(1, "gonews", "a", 3), msg(2, "gonews", "b", 5)},
		},
		replies: map[int][]Reply{
			2: {{ID: 10, Text: "nice"}},
		},
		replyErr: map[int]error{
			1: connectors.Transient("telegram", "replies gonews/1", fmt.Errorf("flood wait")),
		},
	}}}

	result, err := c.Fetch(context.Background(), Spec{
		Channels:       []string{"gonews"},
		IncludeReplies: true,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Status != connectors.StatusSuccess {
		t.Fatalf("status = %q, want success despite reply failure", result.Status)
	}
	if len(result.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(result.Messages))
	}
	if len(result.Messages[0].Replies) != 0 {
		t.Error("message with failed reply fetch has replies attached")
	}
	if len(result.Messages[1].Replies) != 1 {
		t.Error("message with working reply fetch lost its replies")
	}
}

func TestFetchSkipsRepliesWhenNotRequested(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{
		messages: map[string][]Message{
			"gonews": {msg(1, "gonews", "a", 7)},
		},
	}
	c := &Collector{api: &fakeAPI{conn: conn}}

	if _, err := c.Fetch(context.Background(), Spec{Channels: []string{"gonews"}}); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if conn.replyCall != 0 {
		t.Fatalf("reply fetch called %d times with IncludeReplies unset", conn.replyCall)
	}
}

func TestFetchFilterByViews(t *testing.T) {
	t.Parallel()

	popular := msg(1, "gonews", "popular", 0)
	popular.Views = 5000
	quiet := msg(2, "gonews", "quiet", 0)
	quiet.Views = 12

	c := &Collector{api: &fakeAPI{conn: &fakeConn{
		messages: map[string][]Message{"gonews": {popular, quiet}},
	}}}

	result, err := c.Fetch(context.Background(), Spec{
		Channels: []string{"gonews"},
		Filter:   "Views >= 1000",
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(result.Messages) != 1 || result.Messages[0].Text != "popular" {
		t.Fatalf("filter kept %d messages, want only the popular one", len(result.Messages))
	}
}

func TestFetchMissingCredentials(t *testing.T) {
	t.Parallel()

	c := New(Config{APIHash: "h", Phone: "+15550100"})
	result, err := c.Fetch(context.Background(), Spec{Channels: []string{"gonews"}})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Status != connectors.StatusFailed {
		t.Fatalf("status = %q, want failed on missing api_id", result.Status)
	}
}

func TestSpecValidation(t *testing.T) {
	t.Parallel()

	c := &Collector{api: &fakeAPI{conn: &fakeConn{}}}
	if _, err := c.Fetch(context.Background(), Spec{}); err == nil {
		t.Fatal("expected error for spec without channels")
	}
}
