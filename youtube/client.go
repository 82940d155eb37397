package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/httpx"
)

// api is the surface the collector needs; implemented by client and by test
// fakes.
type api interface {
	channelVideos(ctx context.Context, channel string, maxVideos int) ([]string, error)
	videoMetadata(ctx context.Context, url string) (*metadata, error)
	transcript(ctx context.Context, md *metadata) (text, source, lang string, err error)
}

// metadata is the subset of yt-dlp's -J output we consume.
type metadata struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	Duration          float64                   `json:"duration"`
	ViewCount         int64                     `json:"view_count"`
	LikeCount         int64                     `json:"like_count"`
	Uploader          string                    `json:"uploader"`
	ChannelID         string                    `json:"channel_id"`
	UploadDate        string                    `json:"upload_date"`
	Tags              []string                  `json:"tags"`
	Categories        []string                  `json:"categories"`
	Thumbnail         string                    `json:"thumbnail"`
	WebpageURL        string                    `json:"webpage_url"`
	Subtitles         map[string][]captionTrack `json:"subtitles"`
	AutomaticCaptions map[string][]captionTrack `json:"automatic_captions"`
}

type captionTrack struct {
	URL string `json:"url"`
	Ext string `json:"ext"`
}

type playlist struct {
	Entries []struct {
		ID string `json:"id"`
	} `json:"entries"`
}

type client struct {
	cfg  Config
	http *httpx.Client
	oai  *openai.Client
}

func newClient(cfg Config) *client {
	if cfg.YTDLPPath == "" {
		cfg.YTDLPPath = "yt-dlp"
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = "whisper-1"
	}
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = "m4a"
	}
	c := &client{
		cfg: cfg,
		http: httpx.New("youtube", httpx.Options{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: cfg.UserAgent,
		}),
	}
	if cfg.OpenAIAPIKey != "" {
		oai := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		c.oai = &oai
	}
	return c
}

func (c *client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.cfg.YTDLPPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, connectors.Transient("youtube", "yt-dlp", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return nil, connectors.Permanent("youtube", "yt-dlp", fmt.Errorf("%w: %s", err, msg))
	}
	return stdout.Bytes(), nil
}

func (c *client) channelVideos(ctx context.Context, channel string, maxVideos int) ([]string, error) {
	handle := strings.TrimPrefix(channel, "@")
	url := fmt.Sprintf("https://www.youtube.com/@%s/videos", handle)

	// Over-fetch so shorts and members-only entries dropped later still
	// leave enough videos.
	out, err := c.run(ctx, "--flat-playlist", "-J", "--no-warnings",
		"--playlist-end", strconv.Itoa(maxVideos*2), url)
	if err != nil {
		return nil, err
	}
	var pl playlist
	if err := json.Unmarshal(out, &pl); err != nil {
		return nil, connectors.Permanent("youtube", "channel listing", err)
	}
	urls := make([]string, 0, maxVideos)
	for _, entry := range pl.Entries {
		if entry.ID == "" {
			continue
		}
		urls = append(urls, "https://www.youtube.com/watch?v="+entry.ID)
		if len(urls) >= maxVideos {
			break
		}
	}
	return urls, nil
}

func (c *client) videoMetadata(ctx context.Context, url string) (*metadata, error) {
	out, err := c.run(ctx, "-J", "--no-warnings", url)
	if err != nil {
		return nil, err
	}
	var md metadata
	if err := json.Unmarshal(out, &md); err != nil {
		return nil, connectors.Permanent("youtube", "video metadata", err)
	}
	if md.WebpageURL == "" {
		md.WebpageURL = url
	}
	return &md, nil
}

// transcript tries caption tracks first, then falls back to Whisper when a
// key is configured. The returned source is "captions" or "whisper".
func (c *client) transcript(ctx context.Context, md *metadata) (string, string, string, error) {
	if !c.cfg.DisableCaptions {
		text, lang, err := c.captionTranscript(ctx, md)
		if err == nil {
			return text, "captions", lang, nil
		}
		logger := connectors.LoggerFromContext(ctx)
		logger.DebugContext(ctx, "caption transcript unavailable",
			"video_id", md.ID, "error", err)
	}
	if c.oai == nil {
		return "", "", "", connectors.Permanent("youtube", "transcript",
			fmt.Errorf("no captions for %s and no openai api key configured", md.ID))
	}
	text, err := c.whisperTranscript(ctx, md)
	if err != nil {
		return "", "", "", err
	}
	return text, "whisper", "", nil
}

// selectCaptionTrack picks the best track: manual subtitles in a preferred
// language, then auto captions in a preferred language, then any manual,
// then any auto.
func (c *client) selectCaptionTrack(md *metadata) (captionTrack, string, bool) {
	langs := c.cfg.TranscriptLanguages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	for _, tracks := range []map[string][]captionTrack{md.Subtitles, md.AutomaticCaptions} {
		for _, lang := range langs {
			if ts := tracks[lang]; len(ts) > 0 {
				return pickFormat(ts), lang, true
			}
		}
	}
	for _, tracks := range []map[string][]captionTrack{md.Subtitles, md.AutomaticCaptions} {
		for lang, ts := range tracks {
			if len(ts) > 0 {
				return pickFormat(ts), lang, true
			}
		}
	}
	return captionTrack{}, "", false
}

func pickFormat(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.Ext == "json3" {
			return t
		}
	}
	return tracks[0]
}

// captionEvents is YouTube's json3 timedtext format.
type captionEvents struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func (c *client) captionTranscript(ctx context.Context, md *metadata) (string, string, error) {
	track, lang, ok := c.selectCaptionTrack(md)
	if !ok {
		return "", "", connectors.Permanent("youtube", "captions",
			fmt.Errorf("no caption tracks for %s", md.ID))
	}
	url := track.URL
	if track.Ext != "json3" && !strings.Contains(url, "fmt=json3") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "fmt=json3"
	}
	var events captionEvents
	if err := c.http.GetJSON(ctx, url, nil, nil, &events); err != nil {
		return "", "", err
	}
	var sb strings.Builder
	for _, ev := range events.Events {
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
	}
	text := strings.Join(strings.Fields(sb.String()), " ")
	if text == "" {
		return "", "", connectors.Permanent("youtube", "captions",
			fmt.Errorf("caption track for %s is empty", md.ID))
	}
	return text, lang, nil
}

func (c *client) whisperTranscript(ctx context.Context, md *metadata) (string, error) {
	dir, err := os.MkdirTemp("", "yt-audio-*")
	if err != nil {
		return "", connectors.Permanent("youtube", "whisper", err)
	}
	defer os.RemoveAll(dir)

	format := fmt.Sprintf("bestaudio[ext=%s]/bestaudio", c.cfg.AudioFormat)
	out := filepath.Join(dir, md.ID+".%(ext)s")
	if _, err := c.run(ctx, "-f", format, "-o", out, "--no-warnings", "--quiet", md.WebpageURL); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(dir, md.ID+".*"))
	if err != nil || len(matches) == 0 {
		return "", connectors.Permanent("youtube", "whisper",
			fmt.Errorf("audio download for %s produced no file", md.ID))
	}
	f, err := os.Open(matches[0])
	if err != nil {
		return "", connectors.Permanent("youtube", "whisper", err)
	}
	defer f.Close()

	resp, err := c.oai.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(c.cfg.WhisperModel),
		File:  f,
	})
	if err != nil {
		return "", connectors.Transient("youtube", "whisper", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
