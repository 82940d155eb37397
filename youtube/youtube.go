// Package youtube collects video metadata and transcripts. Metadata comes
// from yt-dlp, transcripts from the video's caption tracks with a Whisper
// fallback (OpenAI audio transcription) when no captions exist.
//
// Collection fans out: channel listings and per-video processing run
// concurrently, and an error in any one video yields a single failed Video
// record instead of failing the batch.
package youtube

import (
	"regexp"
	"time"

	"github.com/signalhouse/connectors"
)

// Config holds YouTube processing settings. No credentials are required;
// the OpenAI key is only needed for the Whisper fallback.
type Config struct {
	YTDLPPath string // yt-dlp binary, defaults to "yt-dlp" on PATH

	// DisableCaptions skips the caption-track lookup and goes straight to
	// Whisper. Captions are tried first by default.
	DisableCaptions     bool
	TranscriptLanguages []string // preferred caption languages, in order

	OpenAIAPIKey string
	WhisperModel string // defaults to whisper-1

	MaxVideoLength int    // seconds, 0 = no limit
	AudioFormat    string // audio container for the Whisper download, default m4a

	Timeout   time.Duration // per yt-dlp invocation
	RateLimit int           // requests per minute for caption fetches
	UserAgent string
}

// Spec describes one collection run: direct video URLs, channel handles, or
// both.
type Spec struct {
	URLs                []string
	Channels            []string // channel handles, with or without the @ prefix
	MaxVideosPerChannel int
	DaysBack            int
}

func (s *Spec) validate() error {
	if len(s.URLs) == 0 && len(s.Channels) == 0 {
		return &connectors.ConfigError{Field: "urls", Msg: "either urls or channels required"}
	}
	return nil
}

// Video is one processed video. Status is per video: a failed transcript or
// metadata fetch marks only this record failed.
type Video struct {
	VideoID     string `json:"video_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"` // seconds
	UploadDate  string `json:"upload_date,omitempty"` // YYYYMMDD
	ViewCount   int64  `json:"view_count"`
	LikeCount   int64  `json:"like_count"`
	Channel     string `json:"channel"`
	ChannelID   string `json:"channel_id"`

	Tags       []string `json:"tags,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`

	Transcript       string `json:"transcript"`
	TranscriptSource string `json:"transcript_source"` // "captions" or "whisper"
	Language         string `json:"language,omitempty"`

	ProcessedAt time.Time         `json:"processed_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}

// Result is the outcome of one Fetch call. The batch itself only fails on
// caller misconfiguration; per-video outcomes live on each Video.
type Result struct {
	Videos      []Video           `json:"videos"`
	URLs        []string          `json:"urls,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
	CollectedAt time.Time         `json:"collected_at"`
	Status      connectors.Status `json:"status"`
	Error       string            `json:"error,omitempty"`
}

var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// ValidURL reports whether url is a recognized YouTube video URL.
func ValidURL(url string) bool {
	return ExtractVideoID(url) != ""
}

// ExtractVideoID returns the 11-character video ID, or "" if the URL is not
// a recognized YouTube video URL.
func ExtractVideoID(url string) string {
	for _, pattern := range videoURLPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
