package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/otelx"
)

// Collector fetches video metadata and transcripts for a Spec.
type Collector struct {
	cfg Config
	api api
}

func New(cfg Config) *Collector {
	return &Collector{cfg: cfg, api: newClient(cfg)}
}

// Fetch resolves channels to video URLs, then processes every video
// concurrently. A video that fails at any stage becomes a failed Video
// record; the batch itself only fails on an invalid Spec.
func (c *Collector) Fetch(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	ctx, span := otelx.Tracer().Start(ctx, "youtube.Fetch")
	defer span.End()
	logger := connectors.LoggerFromContext(ctx)

	result := &Result{
		URLs:        spec.URLs,
		Channels:    spec.Channels,
		CollectedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	urls := c.resolveURLs(ctx, spec)
	if len(urls) == 0 {
		logger.WarnContext(ctx, "no videos to process",
			"urls", len(spec.URLs), "channels", len(spec.Channels))
		return result, nil
	}

	videos := make([]Video, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			videos[i] = c.processVideo(ctx, url)
		}(i, url)
	}
	wg.Wait()

	failed := 0
	for _, v := range videos {
		if v.Status == connectors.StatusFailed {
			failed++
		}
	}
	logger.InfoContext(ctx, "youtube collection complete",
		"videos", len(videos), "failed", failed)

	result.Videos = videos
	return result, nil
}

// resolveURLs merges direct URLs with concurrent channel listings. A channel
// that fails to list is logged and skipped.
func (c *Collector) resolveURLs(ctx context.Context, spec Spec) []string {
	logger := connectors.LoggerFromContext(ctx)

	maxVideos := spec.MaxVideosPerChannel
	if maxVideos <= 0 {
		maxVideos = 10
	}

	var mu sync.Mutex
	var fromChannels []string
	var wg sync.WaitGroup
	for _, channel := range spec.Channels {
		wg.Add(1)
		go func(channel string) {
			defer wg.Done()
			urls, err := c.api.channelVideos(ctx, channel, maxVideos)
			if err != nil {
				logger.WarnContext(ctx, "skipping channel",
					"channel", channel, "error", err)
				return
			}
			mu.Lock()
			fromChannels = append(fromChannels, urls...)
			mu.Unlock()
		}(channel)
	}
	wg.Wait()

	seen := make(map[string]bool)
	merged := make([]string, 0, len(spec.URLs)+len(fromChannels))
	for _, url := range append(append([]string{}, spec.URLs...), fromChannels...) {
		id := ExtractVideoID(url)
		if id == "" {
			logger.WarnContext(ctx, "skipping unrecognized video url", "url", url)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, url)
	}
	return merged
}

func (c *Collector) processVideo(ctx context.Context, url string) Video {
	video := Video{
		VideoID:     ExtractVideoID(url),
		URL:         url,
		ProcessedAt: time.Now().UTC(),
		Status:      connectors.StatusSuccess,
	}

	md, err := c.api.videoMetadata(ctx, url)
	if err != nil {
		video.Status = connectors.StatusFailed
		video.Error = err.Error()
		return video
	}
	video.VideoID = md.ID
	video.Title = md.Title
	video.Description = md.Description
	video.Duration = int(md.Duration)
	video.UploadDate = md.UploadDate
	video.ViewCount = md.ViewCount
	video.LikeCount = md.LikeCount
	video.Channel = md.Uploader
	video.ChannelID = md.ChannelID
	video.Tags = md.Tags
	video.Categories = md.Categories
	video.Thumbnail = md.Thumbnail

	if c.cfg.MaxVideoLength > 0 && video.Duration > c.cfg.MaxVideoLength {
		video.Status = connectors.StatusFailed
		video.Error = fmt.Sprintf("video length %ds exceeds limit %ds",
			video.Duration, c.cfg.MaxVideoLength)
		return video
	}

	text, source, lang, err := c.api.transcript(ctx, md)
	if err != nil {
		video.Status = connectors.StatusFailed
		video.Error = err.Error()
		return video
	}
	video.Transcript = text
	video.TranscriptSource = source
	video.Language = lang
	return video
}
