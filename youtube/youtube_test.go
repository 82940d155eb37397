package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"http://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=short", ""},
		{"https://vimeo.com/12345678", ""},
		{"not a url", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractVideoID(tc.url); got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestValidURL(t *testing.T) {
	t.Parallel()

	if !ValidURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Error("valid watch url rejected")
	}
	if ValidURL("https://example.com/watch?v=dQw4w9WgXcQ") {
		t.Error("non-youtube host accepted")
	}
}

func TestSelectCaptionTrack(t *testing.T) {
	t.Parallel()

	c := &client{cfg: Config{TranscriptLanguages: []string{"de", "en"}}}

	md := &metadata{
		Subtitles: map[string][]captionTrack{
			"en": {{URL: "http://x/manual-en", Ext: "vtt"}, {URL: "http://x/manual-en-j3", Ext: "json3"}},
		},
		AutomaticCaptions: map[string][]captionTrack{
			"de": {{URL: "http://x/auto-de", Ext: "json3"}},
			"fr": {{URL: "http://x/auto-fr", Ext: "json3"}},
		},
	}

	// Manual subtitles win over auto captions even for a lower-priority
	// language, and json3 wins within a track list.
	track, lang, ok := c.selectCaptionTrack(md)
	if !ok {
		t.Fatal("no track selected")
	}
	if lang != "en" || track.URL != "http://x/manual-en-j3" {
		t.Fatalf("selected %q (%s), want manual en json3", track.URL, lang)
	}

	md.Subtitles = nil
	track, lang, ok = c.selectCaptionTrack(md)
	if !ok || lang != "de" {
		t.Fatalf("selected lang %q, want preferred auto caption de", lang)
	}

	md.AutomaticCaptions = map[string][]captionTrack{
		"fr": {{URL: "http://x/auto-fr", Ext: "json3"}},
	}
	if _, lang, ok = c.selectCaptionTrack(md); !ok || lang != "fr" {
		t.Fatalf("selected lang %q, want fallback fr", lang)
	}

	md.AutomaticCaptions = nil
	if _, _, ok = c.selectCaptionTrack(md); ok {
		t.Fatal("track selected from empty metadata")
	}
}
