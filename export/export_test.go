package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "posts.json")
	in := map[string]any{"title": "hello", "score": float64(42)}
	if err := JSON(path, in); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["title"] != "hello" || out["score"] != float64(42) {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestCSVWritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "posts.csv")
	err := CSV(path, []string{"id", "title"}, [][]string{
		{"1", "first"},
		{"2", "second, with comma"},
	})
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "id,title" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], `"second, with comma"`) {
		t.Errorf("comma field not quoted: %q", lines[2])
	}
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	err := CSV(path, []string{"a", "b"}, [][]string{{"only one"}})
	if err == nil {
		t.Fatal("expected error for row narrower than header")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file created despite validation error")
	}
}

func TestDigestMarkdown(t *testing.T) {
	t.Parallel()

	d := &Digest{
		Title:       "Morning Run",
		GeneratedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Sections: []Section{
			{
				Heading: "Reddit",
				Items: []Item{
					{Title: "Go 1.25 released", URL: "https://example.com/1", Meta: "900 points"},
					{Title: "plain item"},
				},
			},
			{Heading: "Twitter", Error: "rate limit exceeded"},
			{Heading: "GNews"},
		},
	}

	md := d.Markdown()
	for _, want := range []string{
		"# Morning Run",
		"## Reddit",
		"- [Go 1.25 released](https://example.com/1) — 900 points",
		"- plain item",
		"> collection failed: rate limit exceeded",
		"_No items collected._",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestDigestHTML(t *testing.T) {
	t.Parallel()

	d := &Digest{
		Sections: []Section{
			{Heading: "Reddit", Items: []Item{
				{Title: "a post", URL: "https://example.com/p"},
			}},
		},
	}
	html, err := d.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(html, "<h2") || !strings.Contains(html, `<a href="https://example.com/p"`) {
		t.Fatalf("unexpected html:\n%s", html)
	}
}
