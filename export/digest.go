package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Digest is a human-readable summary of one collection run, one section per
// source.
type Digest struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}

// Section groups the items collected from one source.
type Section struct {
	Heading string
	Status  string // empty is treated as success
	Error   string
	Items   []Item
}

// Item is one line in a digest section.
type Item struct {
	Title string
	URL   string
	Meta  string // free-form detail, e.g. "1.2k points, 340 comments"
}

// Markdown renders the digest as GitHub-flavored Markdown.
func (d *Digest) Markdown() string {
	var sb strings.Builder
	title := d.Title
	if title == "" {
		title = "Collection Digest"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "Generated %s\n\n", d.GeneratedAt.UTC().Format(time.RFC3339))
	}
	for _, section := range d.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", section.Heading)
		if section.Error != "" {
			fmt.Fprintf(&sb, "> collection failed: %s\n\n", section.Error)
			continue
		}
		if len(section.Items) == 0 {
			sb.WriteString("_No items collected._\n\n")
			continue
		}
		for _, item := range section.Items {
			if item.URL != "" {
				fmt.Fprintf(&sb, "- [%s](%s)", item.Title, item.URL)
			} else {
				fmt.Fprintf(&sb, "- %s", item.Title)
			}
			if item.Meta != "" {
				fmt.Fprintf(&sb, " — %s", item.Meta)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the digest's Markdown to an HTML fragment.
func (d *Digest) HTML() (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(d.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
