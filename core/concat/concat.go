// Package concat joins converted topics into one Markdown document per
// documentation unit, recording where each topic starts.
package concat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/scan"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// Topic is one converted topic in TOC order.
type Topic struct {
	// Path is relative to the bundle base folder, e.g. Content/Intro.htm.
	Path string
	// Depth is the TOC level, 1 for top-level entries. Zero leaves
	// headings as converted.
	Depth    int
	Markdown string
}

// TopicURLFunc returns the published URL of a topic.
type TopicURLFunc func(path string, sub subfolder.Subfolder) (string, error)

// Options configures a Builder.
type Options struct {
	// HeaderLinks appends " [↗](url)" to the first heading of every topic.
	HeaderLinks bool
	TopicURL    TopicURLFunc
	Logger      *slog.Logger
}

// Document is the concatenated text and its origin markers.
type Document struct {
	Text    []byte
	Markers *subfolder.Markers
}

// Builder accumulates topics. It is not safe for concurrent use.
type Builder struct {
	opts    Options
	buf     strings.Builder
	markers *subfolder.Markers
	guide   subfolder.Subfolder
	guides  int
	topics  int
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder{opts: opts, markers: &subfolder.Markers{}}
}

// StartGuide begins the topics of one base folder. sub is recorded on every
// following marker. Each guide after the first is introduced by a rule and
// a "# <name> Guide" heading.
func (b *Builder) StartGuide(name string, sub subfolder.Subfolder) {
	if b.guides > 0 {
		fmt.Fprintf(&b.buf, "\n\n---\n\n# %s Guide\n\n", name)
	}
	b.guides++
	b.guide = sub
}

// Append adds t at the end of the document.
func (b *Builder) Append(t Topic) error {
	pos := b.buf.Len()
	if err := b.markers.Append(subfolder.Marker{Pos: pos, Path: t.Path, Subfolder: b.guide}); err != nil {
		return fmt.Errorf("appending %s: %w", t.Path, err)
	}

	body := AdjustHeadings(t.Markdown, t.Depth)
	if b.opts.HeaderLinks && b.opts.TopicURL != nil {
		u, err := b.opts.TopicURL(t.Path, b.guide)
		if err != nil {
			b.opts.Logger.Warn("no header link for topic", logfields.Path(t.Path), logfields.Error(err))
		} else {
			body = addHeaderLink(body, u)
		}
	}

	b.buf.WriteString(scan.MarkerComment(t.Path, b.guide))
	b.buf.WriteString("\n")
	b.buf.WriteString(strings.TrimSpace(body))
	b.buf.WriteString("\n\n")
	b.topics++
	return nil
}

// Len returns the number of topics appended so far.
func (b *Builder) Len() int { return b.topics }

// Document returns the text built so far.
func (b *Builder) Document() Document {
	return Document{Text: []byte(b.buf.String()), Markers: b.markers.Clone()}
}

// addHeaderLink appends the link to the first ATX heading outside code.
func addHeaderLink(md, url string) string {
	lines := strings.Split(md, "\n")
	fence := ""
	for i, l := range lines {
		if f, ok := fenceToggle(l, fence); ok {
			fence = f
			continue
		}
		if fence != "" {
			continue
		}
		if headingRe.MatchString(l) {
			lines[i] = strings.TrimRight(l, " \t") + " [↗](" + url + ")"
			return strings.Join(lines, "\n")
		}
	}
	return md
}
