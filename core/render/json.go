// Package render: JSON renderer.
// Builds the structured JSON output from the concatenated Markdown and the
// document metadata. Structure (headings, links, code blocks, tables,
// lists) comes from a goldmark parse of the document.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gaurav-prasanna/flaremd/core"
)

// JSONRenderer produces structured JSON output from Markdown.
type JSONRenderer struct {
	md goldmark.Markdown
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// Render converts Markdown and metadata into the JSON document.
func (r *JSONRenderer) Render(markdown string, meta core.DocumentMetadata) ([]byte, error) {
	src := []byte(markdown)
	structure := r.structure(src)

	doc := core.DocumentJSON{
		Metadata: meta,
		Content: core.DocumentContent{
			Text:     stripMarkdown(markdown),
			Markdown: markdown,
			Sections: buildSections(markdown),
		},
		Structure: structure,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func (r *JSONRenderer) structure(src []byte) core.DocumentStructure {
	root := r.md.Parser().Parse(text.NewReader(src))

	s := core.DocumentStructure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			s.Headings = append(s.Headings, core.Heading{
				Level: node.Level,
				Text:  strings.TrimSpace(strings.TrimSuffix(plainText(node, src), "↗")),
			})
		case *gmast.Link:
			s.Links = append(s.Links, core.Link{Text: plainText(node, src), Href: string(node.Destination)})
			return gmast.WalkSkipChildren, nil
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			s.CodeBlocks++
			return gmast.WalkSkipChildren, nil
		case *east.Table:
			s.Tables++
			return gmast.WalkSkipChildren, nil
		case *gmast.List:
			s.Lists++
		}
		return gmast.WalkContinue, nil
	})
	return s
}

// plainText concatenates the text below n.
func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

var (
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	headingLines = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	emphasisRe   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	linkRegex    = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)]+)\)`)
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// buildSections splits md at every heading outside fenced code.
func buildSections(md string) []core.Section {
	var (
		sections []core.Section
		current  *core.Section
		body     []string
		fenced   bool
	)
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
	}
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
		}
		if m := headingRegex.FindStringSubmatch(line); m != nil && !fenced {
			flush()
			current = &core.Section{Heading: stripLinks(strings.TrimSpace(m[2])), Level: len(m[1])}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

func stripLinks(s string) string {
	s = linkRegex.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "[↗]") {
			return ""
		}
		return linkRegex.FindStringSubmatch(m)[1]
	})
	return strings.TrimSpace(s)
}

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := headingLines.ReplaceAllString(md, "$1")
	text = stripLinks(text)
	text = emphasisRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
