// Package render provides output renderers for the flaremd pipeline.
// This file implements the Markdown renderer, which writes the document
// unchanged, optionally behind a YAML front matter block.
package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/flaremd/core"
)

// MarkdownRenderer writes Markdown as-is, since Markdown is already the
// canonical pipeline format.
type MarkdownRenderer struct {
	frontMatter bool
}

// NewMarkdownRenderer creates a MarkdownRenderer. With frontMatter set the
// document metadata is written first as YAML between --- lines.
func NewMarkdownRenderer(frontMatter bool) *MarkdownRenderer {
	return &MarkdownRenderer{frontMatter: frontMatter}
}

// Render returns the Markdown as bytes.
func (r *MarkdownRenderer) Render(markdown string, meta core.DocumentMetadata) ([]byte, error) {
	if !r.frontMatter {
		return []byte(markdown), nil
	}
	fm, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(fm) + len(markdown) + 10)
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(markdown)
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
