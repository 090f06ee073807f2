// Package extract implements the Extractor interface.
// It isolates the topic body from a Flare HTML page by:
//  1. Finding the best content container (Flare's main content div, then
//     <main>, <article> or <body>)
//  2. Removing noise elements (scripts, navigation, toolbars, forms)
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/gaurav-prasanna/flaremd/core"
)

// containerSelectors are tried in order; the first match wins.
var containerSelectors = []string{
	`div[role="main"]#mc-main-content`,
	"div.main-content",
	"main",
	"article",
	"body",
}

// noiseSelectors are removed before extraction. Images are kept: they are
// rewritten to the asset folder during conversion.
var noiseSelectors = []string{
	"script", "style", "noscript", "link", "meta",
	"nav", "footer", "header",
	"iframe", "video", "audio", "canvas",
	"form", "button", "input", "select", "textarea",
	".MCBreadcrumbsBox_0", ".MCBreadcrumbsBox", ".MCMiniTocBox_0",
	".topicToolbarProxy", ".buttons", ".nocontent", ".sidenav-wrapper",
	".sidebar", ".menu", ".navigation",
}

// HTMLExtractor strips noise from HTML and returns the main content fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Decode converts raw topic bytes to UTF-8 using the document's meta
// charset, or contentType when given.
func Decode(data []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return string(out), nil
}

// Extract takes raw HTML and returns the main content fragment with the
// page title and language.
func (e *HTMLExtractor) Extract(html string) (core.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return core.Page{}, fmt.Errorf("parsing HTML: %w", err)
	}

	page := core.Page{
		Title:    strings.TrimSpace(doc.Find("head title").First().Text()),
		Language: "en",
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		page.Language = lang
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, sel := range containerSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	if content == nil {
		return core.Page{}, fmt.Errorf("no content container found in HTML")
	}

	if page.Title == "" {
		page.Title = strings.TrimSpace(content.Find("h1").First().Text())
	}

	page.HTML, err = goquery.OuterHtml(content)
	if err != nil {
		return core.Page{}, fmt.Errorf("serializing content: %w", err)
	}
	return page, nil
}
