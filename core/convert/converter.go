// Package convert implements the Converter interface.
// It turns an extracted topic fragment into Markdown. Relative topic links
// are anchored to the bundle base folder first, so every cross reference
// in the output reads like Content/Dir/Topic.htm regardless of where the
// linking topic lived. Images are pointed at the asset folder.
package convert

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/flaremd/core"
)

// DefaultAssetDir is used when no asset folder is configured.
const DefaultAssetDir = "images"

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]+:`)

// MarkdownConverter converts HTML to Markdown using html-to-markdown.
type MarkdownConverter struct {
	assetDir string
}

// New creates a MarkdownConverter that points images at assetDir.
func New(assetDir string) *MarkdownConverter {
	if assetDir == "" {
		assetDir = DefaultAssetDir
	}
	return &MarkdownConverter{assetDir: strings.Trim(assetDir, "/")}
}

// Convert converts the fragment of the topic at topicPath, which is
// relative to the base folder.
func (c *MarkdownConverter) Convert(fragment, topicPath string) (core.Topic, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return core.Topic{}, fmt.Errorf("parsing fragment: %w", err)
	}

	dir := path.Dir(topicPath)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if anchored, ok := anchor(dir, href); ok {
			a.SetAttr("href", anchored)
		}
	})

	var images []string
	seen := map[string]bool{}
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src == "" || schemeRe.MatchString(src) || strings.HasPrefix(src, "//") {
			return
		}
		p := resolve(dir, src)
		img.SetAttr("src", c.assetDir+"/"+path.Base(path.Join(dir, src)))
		if !seen[p] {
			seen[p] = true
			images = append(images, p)
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return core.Topic{}, fmt.Errorf("serializing fragment: %w", err)
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return core.Topic{}, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return core.Topic{Path: topicPath, Markdown: markdown, Images: images}, nil
}

// anchor rewrites a relative .htm or .html href against dir.
func anchor(dir, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") ||
		strings.HasPrefix(href, "//") || schemeRe.MatchString(href) {
		return "", false
	}
	target, frag, _ := strings.Cut(href, "#")
	ext := strings.ToLower(path.Ext(target))
	if ext != ".htm" && ext != ".html" {
		return "", false
	}
	out := path.Join(dir, target)
	if strings.HasPrefix(out, "../") || out == ".." {
		return "", false
	}
	if frag != "" {
		out += "#" + frag
	}
	return out, true
}

// resolve joins a relative file reference to dir, decoding percent
// escapes so the result names a file on disk.
func resolve(dir, ref string) string {
	if u, err := url.PathUnescape(ref); err == nil {
		ref = u
	}
	return path.Join(dir, ref)
}
