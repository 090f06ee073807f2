// Package cleanup removes authoring-tool artifacts from a concatenated
// document once its links have been rewritten.
package cleanup

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/flaremd/core/scan"
)

// Options configures Clean.
type Options struct {
	// KeepMarkers leaves BEGIN_FILE comments in place.
	KeepMarkers bool
	// External renders markers as visible [[BEGIN_FILE: path]] lines and
	// moves header links onto their own line, for tools that drop HTML
	// comments.
	External bool
}

// footerTopics are navigation-only topics Flare appends to every bundle.
var footerTopics = map[string]bool{
	"_FT_SideNav_Startup": true,
	"index":               true,
	"index_CSH":           true,
}

var (
	markerLineRe      = regexp.MustCompile(`(?m)^<!--[ \t]*BEGIN_FILE:[ \t]*(\S+?)(?:[ \t]+subfolder=\S+)?[ \t]*-->[ \t]*$`)
	commentedMDLinkRe = regexp.MustCompile(`<!--[ \t]*(!?\[[^\]\n]*\]\([^)\n]*\))[ \t]*-->`)
	commentedHTMLRe   = regexp.MustCompile(`(?is)<!--\s*(<a\s[^>]*href\s*=[^>]*>.*?</a>)\s*-->`)
	anchorTagRe       = regexp.MustCompile(`(?m)^[ \t]*<a\s+(?:id|name)=["'][^"']*["'][^>]*>(?:</a>)?[ \t]*\n`)
	searchFooterRe    = regexp.MustCompile(`(?s)(?:\n---[ \t]*\n)?\n?#[ \t]+Your search for.*?returned result.*?(?:\[Previous\]\(#\)[ \t]*\[Next\]\(#\)|\z)`)
	navLinksRe        = regexp.MustCompile(`\[Previous\]\(#\)[ \t]*\[Next\]\(#\)`)
	headerLinkRe      = regexp.MustCompile(`(?m)^(#{1,6}[ \t].*?)[ \t]+\[↗\]\((\S+)\)[ \t]*$`)
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
	trailingRuleRe    = regexp.MustCompile(`\n---\s*$`)
)

// Clean returns a tidied copy of doc.
func Clean(doc []byte, opts Options) []byte {
	s := dropFooterTopics(string(doc))
	s = UnwrapCommentedLinks(s)

	switch {
	case opts.External:
		s = markerLineRe.ReplaceAllString(s, "[[BEGIN_FILE: $1]]")
		s = headerLinkRe.ReplaceAllString(s, "$1\n\n[$2]($2)")
	case !opts.KeepMarkers:
		s = string(scan.StripMarkers([]byte(s)))
	}

	s = anchorTagRe.ReplaceAllString(s, "")
	s = searchFooterRe.ReplaceAllString(s, "")
	s = navLinksRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = trailingRuleRe.ReplaceAllString(s, "")
	return []byte(strings.TrimSpace(s) + "\n")
}

// dropFooterTopics cuts the document at the last footer topic marker when
// it lies in the final 5% of the text.
func dropFooterTopics(s string) string {
	threshold := len(s) * 95 / 100
	matches := markerLineRe.FindAllStringSubmatchIndex(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m[0] < threshold {
			break
		}
		p := s[m[2]:m[3]]
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if footerTopics[name] {
			return s[:m[0]]
		}
	}
	return s
}

// UnwrapCommentedLinks turns links hidden inside HTML comments back into
// Markdown links. Other comments are kept.
func UnwrapCommentedLinks(s string) string {
	s = commentedMDLinkRe.ReplaceAllString(s, "$1")
	return commentedHTMLRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := commentedHTMLRe.FindStringSubmatch(m)[1]
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
		if err != nil {
			return m
		}
		a := doc.Find("a[href]").First()
		href, ok := a.Attr("href")
		if !ok {
			return m
		}
		text := strings.TrimSpace(a.Text())
		if text == "" {
			text = href
		}
		return "[" + text + "](" + href + ")"
	})
}
