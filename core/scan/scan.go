// Package scan finds link references in concatenated Markdown together with
// their byte offsets, so they can be rewritten in place.
//
// Inline Markdown links and images, reference definitions and raw HTML
// <a href> and <img src> attributes are reported. Anything inside fenced,
// indented or inline code is ignored; code regions come from a goldmark
// parse of the document.
package scan

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind classifies a reference.
type Kind string

const (
	KindInline              Kind = "inline"
	KindImage               Kind = "image"
	KindReferenceDefinition Kind = "reference_definition"
	KindHTMLLink            Kind = "html_link"
	KindHTMLImage           Kind = "html_image"
)

// Ref is one reference found in a document. Start and End delimit Dest in
// the source, End exclusive.
type Ref struct {
	Kind  Kind
	Text  string
	Dest  string
	Start int
	End   int
	Line  int
}

// IsImage reports whether the reference embeds an image.
func (r Ref) IsImage() bool {
	return r.Kind == KindImage || r.Kind == KindHTMLImage
}

var (
	inlineRe = regexp.MustCompile(`(!?)\[((?:[^\[\]\n]|\[[^\[\]\n]*\](?:\([^()\n]*\))?)*)\]\([ \t]*(<[^>\n]*>|[^\s()]*(?:\([^\s()]*\)[^\s()]*)*)(?:[ \t]+(?:"[^"\n]*"|'[^'\n]*'))?[ \t]*\)`)
	refDefRe = regexp.MustCompile(`(?m)^ {0,3}\[([^\]\n^][^\]\n]*)\]:[ \t]*(<[^>\n]*>|\S+)`)
	htmlRe   = regexp.MustCompile(`(?i)<(a|img)\s(?:[^>]*?\s)?(href|src)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Links returns every reference in src, ordered by position.
func Links(src []byte) []Ref {
	code := codeRanges(src)
	lines := NewLineIndex(src)

	var refs []Ref
	add := func(kind Kind, label string, start, end int) {
		if start < 0 || code.contains(start) {
			return
		}
		if end-start >= 2 && src[start] == '<' && src[end-1] == '>' {
			start, end = start+1, end-1
		}
		refs = append(refs, Ref{
			Kind:  kind,
			Text:  label,
			Dest:  string(src[start:end]),
			Start: start,
			End:   end,
			Line:  lines.Line(start),
		})
	}

	inline(src, 0, len(src), add)

	for _, m := range refDefRe.FindAllSubmatchIndex(src, -1) {
		add(KindReferenceDefinition, string(src[m[2]:m[3]]), m[4], m[5])
	}

	for _, m := range htmlRe.FindAllSubmatchIndex(src, -1) {
		tag, attr := strings.ToLower(string(src[m[2]:m[3]])), strings.ToLower(string(src[m[4]:m[5]]))
		var kind Kind
		switch {
		case tag == "a" && attr == "href":
			kind = KindHTMLLink
		case tag == "img" && attr == "src":
			kind = KindHTMLImage
		default:
			continue
		}
		start, end := m[6], m[7]
		if start < 0 {
			start, end = m[8], m[9]
		}
		add(kind, "", start, end)
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Start == refs[j].Start {
			return refs[i].End > refs[j].End
		}
		return refs[i].Start < refs[j].Start
	})
	return dropNested(refs)
}

// dropNested removes refs whose destination overlaps an earlier one, such
// as an inline link written inside a reference definition's destination.
// refs must be sorted by Start, longest first on ties.
func dropNested(refs []Ref) []Ref {
	out := refs[:0]
	end := -1
	for _, r := range refs {
		if r.Start < end {
			continue
		}
		out = append(out, r)
		end = r.End
	}
	return out
}

// inline scans src[lo:hi] for inline links and images. Link text is
// scanned again so an image wrapped in a link is reported too.
func inline(src []byte, lo, hi int, add func(Kind, string, int, int)) {
	for _, m := range inlineRe.FindAllSubmatchIndex(src[lo:hi], -1) {
		kind := KindInline
		if m[3] > m[2] {
			kind = KindImage
		}
		add(kind, string(src[lo+m[4]:lo+m[5]]), lo+m[6], lo+m[7])
		if m[5] > m[4] {
			inline(src, lo+m[4], lo+m[5], add)
		}
	}
}

type span struct{ start, stop int }

type spans []span

func (s spans) contains(pos int) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].stop > pos })
	return i < len(s) && s[i].start <= pos
}

func codeRanges(src []byte) spans {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var out spans
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				out = append(out, span{seg.Start, seg.Stop})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*gmast.Text); ok {
					out = append(out, span{t.Segment.Start, t.Segment.Stop})
				}
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}
