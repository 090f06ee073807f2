// Package pathnorm canonicalizes relative references found in converted
// Flare topics into paths rooted at the published content root.
//
// Rules operate on whole path segments and are case-sensitive, because the
// publishing site is. Every rule checks for an existing prefix before adding
// one, so normalizing an already normalized path is a no-op.
package pathnorm

import (
	"path"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/family"
)

// Rules names the directories and files the normalizer knows about.
type Rules struct {
	ContentRoot    string
	SharedAdminDir string
	ActionsDir     string
	EncodingsDir   string
	EncodingsFile  string
}

// DefaultRules returns the directory names used by the IDOL documentation.
func DefaultRules() Rules {
	return Rules{
		ContentRoot:    "Content",
		SharedAdminDir: "Shared_Admin",
		ActionsDir:     "Actions",
		EncodingsDir:   "ENCODINGS",
		EncodingsFile:  "_IDOL_ENCODINGS.htm",
	}
}

// Alias rewrites a legacy path prefix for the Merged family.
type Alias struct {
	From string
	To   string
}

// Path is a content-root-relative path with its anchor kept apart.
type Path struct {
	Path   string
	Anchor string
}

// String joins the path and anchor back together.
func (p Path) String() string {
	if p.Anchor == "" {
		return p.Path
	}
	return p.Path + "#" + p.Anchor
}

// Under returns the segments of p that follow root. When p is not rooted at
// root all of its segments are returned.
func (p Path) Under(root string) []string {
	segs := strings.Split(p.Path, "/")
	if root != "" && len(segs) > 1 && segs[0] == root {
		return segs[1:]
	}
	return segs
}

// Normalizer applies Rules to raw references. It holds no mutable state.
type Normalizer struct {
	rules   Rules
	aliases []Alias
}

// New creates a Normalizer. Aliases apply to the Merged family only; the
// first alias whose From prefixes the path wins.
func New(rules Rules, aliases ...Alias) *Normalizer {
	return &Normalizer{rules: rules, aliases: append([]Alias(nil), aliases...)}
}

// Rules returns the rule set the normalizer was built with.
func (n *Normalizer) Rules() Rules {
	return n.rules
}

// Normalize turns a raw href or src value into a Path for the given family.
// It returns a *MalformedReferenceError when nothing but relative segments
// or an anchor remains.
func (n *Normalizer) Normalize(raw string, fam family.Family) (Path, error) {
	rawPath, anchor, _ := strings.Cut(raw, "#")

	p := stripRelative(rawPath)
	if p == "" {
		reason := "empty reference"
		if strings.HasPrefix(strings.TrimSpace(raw), "#") {
			reason = "anchor without a path"
		} else if strings.TrimSpace(raw) != "" {
			reason = "no path segment after removing relative segments"
		}
		return Path{}, &MalformedReferenceError{Raw: raw, Reason: reason}
	}

	p = n.applyRules(p, fam)
	if fam == family.Merged {
		p = n.applyAliases(p)
	}
	return Path{Path: p, Anchor: anchor}, nil
}

func (n *Normalizer) applyRules(p string, fam family.Family) string {
	r := n.rules
	segs := strings.Split(p, "/")

	switch {
	case leads(segs, r.SharedAdminDir):
		return join(r.ContentRoot, p)

	case n.isEncodingsRef(segs):
		switch {
		case segs[0] == r.EncodingsDir:
			return join(r.ContentRoot, r.ActionsDir, p)
		case leads(segs, r.ActionsDir, r.EncodingsDir):
			return join(r.ContentRoot, p)
		case fam == family.Standard && segs[0] != r.ContentRoot:
			return join(r.ContentRoot, p)
		}
		return p

	case leads(segs, r.ActionsDir):
		return join(r.ContentRoot, p)

	case fam == family.Standard && segs[0] != r.ContentRoot:
		return join(r.ContentRoot, p)
	}
	return p
}

func (n *Normalizer) applyAliases(p string) string {
	for _, a := range n.aliases {
		if a.From != "" && strings.HasPrefix(p, a.From) {
			return a.To + strings.TrimPrefix(p, a.From)
		}
	}
	return p
}

// isEncodingsRef reports whether the path ends in <encodings dir>/<encodings file>.
func (n *Normalizer) isEncodingsRef(segs []string) bool {
	if len(segs) < 2 || n.rules.EncodingsFile == "" {
		return false
	}
	return segs[len(segs)-1] == n.rules.EncodingsFile && segs[len(segs)-2] == n.rules.EncodingsDir
}

// leads reports whether segs starts with the given segments. The path must
// continue past them, so a bare directory name does not match.
func leads(segs []string, dirs ...string) bool {
	if len(segs) <= len(dirs) {
		return false
	}
	for i, d := range dirs {
		if d == "" || segs[i] != d {
			return false
		}
	}
	return true
}

func join(parts ...string) string {
	return strings.Join(parts, "/")
}

// stripRelative removes leading ../, ./ and / segments, collapses inner
// relative segments and maps a trailing .md back to .htm.
func stripRelative(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, "/")
	p = trimLeadingRelative(p)
	if p == "" {
		return ""
	}
	p = trimLeadingRelative(path.Clean(p))
	if p == "" {
		return ""
	}
	if strings.HasSuffix(p, ".md") {
		p = strings.TrimSuffix(p, ".md") + ".htm"
	}
	return p
}

func trimLeadingRelative(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "../"):
			p = p[3:]
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		case p == ".." || p == ".":
			return ""
		default:
			return p
		}
	}
}
