// Package subfolder recovers which original guide a path of a Merged
// documentation unit belongs to.
//
// Resolution tries directory inference against a static mapping first, then
// the nearest preceding origin marker, then a caller-supplied fallback.
package subfolder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
)

// Subfolder identifies one originally separate guide, e.g. "expert".
type Subfolder string

// Category lists the content directories that belong to a subfolder. A dir
// may span several segments, e.g. "Shared_Admin/Expert".
type Category struct {
	Subfolder Subfolder
	Dirs      []string
}

// Mapping is the ordered, read-only directory table. The first category
// with a matching dir wins.
type Mapping struct {
	categories []Category
}

// NewMapping copies cats into a Mapping.
func NewMapping(cats ...Category) Mapping {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Subfolder: c.Subfolder, Dirs: append([]string(nil), c.Dirs...)}
	}
	return Mapping{categories: out}
}

// Has reports whether s is one of the mapped subfolders.
func (m Mapping) Has(s Subfolder) bool {
	for _, c := range m.categories {
		if c.Subfolder == s {
			return true
		}
	}
	return false
}

// Subfolders lists the mapped subfolders in table order.
func (m Mapping) Subfolders() []Subfolder {
	out := make([]Subfolder, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c.Subfolder)
	}
	return out
}

// Infer matches the leading segments of segs against the table.
func (m Mapping) Infer(segs []string) (Subfolder, bool) {
	for _, c := range m.categories {
		for _, d := range c.Dirs {
			if hasSegmentPrefix(segs, strings.Split(strings.Trim(d, "/"), "/")) {
				return c.Subfolder, true
			}
		}
	}
	return "", false
}

func hasSegmentPrefix(segs, prefix []string) bool {
	if len(prefix) == 0 || len(segs) <= len(prefix) {
		return false
	}
	for i, p := range prefix {
		if p == "" || segs[i] != p {
			return false
		}
	}
	return true
}

// Source says which step produced a Resolution.
type Source string

const (
	SourceDirectory Source = "directory"
	SourcePosition  Source = "position"
	SourceFallback  Source = "fallback"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Subfolder Subfolder
	Source    Source
}

// ErrUnresolvedSubfolder is wrapped by every UnresolvedSubfolderError.
var ErrUnresolvedSubfolder = errors.New("unresolved subfolder")

// UnresolvedSubfolderError means no step applied and no fallback was given.
// With a validated catalog this cannot happen at run time.
type UnresolvedSubfolderError struct {
	Path string
}

func (e *UnresolvedSubfolderError) Error() string {
	return fmt.Sprintf("no subfolder for %q and no fallback configured", e.Path)
}

func (e *UnresolvedSubfolderError) Unwrap() error {
	return ErrUnresolvedSubfolder
}

// Resolver performs subfolder lookups. It never mutates its inputs.
type Resolver struct {
	mapping     Mapping
	contentRoot string
}

// NewResolver creates a Resolver over mapping. contentRoot is stripped from
// paths before directory inference.
func NewResolver(mapping Mapping, contentRoot string) *Resolver {
	return &Resolver{mapping: mapping, contentRoot: contentRoot}
}

// Resolve picks the subfolder for p, referenced at byte offset pos.
//
// Directory inference and positional context only run for the Merged
// family; other families go straight to the fallback because their
// directory names are not namespaced by guide.
func (r *Resolver) Resolve(fam family.Family, p pathnorm.Path, markers *Markers, pos int, fallback Subfolder) (Resolution, error) {
	if fam == family.Merged {
		if s, ok := r.mapping.Infer(p.Under(r.contentRoot)); ok {
			return Resolution{Subfolder: s, Source: SourceDirectory}, nil
		}
		if mk, ok := markers.Nearest(pos); ok && mk.Subfolder != "" {
			return Resolution{Subfolder: mk.Subfolder, Source: SourcePosition}, nil
		}
	}
	if fallback != "" {
		return Resolution{Subfolder: fallback, Source: SourceFallback}, nil
	}
	return Resolution{}, &UnresolvedSubfolderError{Path: p.Path}
}
