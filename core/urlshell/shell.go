// Package urlshell assembles published URLs. Each family has its own Shell,
// selected by For.
package urlshell

import (
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// Target is everything a Shell needs to build one URL.
type Target struct {
	Base      string
	SiteDir   string
	Path      pathnorm.Path
	Subfolder subfolder.Subfolder
}

// Shell builds the absolute URL for a normalized path.
type Shell interface {
	Assemble(t Target) string
}

// For returns the Shell of a family.
func For(f family.Family) Shell {
	switch f {
	case family.SDK:
		return sdkShell{}
	case family.Merged:
		return mergedShell{}
	default:
		return standardShell{}
	}
}

type standardShell struct{}

// Assemble builds {base}/{site}/Help/{path}.
func (standardShell) Assemble(t Target) string {
	return build(t, "Help")
}

type sdkShell struct{}

// Assemble builds {base}/{site}/Guides/html/{path}.
func (sdkShell) Assemble(t Target) string {
	return build(t, "Guides", "html")
}

type mergedShell struct{}

// Assemble builds {base}/{site}/Guides/html/{subfolder}/{path}. Without a
// subfolder the segment is left out.
func (mergedShell) Assemble(t Target) string {
	return build(t, "Guides", "html", string(t.Subfolder))
}

func build(t Target, shell ...string) string {
	parts := []string{strings.TrimRight(t.Base, "/"), strings.Trim(t.SiteDir, "/")}
	for _, s := range shell {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, strings.TrimLeft(t.Path.Path, "/"))
	u := strings.Join(parts, "/")
	if t.Path.Anchor != "" {
		u += "#" + t.Path.Anchor
	}
	return u
}
