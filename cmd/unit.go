package cmd

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/bundle"
	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// siteDirRe matches published site directories such as
// IDOLServer_25.4_Documentation.
var siteDirRe = regexp.MustCompile(`^(.+?)_\d+(?:\.\d+)*_Documentation$`)

// unitForSiteDir returns the catalog unit published under siteDir. Unknown
// directories give the name before the version suffix.
func unitForSiteDir(cat *catalog.Catalog, siteDir string) string {
	for _, u := range cat.Units() {
		if u.SiteDir == siteDir {
			return u.Name
		}
	}
	if m := siteDirRe.FindStringSubmatch(siteDir); m != nil {
		return m[1]
	}
	return siteDir
}

// siteDirOf guesses the site directory of an extracted bundle: the first
// path segment above its base folders, or the root folder name.
func siteDirOf(layout bundle.Layout) string {
	for _, b := range layout.Bases {
		first, _, found := strings.Cut(b.Rel, "/")
		if found && siteDirRe.MatchString(first) {
			return first
		}
	}
	return filepath.Base(layout.Root)
}

// parseMarker reads a "pos:path:subfolder" flag value.
func parseMarker(s string) (subfolder.Marker, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return subfolder.Marker{}, fmt.Errorf("marker %q: want pos:path:subfolder", s)
	}
	pos, err := strconv.Atoi(parts[0])
	if err != nil {
		return subfolder.Marker{}, fmt.Errorf("marker %q: bad position: %w", s, err)
	}
	return subfolder.Marker{Pos: pos, Path: parts[1], Subfolder: subfolder.Subfolder(parts[2])}, nil
}
