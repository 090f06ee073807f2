package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

var markerRe = regexp.MustCompile(`<!--[ \t]*BEGIN_FILE:[ \t]*(\S+)(?:[ \t]+subfolder=(\S+))?[ \t]*-->`)

// MarkerComment renders the origin marker written in front of each
// concatenated topic. An empty sub is left out.
func MarkerComment(path string, sub subfolder.Subfolder) string {
	if sub == "" {
		return fmt.Sprintf("<!-- BEGIN_FILE: %s -->", path)
	}
	return fmt.Sprintf("<!-- BEGIN_FILE: %s subfolder=%s -->", path, sub)
}

// Markers recovers the origin markers of a concatenated document. Each
// marker's position is the offset of its comment.
func Markers(src []byte) (*subfolder.Markers, error) {
	ms := &subfolder.Markers{}
	for _, m := range markerRe.FindAllSubmatchIndex(src, -1) {
		mk := subfolder.Marker{
			Pos:  m[0],
			Path: string(src[m[2]:m[3]]),
		}
		if m[4] >= 0 {
			mk.Subfolder = subfolder.Subfolder(src[m[4]:m[5]])
		}
		if err := ms.Append(mk); err != nil {
			return nil, fmt.Errorf("recovering markers: %w", err)
		}
	}
	return ms, nil
}

// StripMarkers removes marker comments, including the line they sit on when
// nothing else is on it.
func StripMarkers(src []byte) []byte {
	lines := strings.Split(string(src), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if markerRe.MatchString(l) {
			l = markerRe.ReplaceAllString(l, "")
			if strings.TrimSpace(l) == "" {
				continue
			}
		}
		kept = append(kept, l)
	}
	return []byte(strings.Join(kept, "\n"))
}
