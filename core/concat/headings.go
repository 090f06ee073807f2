package concat

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.*)$`)

// AdjustHeadings shifts every ATX heading of md so that the first one sits
// at level depth. Relative levels are kept and clamped to 1..6. Headings
// inside fenced code are left alone.
func AdjustHeadings(md string, depth int) string {
	if depth <= 0 {
		return md
	}

	lines := strings.Split(md, "\n")
	fence := ""
	shift, found := 0, false
	for i, l := range lines {
		if f, ok := fenceToggle(l, fence); ok {
			fence = f
			continue
		}
		if fence != "" {
			continue
		}
		m := headingRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		level := len(m[1])
		if !found {
			shift, found = depth-level, true
		}
		level = min(max(level+shift, 1), 6)
		lines[i] = strings.Repeat("#", level) + " " + m[2]
	}
	return strings.Join(lines, "\n")
}

// fenceToggle reports whether l opens or closes a fenced code block and
// returns the fence that is open afterwards.
func fenceToggle(l, open string) (string, bool) {
	t := strings.TrimSpace(l)
	for _, f := range []string{"```", "~~~"} {
		if !strings.HasPrefix(t, f) {
			continue
		}
		switch open {
		case "":
			return f, true
		case f:
			return "", true
		}
	}
	return open, false
}
