// Package family classifies documentation units into the URL-shell
// conventions used by the publishing site: Standard, SDK and Merged.
package family

import (
	"fmt"
	"strings"
)

// Family is the URL-shell convention a documentation unit is published under.
type Family int

const (
	// Standard units are published under {site}/Help/.
	Standard Family = iota
	// SDK units are published under {site}/Guides/html/.
	SDK
	// Merged units concatenate several guides, each under
	// {site}/Guides/html/{subfolder}/.
	Merged
)

// String returns the lower-case name used in logs, metrics and config.
func (f Family) String() string {
	switch f {
	case Standard:
		return "standard"
	case SDK:
		return "sdk"
	case Merged:
		return "merged"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily converts a config or flag value into a Family.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return Standard, nil
	case "sdk":
		return SDK, nil
	case "merged":
		return Merged, nil
	default:
		return Standard, fmt.Errorf("unknown family %q (want standard, sdk or merged)", s)
	}
}

// Markers configures the substrings that identify non-standard families.
type Markers struct {
	// Merged is matched as a substring of the unit name.
	Merged string
	// SDK entries are matched as substrings of the unit name.
	SDK []string
	// SDKSuffixes are matched against the end of the unit name.
	SDKSuffixes []string
}

// Classifier maps unit names to families. It is immutable once built.
type Classifier struct {
	merged      string
	sdk         []string
	sdkSuffixes []string
}

// NewClassifier creates a Classifier from the given markers.
func NewClassifier(m Markers) *Classifier {
	return &Classifier{
		merged:      m.Merged,
		sdk:         append([]string(nil), m.SDK...),
		sdkSuffixes: append([]string(nil), m.SDKSuffixes...),
	}
}

// Classify returns the family for unitName. Names matching no marker are
// Standard.
func (c *Classifier) Classify(unitName string) Family {
	f, _ := c.Match(unitName)
	return f
}

// Match is Classify that also reports whether a marker matched, so callers
// can notice units that only fell through to the Standard default.
func (c *Classifier) Match(unitName string) (Family, bool) {
	if c.merged != "" && strings.Contains(unitName, c.merged) {
		return Merged, true
	}
	for _, m := range c.sdk {
		if m != "" && strings.Contains(unitName, m) {
			return SDK, true
		}
	}
	for _, s := range c.sdkSuffixes {
		if s != "" && strings.HasSuffix(unitName, s) {
			return SDK, true
		}
	}
	return Standard, false
}
