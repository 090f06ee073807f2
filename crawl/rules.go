// Package crawl: URL rules for published documentation bundles.
package crawl

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var versionRe = regexp.MustCompile(`^(.*?)[-_ ]v?(\d+(?:[._]\d+)*)$`)

// IsZip reports whether rawURL points at a .zip file.
func IsZip(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(parsed.Path), ".zip")
}

// DeriveBaseAndSite splits a bundle URL such as
// https://host/documentation/idol/knowledge-discovery-25.4/Content_25.4_Documentation.zip
// into the published base URL (the ZIP's directory) and the site directory
// (the file name without .zip).
func DeriveBaseAndSite(zipURL string) (base, siteDir string, err error) {
	u, err := url.Parse(zipURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing %s: %w", zipURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("%s: not an absolute URL", zipURL)
	}
	p := strings.TrimRight(u.Path, "/")
	name := path.Base(p)
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".zip") {
		name = name[:len(name)-4]
	}
	if name == "" || name == "." || name == "/" {
		return "", "", fmt.Errorf("%s: no file name", zipURL)
	}
	dir := path.Dir(p)
	if dir == "/" || dir == "." {
		dir = ""
	}
	return u.Scheme + "://" + u.Host + dir, name, nil
}

// ParseProjectVersion splits a trailing version from a release name:
// "knowledge-discovery-25.4" gives ("knowledge-discovery", "25.4") and
// "IDOL_24_4" gives ("IDOL", "24.4"). Names without a version are
// returned whole with an empty version.
func ParseProjectVersion(name string) (project, version string) {
	m := versionRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil || m[1] == "" {
		return name, ""
	}
	return m[1], strings.ReplaceAll(m[2], "_", ".")
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
