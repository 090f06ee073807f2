// Package catalog holds the static configuration the link engine consumes:
// site base URL, family markers, normalizer directory names, the Merged
// subfolder mapping and the per-unit site directory and fallback.
//
// A Catalog is immutable once built. New validates everything up front so
// configuration defects fail before any document is touched.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// ErrInvalidCatalog is wrapped by every ValidationError.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ValidationError lists every problem found while validating a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid catalog: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// Unit is a resolved catalog entry.
type Unit struct {
	Name     string
	SiteDir  string
	Family   family.Family
	Fallback subfolder.Subfolder
	// Known is false for units synthesized by Catalog.Unit.
	Known bool
}

// Catalog is the validated, read-only configuration.
type Catalog struct {
	version         string
	siteBase        string
	rules           pathnorm.Rules
	markers         family.Markers
	classifier      *family.Classifier
	mapping         subfolder.Mapping
	aliases         []pathnorm.Alias
	defaultFallback subfolder.Subfolder
	units           []Unit
	byName          map[string]int
}

// New validates f and builds a Catalog from it.
func New(f File) (*Catalog, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	rules := pathnorm.DefaultRules()
	if f.ContentRoot != "" {
		rules.ContentRoot = strings.Trim(f.ContentRoot, "/")
	}
	if f.Rules.SharedAdminDir != "" {
		rules.SharedAdminDir = f.Rules.SharedAdminDir
	}
	if f.Rules.ActionsDir != "" {
		rules.ActionsDir = f.Rules.ActionsDir
	}
	if f.Rules.EncodingsDir != "" {
		rules.EncodingsDir = f.Rules.EncodingsDir
	}
	if f.Rules.EncodingsFile != "" {
		rules.EncodingsFile = f.Rules.EncodingsFile
	}

	if f.SiteBase != "" {
		u, err := url.Parse(f.SiteBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			addf("site_base %q is not an absolute URL", f.SiteBase)
		}
	}

	markers := family.Markers{
		Merged:      f.Families.MergedMarker,
		SDK:         nonEmpty(f.Families.SDKMarkers),
		SDKSuffixes: nonEmpty(f.Families.SDKSuffixes),
	}
	if markers.Merged == "" {
		addf("families.merged_marker is required")
	}
	if len(markers.SDK) == 0 && len(markers.SDKSuffixes) == 0 {
		addf("families needs at least one sdk_markers or sdk_suffixes entry")
	}

	cats := make([]subfolder.Category, 0, len(f.Subfolders))
	seen := map[string]bool{}
	for i, s := range f.Subfolders {
		switch {
		case s.Name == "":
			addf("subfolders[%d]: name is required", i)
			continue
		case seen[s.Name]:
			addf("subfolders[%d]: duplicate name %q", i, s.Name)
			continue
		}
		seen[s.Name] = true
		dirs := nonEmpty(s.Dirs)
		if len(dirs) == 0 {
			addf("subfolders[%d] %q: dirs is empty", i, s.Name)
		}
		cats = append(cats, subfolder.Category{Subfolder: subfolder.Subfolder(s.Name), Dirs: dirs})
	}
	if len(cats) == 0 {
		addf("subfolders table is empty")
	}
	mapping := subfolder.NewMapping(cats...)

	aliases := make([]pathnorm.Alias, 0, len(f.Aliases))
	for i, a := range f.Aliases {
		if a.From == "" || a.To == "" {
			addf("aliases[%d]: from and to are required", i)
			continue
		}
		aliases = append(aliases, pathnorm.Alias{From: a.From, To: a.To})
	}
	for i, a := range aliases {
		for _, b := range aliases {
			if strings.HasPrefix(a.To, b.From) {
				addf("aliases[%d]: target %q would be rewritten again by %q", i, a.To, b.From)
				break
			}
		}
	}

	defaultFallback := subfolder.Subfolder(f.DefaultFallback)
	if defaultFallback != "" && !mapping.Has(defaultFallback) {
		addf("default_fallback %q is not a configured subfolder", defaultFallback)
	}

	classifier := family.NewClassifier(markers)
	units := make([]Unit, 0, len(f.Units))
	byName := make(map[string]int, len(f.Units))
	for i, us := range f.Units {
		if us.Name == "" {
			addf("units[%d]: name is required", i)
			continue
		}
		if _, dup := byName[us.Name]; dup {
			addf("units[%d]: duplicate unit %q", i, us.Name)
			continue
		}

		fam := classifier.Classify(us.Name)
		if us.Family != "" {
			parsed, err := family.ParseFamily(us.Family)
			if err != nil {
				addf("units[%d] %q: %v", i, us.Name, err)
				continue
			}
			fam = parsed
		}

		fallback := subfolder.Subfolder(us.Fallback)
		if fallback == "" {
			fallback = defaultFallback
		}
		if fam == family.Merged {
			switch {
			case fallback == "":
				addf("units[%d] %q: merged unit needs a fallback subfolder", i, us.Name)
			case !mapping.Has(fallback):
				addf("units[%d] %q: fallback %q is not a configured subfolder", i, us.Name, fallback)
			}
		}

		siteDir := strings.Trim(us.SiteDir, "/")
		if siteDir == "" {
			siteDir = us.Name
		}
		byName[us.Name] = len(units)
		units = append(units, Unit{Name: us.Name, SiteDir: siteDir, Family: fam, Fallback: fallback, Known: true})
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return &Catalog{
		version:         f.Version,
		siteBase:        strings.TrimRight(f.SiteBase, "/"),
		rules:           rules,
		markers:         markers,
		classifier:      classifier,
		mapping:         mapping,
		aliases:         aliases,
		defaultFallback: defaultFallback,
		units:           units,
		byName:          byName,
	}, nil
}

// Version is the documentation version the catalog was written for.
func (c *Catalog) Version() string { return c.version }

// SiteBase is the base URL every resolved link starts with.
func (c *Catalog) SiteBase() string { return c.siteBase }

// Rules returns the normalizer directory names.
func (c *Catalog) Rules() pathnorm.Rules { return c.rules }

// Classifier returns the shared family classifier.
func (c *Catalog) Classifier() *family.Classifier { return c.classifier }

// Mapping returns the Merged subfolder table.
func (c *Catalog) Mapping() subfolder.Mapping { return c.mapping }

// DefaultFallback is the subfolder used for units without their own.
func (c *Catalog) DefaultFallback() subfolder.Subfolder { return c.defaultFallback }

// Normalizer builds a path normalizer from the catalog rules and aliases.
func (c *Catalog) Normalizer() *pathnorm.Normalizer {
	return pathnorm.New(c.rules, c.aliases...)
}

// Resolver builds a subfolder resolver from the catalog mapping.
func (c *Catalog) Resolver() *subfolder.Resolver {
	return subfolder.NewResolver(c.mapping, c.rules.ContentRoot)
}

// Units returns the catalogued units in file order.
func (c *Catalog) Units() []Unit {
	return append([]Unit(nil), c.units...)
}

// Unit returns the entry for name. Uncatalogued names get a synthesized
// entry: the name doubles as site dir, the family comes from the
// classifier and the fallback is the catalog default.
func (c *Catalog) Unit(name string) Unit {
	if i, ok := c.byName[name]; ok {
		return c.units[i]
	}
	return Unit{
		Name:     name,
		SiteDir:  name,
		Family:   c.classifier.Classify(name),
		Fallback: c.defaultFallback,
	}
}

// WithSiteBase returns a copy of c that resolves against base.
func (c *Catalog) WithSiteBase(base string) (*Catalog, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("site base %q is not an absolute URL", base)}}
	}
	cp := *c
	cp.siteBase = strings.TrimRight(base, "/")
	return &cp, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
