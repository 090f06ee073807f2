// Package engine turns relative references found in a converted
// documentation unit into absolute published URLs.
//
// An Engine is bound to one unit: the family is classified once at
// construction, and every lookup runs normalize, then subfolder resolution
// for Merged units, then shell assembly.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/metrics"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
	"github.com/gaurav-prasanna/flaremd/core/urlshell"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-reference warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithSiteDir overrides the unit's published site directory.
func WithSiteDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.unit.SiteDir = dir
		}
	}
}

// WithFallback overrides the unit's fallback subfolder.
func WithFallback(s subfolder.Subfolder) Option {
	return func(e *Engine) {
		if s != "" {
			e.unit.Fallback = s
		}
	}
}

// WithFamily forces a family instead of classifying the unit name.
func WithFamily(f family.Family) Option {
	return func(e *Engine) {
		e.unit.Family = f
	}
}

// Engine resolves references for a single documentation unit. It holds no
// mutable state and may be shared by goroutines working on the same unit.
type Engine struct {
	unit       catalog.Unit
	base       string
	mapping    subfolder.Mapping
	normalizer *pathnorm.Normalizer
	resolver   *subfolder.Resolver
	shell      urlshell.Shell
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// New binds an Engine to unitName. It fails when the unit is Merged and no
// usable fallback subfolder is configured.
func New(cat *catalog.Catalog, unitName string, opts ...Option) (*Engine, error) {
	e := &Engine{
		unit:       cat.Unit(unitName),
		base:       cat.SiteBase(),
		mapping:    cat.Mapping(),
		normalizer: cat.Normalizer(),
		resolver:   cat.Resolver(),
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.shell = urlshell.For(e.unit.Family)

	if _, matched := cat.Classifier().Match(unitName); !matched && !e.unit.Known {
		e.logger.Debug("unit matches no family marker, using standard layout",
			logfields.Unit(unitName))
	}

	if e.unit.Family == family.Merged {
		switch {
		case e.unit.Fallback == "":
			return nil, fmt.Errorf("unit %s: merged unit has no fallback subfolder: %w", unitName, catalog.ErrInvalidCatalog)
		case !e.mapping.Has(e.unit.Fallback):
			return nil, fmt.Errorf("unit %s: fallback %q is not a configured subfolder: %w", unitName, e.unit.Fallback, catalog.ErrInvalidCatalog)
		}
	}
	return e, nil
}

// Unit returns the catalog entry the engine is bound to.
func (e *Engine) Unit() catalog.Unit { return e.unit }

// Family returns the unit's family.
func (e *Engine) Family() family.Family { return e.unit.Family }

// Lookup is the detailed outcome of resolving one reference.
type Lookup struct {
	URL        string
	Path       pathnorm.Path
	Resolution subfolder.Resolution
}

// Lookup resolves raw, referenced at byte offset pos of the document whose
// origin markers are markers. markers may be nil.
func (e *Engine) Lookup(raw string, pos int, markers *subfolder.Markers) (Lookup, error) {
	p, err := e.normalizer.Normalize(raw, e.unit.Family)
	if err != nil {
		return Lookup{}, err
	}
	return e.assemble(p, pos, markers, e.unit.Fallback)
}

// Resolve returns the absolute URL for raw.
func (e *Engine) Resolve(raw string, pos int, markers *subfolder.Markers) (string, error) {
	l, err := e.Lookup(raw, pos, markers)
	if err != nil {
		return "", err
	}
	return l.URL, nil
}

// TopicURL returns the published URL of a topic being concatenated. sub is
// the subfolder of the guide the topic came from and is used when directory
// inference does not place it.
func (e *Engine) TopicURL(path string, sub subfolder.Subfolder) (string, error) {
	p, err := e.normalizer.Normalize(path, e.unit.Family)
	if err != nil {
		return "", err
	}
	fallback := sub
	if fallback == "" {
		fallback = e.unit.Fallback
	}
	l, err := e.assemble(p, 0, nil, fallback)
	if err != nil {
		return "", err
	}
	return l.URL, nil
}

func (e *Engine) assemble(p pathnorm.Path, pos int, markers *subfolder.Markers, fallback subfolder.Subfolder) (Lookup, error) {
	var res subfolder.Resolution
	if e.unit.Family == family.Merged {
		r, err := e.resolver.Resolve(e.unit.Family, p, markers, pos, fallback)
		if err != nil {
			return Lookup{}, err
		}
		res = r
		e.recorder.IncSubfolderResolution(string(r.Source))
	}

	u := e.shell.Assemble(urlshell.Target{
		Base:      e.base,
		SiteDir:   e.unit.SiteDir,
		Path:      p,
		Subfolder: res.Subfolder,
	})
	return Lookup{URL: u, Path: p, Resolution: res}, nil
}
