// Package pipeline converts one extracted documentation bundle into a
// single Markdown document with absolute cross references.
//
// Run detects the bundle layout, reads every base folder's TOC, converts
// the listed topics with a bounded worker pool, concatenates them in TOC
// order with origin markers, rewrites references through the engine and
// finally cleans the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gaurav-prasanna/flaremd/core"
	"github.com/gaurav-prasanna/flaremd/core/bundle"
	"github.com/gaurav-prasanna/flaremd/core/cleanup"
	"github.com/gaurav-prasanna/flaremd/core/concat"
	"github.com/gaurav-prasanna/flaremd/core/convert"
	"github.com/gaurav-prasanna/flaremd/core/engine"
	"github.com/gaurav-prasanna/flaremd/core/extract"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/metrics"
	"github.com/gaurav-prasanna/flaremd/core/toc"
)

// Stage names used for logs and duration metrics.
const (
	StageDetect  = "detect"
	StageConvert = "convert"
	StageRewrite = "rewrite"
	StageCleanup = "cleanup"
)

// Unit outcomes recorded by Run.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// ErrNoTopics is returned when no topic of the bundle could be converted.
var ErrNoTopics = errors.New("pipeline: no topics converted")

// Options configures Run.
type Options struct {
	// Root is the extracted bundle directory.
	Root   string
	Engine *engine.Engine

	// MaxWorkers bounds concurrent topic conversions. Zero uses GOMAXPROCS.
	MaxWorkers  int
	HeaderLinks bool
	KeepMarkers bool
	External    bool

	// AssetDir is the folder images are pointed at in the Markdown.
	AssetDir string

	Extractor core.Extractor
	Converter core.Converter
	Logger    *slog.Logger
	Recorder  metrics.Recorder
}

// TopicError is a topic that could not be converted.
type TopicError struct {
	Path string
	Err  error
}

// Result is the outcome of Run.
type Result struct {
	Markdown []byte
	Report   engine.Report
	Layout   bundle.Layout
	Topics   int
	Failed   []TopicError
	// Images are absolute paths of the pictures referenced by topics.
	Images   []string
	Title    string
	Language string
}

// Outcome classifies the run for metrics.
func (r Result) Outcome() string {
	switch {
	case r.Topics == 0:
		return OutcomeFailed
	case len(r.Failed) > 0 || len(r.Report.Malformed) > 0:
		return OutcomePartial
	default:
		return OutcomeOK
	}
}

type job struct {
	base  bundle.Base
	entry toc.Entry
}

type converted struct {
	topic core.Topic
	page  core.Page
}

// Run converts the bundle at opts.Root.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Engine == nil {
		return Result{}, errors.New("pipeline: engine is required")
	}
	opts = withDefaults(opts)
	log := opts.Logger.With(logfields.Unit(opts.Engine.Unit().Name))

	var res Result
	stage := func(name string, start time.Time) {
		d := time.Since(start)
		opts.Recorder.ObserveStageDuration(name, d)
		log.Debug("stage done", logfields.Stage(name), logfields.DurationMS(float64(d.Milliseconds())))
	}

	start := time.Now()
	layout, err := bundle.Detect(opts.Root)
	if err != nil {
		opts.Recorder.IncUnitOutcome(OutcomeFailed)
		return res, err
	}
	res.Layout = layout
	stage(StageDetect, start)
	log.Info("bundle detected", logfields.Path(layout.Root), slog.String("shape", string(layout.Shape)), logfields.Count(len(layout.Bases)))

	start = time.Now()
	b := concat.NewBuilder(concat.Options{
		HeaderLinks: opts.HeaderLinks,
		TopicURL:    opts.Engine.TopicURL,
		Logger:      log,
	})
	seenImages := map[string]bool{}
	for _, base := range layout.Bases {
		entries, err := toc.Read(base.Dir, log)
		if err != nil {
			opts.Recorder.IncUnitOutcome(OutcomeFailed)
			return res, fmt.Errorf("reading TOC of %s: %w", base.Rel, err)
		}
		jobs := make([]job, len(entries))
		for i, e := range entries {
			jobs[i] = job{base: base, entry: e}
		}

		name := base.Name
		if base.Subfolder != "" {
			name = string(base.Subfolder)
		}
		b.StartGuide(name, base.Subfolder)

		results := runOrdered(ctx, jobs, opts.MaxWorkers, func(_ context.Context, j job) (converted, error) {
			return convertTopic(j, opts)
		})
		if err := ctx.Err(); err != nil {
			opts.Recorder.IncUnitOutcome(OutcomeFailed)
			return res, err
		}

		for i, r := range results {
			p := jobs[i].entry.Path
			if r.Err != nil {
				opts.Recorder.IncTopicConverted(false)
				log.Warn("topic conversion failed", logfields.Path(p), logfields.Error(r.Err))
				res.Failed = append(res.Failed, TopicError{Path: p, Err: r.Err})
				continue
			}
			opts.Recorder.IncTopicConverted(true)
			if err := b.Append(concat.Topic{Path: p, Depth: jobs[i].entry.Depth, Markdown: r.Value.topic.Markdown}); err != nil {
				return res, err
			}
			if res.Title == "" {
				res.Title, res.Language = r.Value.page.Title, r.Value.page.Language
			}
			for _, img := range r.Value.topic.Images {
				abs := filepath.Join(base.Dir, filepath.FromSlash(img))
				if !seenImages[abs] {
					seenImages[abs] = true
					res.Images = append(res.Images, abs)
				}
			}
		}
	}
	res.Topics = b.Len()
	stage(StageConvert, start)
	if res.Topics == 0 {
		opts.Recorder.IncUnitOutcome(OutcomeFailed)
		return res, ErrNoTopics
	}

	start = time.Now()
	doc := b.Document()
	rewritten, report, err := opts.Engine.Rewrite(doc.Text, doc.Markers)
	if err != nil {
		opts.Recorder.IncUnitOutcome(OutcomeFailed)
		return res, fmt.Errorf("rewriting references: %w", err)
	}
	res.Report = report
	stage(StageRewrite, start)

	start = time.Now()
	res.Markdown = cleanup.Clean(rewritten, cleanup.Options{KeepMarkers: opts.KeepMarkers, External: opts.External})
	stage(StageCleanup, start)

	opts.Recorder.IncUnitOutcome(res.Outcome())
	log.Info("unit converted",
		logfields.Count(res.Topics),
		slog.Int("failed", len(res.Failed)),
		slog.Int("rewritten", report.Rewritten),
		slog.Int("malformed", len(report.Malformed)))
	return res, nil
}

func withDefaults(opts Options) Options {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.New()
	}
	if opts.Converter == nil {
		opts.Converter = convert.New(opts.AssetDir)
	}
	return opts
}

func convertTopic(j job, opts Options) (converted, error) {
	data, err := os.ReadFile(filepath.Join(j.base.Dir, filepath.FromSlash(j.entry.Path)))
	if err != nil {
		return converted{}, fmt.Errorf("reading topic: %w", err)
	}
	html, err := extract.Decode(data, "")
	if err != nil {
		return converted{}, err
	}
	page, err := opts.Extractor.Extract(html)
	if err != nil {
		return converted{}, fmt.Errorf("extract: %w", err)
	}
	if page.Title == "" {
		page.Title = j.entry.Title
	}
	topic, err := opts.Converter.Convert(page.HTML, j.entry.Path)
	if err != nil {
		return converted{}, fmt.Errorf("convert: %w", err)
	}
	return converted{topic: topic, page: page}, nil
}
