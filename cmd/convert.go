// Package cmd: convert command.
// This is the main command that orchestrates the pipeline:
// download → extract → convert → rewrite → render → write.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/flaremd/core"
	"github.com/gaurav-prasanna/flaremd/core/bundle"
	"github.com/gaurav-prasanna/flaremd/core/engine"
	"github.com/gaurav-prasanna/flaremd/core/fetch"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/metrics"
	"github.com/gaurav-prasanna/flaremd/core/output"
	"github.com/gaurav-prasanna/flaremd/core/pipeline"
	"github.com/gaurav-prasanna/flaremd/core/render"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
	"github.com/gaurav-prasanna/flaremd/crawl"
)

// Flag variables.
var (
	flagPDF         bool
	flagMarkdown    bool
	flagJSON        bool
	flagFrontMatter bool

	flagUnit        string
	flagSiteDir     string
	flagFallback    string
	flagOutputDir   string
	flagMaxWorkers  int
	flagStrict      bool
	flagKeepMarkers bool
	flagExternal    bool
	flagHeaderLinks bool
	flagCacheDir    string
	flagForce       bool
	flagMetricsFile string
)

var convertCmd = &cobra.Command{
	Use:   "convert <bundle-dir|zip-url>",
	Short: "Convert a documentation bundle to the specified output format",
	Long: `Convert reads an extracted Flare bundle (or downloads and extracts a ZIP
bundle), converts every topic listed in its TOC to Markdown, concatenates
them, rewrites cross references into absolute URLs and writes the result
in the chosen format.

Examples:
  flaremd convert ./Content_25.4_Documentation --markdown
  flaremd convert https://host/docs/idol/knowledge-discovery-25.4/IDOLServer_25.4_Documentation.zip --markdown --header-links
  flaremd convert ./bundle --json --unit DataAdmin --output_dir ./out
  flaremd convert ./bundle --pdf --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Output format flags (mutually exclusive).
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	convertCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	convertCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	convertCmd.Flags().BoolVar(&flagFrontMatter, "front-matter", false, "Prefix Markdown output with YAML front matter")

	// Unit flags.
	convertCmd.Flags().StringVar(&flagUnit, "unit", "", "Documentation unit name (default: derived from the site directory)")
	convertCmd.Flags().StringVar(&flagSiteDir, "site-dir", "", "Published site directory (default: catalog entry or bundle folder)")
	convertCmd.Flags().StringVar(&flagFallback, "fallback", "", "Fallback subfolder for merged units")

	// Pipeline flags.
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	convertCmd.Flags().IntVar(&flagMaxWorkers, "max_workers", 0, "Concurrent topic conversions (default: number of CPUs)")
	convertCmd.Flags().BoolVar(&flagStrict, "strict", false, "Fail when any reference could not be rewritten")
	convertCmd.Flags().BoolVar(&flagKeepMarkers, "keep-markers", false, "Keep BEGIN_FILE origin markers in the output")
	convertCmd.Flags().BoolVar(&flagExternal, "external", false, "Drop marker comments and unwrap commented links for publishing")
	convertCmd.Flags().BoolVar(&flagHeaderLinks, "header-links", false, "Append a link to the published topic to each topic heading")

	// Download flags.
	convertCmd.Flags().StringVar(&flagCacheDir, "cache_dir", "", "Download and extraction directory (default: OS temp dir)")
	convertCmd.Flags().BoolVar(&flagForce, "force", false, "Download again even when the ZIP is cached")

	convertCmd.Flags().StringVar(&flagMetricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src := args[0]
	log := slog.Default()
	out := newPrinter(cmd.OutOrStdout())

	// --- Validate flags ---
	if err := validateFlags(); err != nil {
		return err
	}
	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	root, derivedBase, derivedSite, err := prepareBundle(cmd, src, log)
	if err != nil {
		return err
	}

	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = derivedBase
	}
	cat, err := loadCatalog(baseURL)
	if err != nil {
		return err
	}

	siteDir := flagSiteDir
	if siteDir == "" {
		siteDir = derivedSite
	}
	unit := flagUnit
	if unit == "" {
		if siteDir == "" {
			layout, err := bundle.Detect(root)
			if err != nil {
				return err
			}
			siteDir = siteDirOf(layout)
		}
		unit = unitForSiteDir(cat, siteDir)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var promRecorder *metrics.PrometheusRecorder
	if flagMetricsFile != "" {
		promRecorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		recorder = promRecorder
	}

	log = log.With(logfields.Unit(unit))
	eng, err := engine.New(cat, unit,
		engine.WithLogger(log),
		engine.WithRecorder(recorder),
		engine.WithSiteDir(siteDir),
		engine.WithFallback(subfolder.Subfolder(flagFallback)),
	)
	if err != nil {
		return err
	}
	siteDir = eng.Unit().SiteDir

	fmt.Fprintf(cmd.OutOrStdout(), "Converting %s (unit %s, family %s)...\n", root, unit, eng.Family())

	res, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Root:        root,
		Engine:      eng,
		MaxWorkers:  flagMaxWorkers,
		HeaderLinks: flagHeaderLinks,
		KeepMarkers: flagKeepMarkers,
		External:    flagExternal,
		AssetDir:    output.AssetDir(siteDir),
		Logger:      log,
		Recorder:    recorder,
	})
	if err != nil {
		return fmt.Errorf("converting %s: %w", src, err)
	}

	meta := core.DocumentMetadata{
		Unit:        unit,
		Family:      eng.Family().String(),
		SiteDir:     siteDir,
		BaseURL:     cat.SiteBase(),
		Source:      src,
		Title:       res.Title,
		Language:    res.Language,
		Topics:      res.Topics,
		RunID:       runID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := renderer.Render(string(res.Markdown), meta)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.WriteDocument(siteDir, data, renderer.Extension())
	if err != nil {
		return err
	}
	out.ok("Written: %s", path)

	if !flagPDF && len(res.Images) > 0 {
		copied, missing, err := writer.CopyAssets(siteDir, res.Images)
		if err != nil {
			return err
		}
		out.ok("Copied %d images to %s", copied, filepath.Join(writer.OutputDir, output.AssetDir(siteDir)))
		for _, m := range missing {
			log.Warn("image not found", logfields.Path(m))
		}
	}

	report(out, res)

	if promRecorder != nil {
		if err := promRecorder.WriteTextfile(flagMetricsFile); err != nil {
			return err
		}
	}
	return res.Report.Err(flagStrict)
}

// prepareBundle returns the extracted bundle root for src. ZIP URLs and
// local ZIP files are extracted below the cache directory; for URLs the
// published base URL and site directory are derived as well.
func prepareBundle(cmd *cobra.Command, src string, log *slog.Logger) (root, base, siteDir string, err error) {
	cacheDir := flagCacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "flaremd")
	}

	zipPath := ""
	switch {
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		if !crawl.IsZip(src) {
			return "", "", "", fmt.Errorf("invalid bundle URL: %s (must point at a .zip file)", src)
		}
		base, siteDir, err = crawl.DeriveBaseAndSite(src)
		if err != nil {
			return "", "", "", err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Downloading %s...\n", src)
		zipPath, err = fetch.New(fetch.WithLogger(log)).Download(cmd.Context(), src, cacheDir, flagForce)
		if err != nil {
			return "", "", "", fmt.Errorf("download: %w", err)
		}
	case strings.EqualFold(filepath.Ext(src), ".zip"):
		zipPath = src
		siteDir = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	default:
		info, err := os.Stat(src)
		if err != nil {
			return "", "", "", fmt.Errorf("reading bundle: %w", err)
		}
		if !info.IsDir() {
			return "", "", "", fmt.Errorf("%s: not a directory or ZIP bundle", src)
		}
		return src, "", "", nil
	}

	dest := filepath.Join(cacheDir, strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath)))
	if flagForce {
		if err := os.RemoveAll(dest); err != nil {
			return "", "", "", fmt.Errorf("clearing %s: %w", dest, err)
		}
	}
	root, err = bundle.Extract(zipPath, dest, log)
	if err != nil {
		return "", "", "", err
	}
	return root, base, siteDir, nil
}

// report prints the per-unit summary.
func report(out printer, res pipeline.Result) {
	out.line("  topics: %d, rewritten: %d, skipped: %d, malformed: %d",
		res.Topics, res.Report.Rewritten, res.Report.Skipped, len(res.Report.Malformed))
	for _, f := range res.Failed {
		out.fail("topic %s: %v", f.Path, f.Err)
	}
	for _, f := range res.Report.Malformed {
		out.warn("line %d: %s (%s)", f.Line, f.Href, f.Reason)
	}
}

// validateFlags checks that exactly one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, on := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if on {
			formatCount++
		}
	}
	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagFrontMatter && !flagMarkdown {
		return fmt.Errorf("--front-matter requires --markdown")
	}
	if flagMaxWorkers < 0 {
		return fmt.Errorf("--max_workers must not be negative")
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(flagFrontMatter), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
