package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/flaremd/core/cleanup"
	"github.com/gaurav-prasanna/flaremd/core/engine"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/scan"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

var (
	flagRewriteUnit     string
	flagRewriteSiteDir  string
	flagRewriteFallback string
	flagRewriteOutput   string
	flagRewriteInPlace  bool
	flagRewriteStrict   bool
	flagRewriteClean    bool
	flagRewriteKeep     bool
	flagRewriteExternal bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file.md>",
	Short: "Rewrite the cross references of a concatenated Markdown document",
	Long: `Rewrite resolves every internal reference of an existing concatenated
document into an absolute URL. Origin markers are recovered from the
document's BEGIN_FILE comments.

Examples:
  flaremd rewrite IDOLServer.md --unit IDOLServer > IDOLServer.rewritten.md
  flaremd rewrite Content.md --unit Content -w --clean`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().StringVar(&flagRewriteUnit, "unit", "", "Documentation unit name (required)")
	rewriteCmd.Flags().StringVar(&flagRewriteSiteDir, "site-dir", "", "Published site directory (default: catalog entry)")
	rewriteCmd.Flags().StringVar(&flagRewriteFallback, "fallback", "", "Fallback subfolder for merged units")
	rewriteCmd.Flags().StringVarP(&flagRewriteOutput, "output", "o", "", "Output file (default: stdout)")
	rewriteCmd.Flags().BoolVarP(&flagRewriteInPlace, "write", "w", false, "Rewrite the file in place")
	rewriteCmd.Flags().BoolVar(&flagRewriteStrict, "strict", false, "Fail when any reference could not be rewritten")
	rewriteCmd.Flags().BoolVar(&flagRewriteClean, "clean", false, "Clean up the document after rewriting")
	rewriteCmd.Flags().BoolVar(&flagRewriteKeep, "keep-markers", false, "Keep BEGIN_FILE markers when cleaning")
	rewriteCmd.Flags().BoolVar(&flagRewriteExternal, "external", false, "Prepare the cleaned document for publishing")
	_ = rewriteCmd.MarkFlagRequired("unit")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	if flagRewriteInPlace && flagRewriteOutput != "" {
		return fmt.Errorf("--write and --output are mutually exclusive")
	}
	src := args[0]
	doc, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	markers, err := scan.Markers(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	cat, err := loadCatalog(flagBaseURL)
	if err != nil {
		return err
	}
	log := slog.Default().With(logfields.Unit(flagRewriteUnit))
	eng, err := engine.New(cat, flagRewriteUnit,
		engine.WithLogger(log),
		engine.WithSiteDir(flagRewriteSiteDir),
		engine.WithFallback(subfolder.Subfolder(flagRewriteFallback)),
	)
	if err != nil {
		return err
	}

	rewritten, rep, err := eng.Rewrite(doc, markers)
	if err != nil {
		return err
	}
	if flagRewriteClean {
		rewritten = cleanup.Clean(rewritten, cleanup.Options{KeepMarkers: flagRewriteKeep, External: flagRewriteExternal})
	}
	log.Info("document rewritten", logfields.Path(src), logfields.Count(markers.Len()),
		slog.Int("rewritten", rep.Rewritten), slog.Int("malformed", len(rep.Malformed)))

	dest := flagRewriteOutput
	if flagRewriteInPlace {
		dest = src
	}
	status := newPrinter(cmd.ErrOrStderr())
	if dest == "" {
		if _, err := cmd.OutOrStdout().Write(rewritten); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(dest, rewritten, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		status.ok("Written: %s", dest)
	}

	status.line("  rewritten: %d, skipped: %d, malformed: %d", rep.Rewritten, rep.Skipped, len(rep.Malformed))
	for _, f := range rep.Malformed {
		status.warn("line %d: %s (%s)", f.Line, f.Href, f.Reason)
	}
	return rep.Err(flagRewriteStrict)
}
