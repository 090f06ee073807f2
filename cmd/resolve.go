package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/flaremd/core/engine"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

var (
	flagResolvePosition int
	flagResolveMarkers  []string
	flagResolveSiteDir  string
	flagResolveFallback string
	flagResolveVerbose  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <unit> <href>",
	Short: "Resolve a single reference to its published URL",
	Long: `Resolve normalizes one reference as it would appear in a unit's
concatenated document and prints the absolute URL it is rewritten to.
Origin markers can be given to exercise positional subfolder resolution.

Examples:
  flaremd resolve Content 'Actions/ENCODINGS/_IDOL_ENCODINGS.htm#Georgian'
  flaremd resolve IDOLServer Content/Shared_Admin/Ports.htm --position 120 \
    --marker 0:Content/IAS/Intro.htm:documentsecurity`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().IntVar(&flagResolvePosition, "position", 0, "Byte offset of the reference in the document")
	resolveCmd.Flags().StringArrayVar(&flagResolveMarkers, "marker", nil, "Origin marker as pos:path:subfolder (repeatable)")
	resolveCmd.Flags().StringVar(&flagResolveSiteDir, "site-dir", "", "Published site directory (default: catalog entry)")
	resolveCmd.Flags().StringVar(&flagResolveFallback, "fallback", "", "Fallback subfolder for merged units")
	resolveCmd.Flags().BoolVarP(&flagResolveVerbose, "verbose", "v", false, "Print the normalized path and subfolder source")
}

func runResolve(cmd *cobra.Command, args []string) error {
	unit, href := args[0], args[1]

	ms := make([]subfolder.Marker, 0, len(flagResolveMarkers))
	for _, s := range flagResolveMarkers {
		m, err := parseMarker(s)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Pos < ms[j].Pos })
	markers, err := subfolder.NewMarkers(ms...)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(flagBaseURL)
	if err != nil {
		return err
	}
	eng, err := engine.New(cat, unit,
		engine.WithSiteDir(flagResolveSiteDir),
		engine.WithFallback(subfolder.Subfolder(flagResolveFallback)),
	)
	if err != nil {
		return err
	}

	l, err := eng.Lookup(href, flagResolvePosition, markers)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	out.line("%s", l.URL)
	if flagResolveVerbose {
		out.line("  family:    %s", eng.Family())
		out.line("  path:      %s", l.Path)
		if l.Resolution.Subfolder != "" {
			out.line("  subfolder: %s (%s)", l.Resolution.Subfolder, l.Resolution.Source)
		}
	}
	return nil
}
