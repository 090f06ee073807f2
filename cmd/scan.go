package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/flaremd/core/bundle"
	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/toc"
)

var scanCmd = &cobra.Command{
	Use:   "scan <root>...",
	Short: "Show the layout of extracted documentation bundles",
	Long: `Scan detects the base folders of each extracted bundle, the unit and URL
family it maps to, and how many topics each TOC lists.

Examples:
  flaremd scan ./Content_25.4_Documentation ./IDOLServer_25.4_Documentation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(flagBaseURL)
	if err != nil {
		return err
	}
	out := newPrinter(cmd.OutOrStdout())

	var failed int
	for _, root := range args {
		text, err := describeBundle(cat, root)
		if err != nil {
			out.fail("%s: %v", root, err)
			failed++
			continue
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d bundles could not be scanned", failed, len(args))
	}
	return nil
}

// describeBundle renders the layout of root as a tree.
func describeBundle(cat *catalog.Catalog, root string) (string, error) {
	layout, err := bundle.Detect(root)
	if err != nil {
		return "", err
	}
	siteDir := siteDirOf(layout)
	unit := cat.Unit(unitForSiteDir(cat, siteDir))

	t := newLayoutTree(fmt.Sprintf("%s [%s, unit %s, family %s]", layout.Root, layout.Shape, unit.Name, unit.Family))
	for _, b := range layout.Bases {
		node := t.insert(b.Rel)
		entries, err := toc.Read(b.Dir, slog.Default())
		switch {
		case err != nil:
			node.Add("error: " + err.Error())
		case b.HasTOC:
			node.Add(fmt.Sprintf("toc: %d topics", len(entries)))
		default:
			node.Add(fmt.Sprintf("no toc: %d topics in Content", len(entries)))
		}
		if b.Subfolder != "" {
			node.Add("subfolder: " + string(b.Subfolder))
		}
	}
	return t.render(), nil
}
