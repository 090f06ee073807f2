package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/fetch"
	"github.com/gaurav-prasanna/flaremd/crawl"
)

var (
	flagCatalogCacheDir string
	flagCatalogTTL      time.Duration
	flagCatalogRefresh  bool
	flagCatalogJSON     bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <index-url>",
	Short: "List the documentation units published on an index page",
	Long: `Catalog fetches a documentation index page and lists every ZIP bundle it
links to, with the unit name and URL family each bundle maps to. Results
are cached in SQLite below the cache directory.

Examples:
  flaremd catalog https://www.microfocus.com/documentation/idol/knowledge-discovery-25.4/
  flaremd catalog https://host/docs/ --refresh --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&flagCatalogCacheDir, "cache_dir", "", "Cache directory (default: user cache dir)")
	catalogCmd.Flags().DurationVar(&flagCatalogTTL, "ttl", 24*time.Hour, "How long a cached listing stays valid (0 keeps it forever)")
	catalogCmd.Flags().BoolVar(&flagCatalogRefresh, "refresh", false, "Ignore the cache and fetch the index again")
	catalogCmd.Flags().BoolVar(&flagCatalogJSON, "json", false, "Print the listing as JSON")
}

// listedUnit is one line of the catalog listing.
type listedUnit struct {
	crawl.Item
	Unit    string `json:"unit"`
	SiteDir string `json:"site_dir"`
	Family  string `json:"family"`
	Project string `json:"project,omitempty"`
	Version string `json:"version,omitempty"`
}

func runCatalog(cmd *cobra.Command, args []string) error {
	indexURL := args[0]
	ctx := cmd.Context()
	log := slog.Default()

	cat, err := loadCatalog(flagBaseURL)
	if err != nil {
		return err
	}

	dir, err := catalogCacheDir()
	if err != nil {
		return err
	}
	cache, err := crawl.OpenCache(filepath.Join(dir, "catalog.db"))
	if err != nil {
		return err
	}
	defer cache.Close()

	fetcher := fetch.New(fetch.WithLogger(log))
	items, cached, err := crawl.DiscoverCached(ctx, cache, indexURL, flagCatalogTTL, flagCatalogRefresh,
		func(ctx context.Context, u string) ([]crawl.Item, error) {
			return crawl.DiscoverUnits(ctx, u, fetcher)
		})
	if err != nil {
		return fmt.Errorf("discovering units: %w", err)
	}

	units := describeUnits(cat, items)
	if flagCatalogJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(units)
	}

	out := newPrinter(cmd.OutOrStdout())
	source := "fetched"
	if cached {
		source = "cached"
	}
	out.ok("Found %d units on %s (%s)", len(units), indexURL, source)
	category := ""
	for _, u := range units {
		if u.Category != category {
			category = u.Category
			out.line("\n%s", category)
		}
		release := u.Project
		if u.Version != "" {
			release += " " + u.Version
		}
		out.line("  %-24s %-8s %-28s %s", u.Unit, u.Family, release, u.ZipURL)
	}
	return nil
}

func describeUnits(cat *catalog.Catalog, items []crawl.Item) []listedUnit {
	units := make([]listedUnit, 0, len(items))
	for _, it := range items {
		lu := listedUnit{Item: it}
		base, site, err := crawl.DeriveBaseAndSite(it.ZipURL)
		if err != nil {
			site = it.Name
		} else {
			lu.Project, lu.Version = crawl.ParseProjectVersion(path.Base(base))
		}
		lu.SiteDir = site
		lu.Unit = unitForSiteDir(cat, site)
		lu.Family = cat.Unit(lu.Unit).Family.String()
		units = append(units, lu)
	}
	return units
}

func catalogCacheDir() (string, error) {
	dir := flagCatalogCacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "flaremd")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	return dir, nil
}
