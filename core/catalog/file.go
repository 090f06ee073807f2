package catalog

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape of a catalog.
type File struct {
	Version         string          `yaml:"version"`
	SiteBase        string          `yaml:"site_base"`
	ContentRoot     string          `yaml:"content_root"`
	Families        FamiliesSection `yaml:"families"`
	Rules           RulesSection    `yaml:"rules"`
	Subfolders      []SubfolderSpec `yaml:"subfolders"`
	Aliases         []AliasSpec     `yaml:"aliases"`
	DefaultFallback string          `yaml:"default_fallback"`
	Units           []UnitSpec      `yaml:"units"`
}

// FamiliesSection holds the classifier marker tables.
type FamiliesSection struct {
	MergedMarker string   `yaml:"merged_marker"`
	SDKMarkers   []string `yaml:"sdk_markers"`
	SDKSuffixes  []string `yaml:"sdk_suffixes"`
}

// RulesSection overrides the directory names used by the path normalizer.
// Empty fields keep their defaults.
type RulesSection struct {
	SharedAdminDir string `yaml:"shared_admin_dir"`
	ActionsDir     string `yaml:"actions_dir"`
	EncodingsDir   string `yaml:"encodings_dir"`
	EncodingsFile  string `yaml:"encodings_file"`
}

// SubfolderSpec maps content directories to one Merged subfolder.
type SubfolderSpec struct {
	Name string   `yaml:"name"`
	Dirs []string `yaml:"dirs"`
}

// AliasSpec is a legacy prefix rewrite for the Merged family.
type AliasSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// UnitSpec describes one documentation unit.
type UnitSpec struct {
	Name     string `yaml:"name"`
	SiteDir  string `yaml:"site_dir"`
	Fallback string `yaml:"fallback"`
	Family   string `yaml:"family"`
}

// Load reads, expands and validates a catalog file. Variables from .env or
// .env.local in the working directory are loaded first when present.
func Load(path string) (*Catalog, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	cat, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes YAML after expanding ${VAR} references. Unknown keys are
// rejected so typos surface instead of silently falling back to defaults.
func Parse(data []byte) (File, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decoding yaml: %w", err)
	}
	return f, nil
}

func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("could not load env file", slog.String("path", name), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("loaded environment variables", slog.String("path", name))
		return
	}
}
