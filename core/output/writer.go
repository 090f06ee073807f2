// Package output handles file naming and writing for flaremd outputs.
// A documentation unit is written as <site_dir><ext> in the output
// directory, with its pictures in <site_dir>_assets next to it.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// AssetDir returns the asset folder name used for siteDir.
func AssetDir(siteDir string) string {
	return sanitize(siteDir) + "_assets"
}

// WriteDocument writes data as <siteDir><ext> and returns the path.
func (w *Writer) WriteDocument(siteDir string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, sanitize(siteDir)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// CopyAssets copies the files at srcs into the asset folder of siteDir,
// keyed by base name. The first file with a given name wins. It returns
// the number of files copied; missing sources are reported in missing.
func (w *Writer) CopyAssets(siteDir string, srcs []string) (copied int, missing []string, err error) {
	if len(srcs) == 0 {
		return 0, nil, nil
	}
	dir := filepath.Join(w.OutputDir, AssetDir(siteDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("creating asset directory: %w", err)
	}

	for _, src := range srcs {
		dest := filepath.Join(dir, filepath.Base(src))
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, src)
				continue
			}
			return copied, missing, err
		}
		copied++
	}
	return copied, missing, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// sanitize replaces characters that are unsafe in file names with
// underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "output"
	}
	return b.String()
}
