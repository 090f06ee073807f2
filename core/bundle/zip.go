package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/logfields"
)

// ErrUnsafePath is returned for archive entries that would land outside
// the extraction directory.
var ErrUnsafePath = errors.New("bundle: unsafe path in archive")

// Extract unpacks the ZIP archive at src into dest and returns dest.
// Entries escaping dest are skipped and logged.
func Extract(src, dest string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r, err := zip.OpenReader(src)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && r != nil) {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}

	files := 0
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			logger.Warn("skipping archive entry", logfields.Path(f.Name), logfields.Error(err))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return "", err
		}
		files++
	}
	logger.Debug("archive extracted", logfields.Path(dest), logfields.Count(files))
	return dest, nil
}

// entryPath maps an archive entry name to a path below dest.
func entryPath(dest, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	clean := path.Clean("/" + name)
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
		}
	}
	if clean == "/" {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	return filepath.Join(dest, filepath.FromSlash(clean[1:])), nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return out.Close()
}
