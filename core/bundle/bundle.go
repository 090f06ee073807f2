// Package bundle locates the base folders of an extracted Flare output.
//
// A base folder holds a Content directory and usually Data/Tocs. Standard
// bundles have a single base folder, often named Help. Merged bundles have
// one base folder per guide below Guides/html/<subfolder>.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// ErrNoBaseFolder is returned when no directory below the root holds a
// Content folder.
var ErrNoBaseFolder = errors.New("bundle: no base folder containing Content")

// Shape describes how base folders are arranged below the bundle root.
type Shape string

const (
	ShapeHelp   Shape = "help"
	ShapeGuides Shape = "guides"
	ShapeFlat   Shape = "flat"
)

// Base is one folder holding Content.
type Base struct {
	// Dir is the absolute path of the folder.
	Dir string
	// Rel is Dir relative to the bundle root, slash separated.
	Rel string
	// Name is the folder name, or "<parent>/Help" for Help folders.
	Name string
	// Subfolder is the published guide subfolder for merged bundles.
	Subfolder subfolder.Subfolder
	HasTOC    bool
}

// Layout is the result of Detect.
type Layout struct {
	Root  string
	Shape Shape
	Bases []Base
}

// Subfolders returns the distinct guide subfolders in base order.
func (l Layout) Subfolders() []subfolder.Subfolder {
	var out []subfolder.Subfolder
	seen := map[subfolder.Subfolder]bool{}
	for _, b := range l.Bases {
		if b.Subfolder == "" || seen[b.Subfolder] {
			continue
		}
		seen[b.Subfolder] = true
		out = append(out, b.Subfolder)
	}
	return out
}

// Detect walks root and returns its base folders in path order. Folders
// with Data/Tocs are preferred: when any exist, the others are dropped.
func Detect(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving %s: %w", root, err)
	}

	var all []Base
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == "Content" && p != abs {
			// Content trees never nest another base folder.
			return fs.SkipDir
		}
		if !isDir(filepath.Join(p, "Content")) {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		all = append(all, newBase(p, filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return Layout{}, fmt.Errorf("scanning %s: %w", abs, err)
	}
	if len(all) == 0 {
		return Layout{}, fmt.Errorf("%s: %w", abs, ErrNoBaseFolder)
	}

	var preferred []Base
	for _, b := range all {
		if b.HasTOC {
			preferred = append(preferred, b)
		}
	}
	if len(preferred) > 0 {
		all = preferred
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Rel < all[j].Rel })

	return Layout{Root: abs, Shape: shapeOf(all), Bases: all}, nil
}

func newBase(dir, rel string) Base {
	name := filepath.Base(dir)
	if name == "Help" {
		name = filepath.Base(filepath.Dir(dir)) + "/Help"
	}
	return Base{
		Dir:       dir,
		Rel:       rel,
		Name:      name,
		Subfolder: guideSubfolder(rel),
		HasTOC:    isDir(filepath.Join(dir, "Data", "Tocs")),
	}
}

// guideSubfolder returns the segment after Guides/html in rel.
func guideSubfolder(rel string) subfolder.Subfolder {
	segs := strings.Split(rel, "/")
	for i := 0; i+2 < len(segs); i++ {
		if strings.EqualFold(segs[i], "Guides") && strings.EqualFold(segs[i+1], "html") {
			return subfolder.Subfolder(segs[i+2])
		}
	}
	return ""
}

func shapeOf(bases []Base) Shape {
	for _, b := range bases {
		if b.Subfolder != "" {
			return ShapeGuides
		}
	}
	for _, b := range bases {
		if strings.HasSuffix(b.Name, "/Help") {
			return ShapeHelp
		}
	}
	return ShapeFlat
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
