// Package toc reads the table of contents Flare publishes under
// Data/Tocs and returns the topics of a base folder in reading order.
package toc

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/titanous/json5"
	"golang.org/x/text/unicode/norm"

	"github.com/gaurav-prasanna/flaremd/core/logfields"
)

// Dir is the TOC directory relative to a base folder.
const Dir = "Data/Tocs"

// ErrNoObject is returned when a TOC script carries no object literal.
var ErrNoObject = errors.New("toc: no object literal in script")

// ErrNoTOC is returned by ReadTOC when a base folder has no usable TOC.
var ErrNoTOC = errors.New("toc: no table of contents")

// Entry is one topic in TOC order.
type Entry struct {
	// Path is slash separated and relative to the base folder,
	// e.g. Content/Intro.htm.
	Path  string
	Title string
	// Depth is 1 for top-level entries.
	Depth int
}

// Set is a hierarchy script and the chunk scripts it refers to.
type Set struct {
	Name      string
	Hierarchy string
	Chunks    []string
}

type chunkInfo struct {
	I []int    `json:"i"`
	T []string `json:"t"`
}

type node struct {
	I int    `json:"i"`
	N []node `json:"n"`
}

type hierarchy struct {
	Tree struct {
		N []node `json:"n"`
	} `json:"tree"`
}

type topicRef struct {
	path  string
	title string
}

// FindSets lists the TOC sets under base/Data/Tocs, sorted by name. Sets
// missing either their hierarchy or their chunks are left out.
func FindSets(base string) ([]Set, error) {
	dir := filepath.Join(base, filepath.FromSlash(Dir))
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	byName := map[string]*Set{}
	get := func(name string) *Set {
		s, ok := byName[name]
		if !ok {
			s = &Set{Name: name}
			byName[name] = s
		}
		return s
	}
	for _, de := range des {
		n := de.Name()
		if de.IsDir() || !strings.HasSuffix(n, ".js") {
			continue
		}
		full := filepath.Join(dir, n)
		if i := strings.Index(n, "_Chunk"); i >= 0 {
			s := get(n[:i])
			s.Chunks = append(s.Chunks, full)
			continue
		}
		get(strings.TrimSuffix(n, ".js")).Hierarchy = full
	}

	var sets []Set
	for _, s := range byName {
		if s.Hierarchy == "" || len(s.Chunks) == 0 {
			continue
		}
		sort.Strings(s.Chunks)
		sets = append(sets, *s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

// ReadTOC returns the entries of every TOC set of base. Entries whose
// topic file does not exist are skipped together with their children.
func ReadTOC(base string, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sets, err := FindSets(base)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrNoTOC
	}

	var entries []Entry
	for _, s := range sets {
		topics := map[int]topicRef{}
		for _, c := range s.Chunks {
			if err := readChunk(c, topics); err != nil {
				return nil, err
			}
		}
		var h hierarchy
		if err := readScript(s.Hierarchy, &h); err != nil {
			return nil, err
		}
		entries = traverse(base, h.Tree.N, topics, 1, entries, logger)
	}
	return entries, nil
}

// Read returns the TOC entries of base, or a sorted walk of its Content
// folder when there is no TOC.
func Read(base string, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := ReadTOC(base, logger)
	if errors.Is(err, ErrNoTOC) {
		logger.Warn("no TOC, walking Content", logfields.Path(base))
		return Walk(base)
	}
	return entries, err
}

// Walk lists every .htm and .html file below base/Content in lexical
// order at depth 1.
func Walk(base string) ([]Entry, error) {
	root := filepath.Join(base, "Content")
	var entries []Entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".htm" && ext != ".html" {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		name := filepath.Base(p)
		entries = append(entries, Entry{
			Path:  filepath.ToSlash(rel),
			Title: strings.TrimSuffix(name, filepath.Ext(name)),
			Depth: 1,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return entries, nil
}

func readChunk(file string, topics map[int]topicRef) error {
	var chunk map[string]chunkInfo
	if err := readScript(file, &chunk); err != nil {
		return err
	}
	for p, info := range chunk {
		for k, id := range info.I {
			title := ""
			if k < len(info.T) {
				title = norm.NFC.String(info.T[k])
			}
			topics[id] = topicRef{path: p, title: title}
		}
	}
	return nil
}

func readScript(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	obj, err := objectLiteral(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	if err := json5.Unmarshal(obj, v); err != nil {
		return fmt.Errorf("decoding %s: %w", file, err)
	}
	return nil
}

// objectLiteral returns the object passed to define(...) in a Flare TOC
// script.
func objectLiteral(script []byte) ([]byte, error) {
	start := bytes.IndexByte(script, '{')
	end := bytes.LastIndexByte(script, '}')
	if start < 0 || end < start {
		return nil, ErrNoObject
	}
	return script[start : end+1], nil
}

func traverse(base string, nodes []node, topics map[int]topicRef, depth int, out []Entry, logger *slog.Logger) []Entry {
	for _, n := range nodes {
		ref, ok := topics[n.I]
		if !ok {
			logger.Warn("TOC node without topic", logfields.Path(base), slog.Int("id", n.I))
			continue
		}
		p := path.Clean(strings.TrimPrefix(ref.path, "/"))
		if fi, err := os.Stat(filepath.Join(base, filepath.FromSlash(p))); err != nil || fi.IsDir() {
			logger.Warn("TOC topic missing, skipping", logfields.Path(p))
			continue
		}
		out = append(out, Entry{Path: p, Title: ref.title, Depth: depth})
		out = traverse(base, n.N, topics, depth+1, out, logger)
	}
	return out
}
