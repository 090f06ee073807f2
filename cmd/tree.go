package cmd

import (
	"path"

	"github.com/disiqueira/gotree/v3"
)

// layoutTree renders base folders as a directory tree.
type layoutTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func newLayoutTree(rootLabel string) layoutTree {
	return layoutTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

// insert adds the slash separated folder rel and returns its node.
func (t layoutTree) insert(rel string) gotree.Tree {
	if rel == "." || rel == "" {
		return t.tree
	}
	d := t.dirs[rel]
	if d == nil {
		d = t.insert(path.Dir(rel)).Add(path.Base(rel))
		t.dirs[rel] = d
	}
	return d
}

func (t layoutTree) render() string {
	return t.tree.Print()
}
