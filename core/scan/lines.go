package scan

import "sort"

// LineIndex maps byte offsets to 1-based line numbers.
type LineIndex struct {
	starts []int
}

// NewLineIndex indexes the line starts of src.
func NewLineIndex(src []byte) LineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return LineIndex{starts: starts}
}

// Line returns the line containing pos.
func (li LineIndex) Line(pos int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > pos })
}
