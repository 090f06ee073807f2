package scan

import (
	"errors"
	"fmt"
	"sort"
)

// Edit replaces src[Start:End] with Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// ApplyEdits applies non-overlapping edits, all expressed as offsets into
// the original src, and returns a new slice. src is not modified.
func ApplyEdits(src []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	size := len(src)
	for i, e := range sorted {
		switch {
		case e.Start < 0 || e.End < e.Start:
			return nil, fmt.Errorf("edit %d: invalid range [%d,%d)", i, e.Start, e.End)
		case e.End > len(src):
			return nil, fmt.Errorf("edit %d: range [%d,%d) out of bounds", i, e.Start, e.End)
		case i > 0 && e.Start < sorted[i-1].End:
			return nil, fmt.Errorf("edit %d at %d: %w", i, e.Start, ErrOverlappingEdits)
		}
		size += len(e.Replacement) - (e.End - e.Start)
	}

	out := make([]byte, 0, size)
	last := 0
	for _, e := range sorted {
		out = append(out, src[last:e.Start]...)
		out = append(out, e.Replacement...)
		last = e.End
	}
	out = append(out, src[last:]...)
	return out, nil
}
