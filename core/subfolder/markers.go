package subfolder

import (
	"fmt"
	"sort"
)

// Marker records that content from Path, inside subfolder Subfolder, starts
// at byte offset Pos of a concatenated document.
type Marker struct {
	Pos       int
	Path      string
	Subfolder Subfolder
}

// Markers is the append-only origin marker sequence of one document.
// Positions never decrease, which lets Nearest binary-search it.
type Markers struct {
	list []Marker
}

// NewMarkers builds a sequence from ms, validating their order.
func NewMarkers(ms ...Marker) (*Markers, error) {
	m := &Markers{}
	for _, mk := range ms {
		if err := m.Append(mk); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Append adds a marker. It rejects positions lower than the last one.
func (m *Markers) Append(mk Marker) error {
	if mk.Pos < 0 {
		return fmt.Errorf("marker %q: negative position %d", mk.Path, mk.Pos)
	}
	if n := len(m.list); n > 0 && mk.Pos < m.list[n-1].Pos {
		return fmt.Errorf("marker %q at %d precedes previous marker at %d", mk.Path, mk.Pos, m.list[n-1].Pos)
	}
	m.list = append(m.list, mk)
	return nil
}

// Nearest returns the last marker whose position is <= pos.
func (m *Markers) Nearest(pos int) (Marker, bool) {
	if m == nil {
		return Marker{}, false
	}
	i := sort.Search(len(m.list), func(i int) bool { return m.list[i].Pos > pos })
	if i == 0 {
		return Marker{}, false
	}
	return m.list[i-1], true
}

// Len returns the number of markers.
func (m *Markers) Len() int {
	if m == nil {
		return 0
	}
	return len(m.list)
}

// Clone returns an independent copy of m. The copy keeps m's order, so it
// needs no validation.
func (m *Markers) Clone() *Markers {
	if m == nil {
		return &Markers{}
	}
	return &Markers{list: append([]Marker(nil), m.list...)}
}

// All returns a copy of the markers in document order.
func (m *Markers) All() []Marker {
	if m == nil {
		return nil
	}
	return append([]Marker(nil), m.list...)
}
