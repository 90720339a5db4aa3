package document

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Encode returns the canonical encoding of the state. Map keys are emitted
// in sorted order, so two structurally equal states encode identically.
func (s State) Encode() ([]byte, error) {
	return json.Marshal(s.normalized())
}

// Fingerprint is an xxhash64 of the canonical encoding.
func (s State) Fingerprint() (uint64, []byte, error) {
	data, err := s.Encode()
	if err != nil {
		return 0, nil, err
	}
	return xxhash.Sum64(data), data, nil
}

// Equal reports whether two states are structurally equal.
func (s State) Equal(other State) bool {
	a, errA := s.Encode()
	b, errB := other.Encode()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// normalized replaces nil collections and maps with empty ones so that a
// nil map and an empty map compare equal.
func (s State) normalized() State {
	out := State{
		Arrays:     s.Arrays,
		Structures: s.Structures,
		Shapes:     s.Shapes,
		Texts:      s.Texts,
	}
	if out.Arrays == nil {
		out.Arrays = []ArrayEntity{}
	}
	if out.Structures == nil {
		out.Structures = []StructureEntity{}
	}
	if out.Shapes == nil {
		out.Shapes = []ShapeEntity{}
	}
	if out.Texts == nil {
		out.Texts = []TextAnnotation{}
	}
	copied := false
	for i, a := range out.Arrays {
		if a.Highlights == nil || a.CellSizes == nil || a.Pointers == nil {
			if !copied {
				out.Arrays = slices.Clone(out.Arrays)
				copied = true
			}
			if a.Highlights == nil {
				out.Arrays[i].Highlights = map[int]string{}
			}
			if a.CellSizes == nil {
				out.Arrays[i].CellSizes = map[int]CellSize{}
			}
			if a.Pointers == nil {
				out.Arrays[i].Pointers = map[string]int{}
			}
		}
	}
	return out
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Arrays:     make([]ArrayEntity, len(s.Arrays)),
		Structures: make([]StructureEntity, len(s.Structures)),
		Shapes:     make([]ShapeEntity, len(s.Shapes)),
		Texts:      slices.Clone(s.Texts),
	}
	if out.Texts == nil {
		out.Texts = []TextAnnotation{}
	}
	for i, a := range s.Arrays {
		out.Arrays[i] = a.Clone()
	}
	for i, st := range s.Structures {
		out.Structures[i] = st.Clone()
	}
	for i, sh := range s.Shapes {
		out.Shapes[i] = sh.Clone()
	}
	return out
}

func (a ArrayEntity) Clone() ArrayEntity {
	a.Values = slices.Clone(a.Values)
	a.Highlights = cloneMap(a.Highlights)
	a.CellSizes = cloneMap(a.CellSizes)
	a.Pointers = cloneMap(a.Pointers)
	return a
}

func (s StructureEntity) Clone() StructureEntity {
	s.Values = slices.Clone(s.Values)
	s.Nodes = slices.Clone(s.Nodes)
	return s
}

func (s ShapeEntity) Clone() ShapeEntity {
	s.Geometry = CloneGeometry(s.Geometry)
	return s
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}
