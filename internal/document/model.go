package document

// Kind discriminates the four entity collections.
type Kind string

const (
	KindArray     Kind = "array"
	KindStructure Kind = "structure"
	KindShape     Kind = "shape"
	KindText      Kind = "text"
)

// Valid reports whether k names one of the entity collections.
func (k Kind) Valid() bool {
	switch k {
	case KindArray, KindStructure, KindShape, KindText:
		return true
	}
	return false
}

// Transform places an entity in world space. X/Y is the offset; SX/SY is
// the persistent display multiplier used by arrays and structures. Shapes
// and texts always carry SX = SY = 1.
type Transform struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
}

// Unit returns a transform at (x, y) with neutral scale.
func Unit(x, y float64) Transform {
	return Transform{X: x, Y: y, SX: 1, SY: 1}
}

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// CellSize overrides the display size of one array cell.
type CellSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ArrayEntity struct {
	ID         string           `json:"id"`
	Size       int              `json:"size"`
	Values     []string         `json:"values"`
	Highlights map[int]string   `json:"highlights"`
	CellSizes  map[int]CellSize `json:"cellSizes"`
	Pointers   map[string]int   `json:"pointers"`
	Transform  Transform        `json:"transform"`
}

// NewArray returns an array of the given size with empty values and no
// highlights. Size is not validated here.
func NewArray(id string, size int) ArrayEntity {
	return ArrayEntity{
		ID:         id,
		Size:       size,
		Values:     make([]string, size),
		Highlights: map[int]string{},
		CellSizes:  map[int]CellSize{},
		Pointers:   map[string]int{},
		Transform:  Unit(0, 0),
	}
}

// InRange reports whether index addresses a cell of the array.
func (a ArrayEntity) InRange(index int) bool {
	return index >= 0 && index < a.Size
}

type StructureType string

const (
	StructureTree       StructureType = "tree"
	StructureGraph      StructureType = "graph"
	StructureLinkedList StructureType = "linkedList"
)

type ListKind string

const (
	ListSingly ListKind = "singly"
	ListDoubly ListKind = "doubly"
)

// ListField names one of the cells of a linked-list node.
type ListField string

const (
	FieldData ListField = "data"
	FieldNext ListField = "next"
	FieldPrev ListField = "prev"
)

type ListNode struct {
	Data string `json:"data"`
	Next string `json:"next"`
	Prev string `json:"prev,omitempty"`
}

type StructureEntity struct {
	ID        string        `json:"id"`
	Type      StructureType `json:"type"`
	ListKind  ListKind      `json:"listKind,omitempty"`
	Size      int           `json:"size"`
	Values    []string      `json:"values,omitempty"`
	Nodes     []ListNode    `json:"nodes,omitempty"`
	Transform Transform     `json:"transform"`
}

// NewStructure returns a structure with empty node values. For linked
// lists the nodes start as {data: "", next: "null"} so the chain reads
// naturally before the user fills it in.
func NewStructure(id string, typ StructureType, size int, kind ListKind) StructureEntity {
	s := StructureEntity{
		ID:        id,
		Type:      typ,
		Size:      size,
		Transform: Unit(0, 0),
	}
	if typ == StructureLinkedList {
		s.ListKind = kind
		s.Nodes = make([]ListNode, size)
		for i := range s.Nodes {
			s.Nodes[i].Next = "null"
			if kind == ListDoubly {
				s.Nodes[i].Prev = "null"
			}
		}
		return s
	}
	s.Values = make([]string, size)
	return s
}

// InRange reports whether index addresses a node of the structure.
func (s StructureEntity) InRange(index int) bool {
	return index >= 0 && index < s.Size
}

type TextAnnotation struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	FontSize   float64   `json:"fontSize"`
	Color      string    `json:"color"`
	FontFamily string    `json:"fontFamily"`
	Effect     string    `json:"effect,omitempty"`
	Transform  Transform `json:"transform"`
}

// State is the complete tracked editing state. It is one value so the
// history can snapshot every collection together.
type State struct {
	Arrays     []ArrayEntity     `json:"arrays"`
	Structures []StructureEntity `json:"structures"`
	Shapes     []ShapeEntity     `json:"shapes"`
	Texts      []TextAnnotation  `json:"texts"`
}

// Empty returns a state with every collection empty (not nil), so empty
// states encode identically however they were reached.
func Empty() State {
	return State{
		Arrays:     []ArrayEntity{},
		Structures: []StructureEntity{},
		Shapes:     []ShapeEntity{},
		Texts:      []TextAnnotation{},
	}
}

// Count returns the total number of entities.
func (s State) Count() int {
	return len(s.Arrays) + len(s.Structures) + len(s.Shapes) + len(s.Texts)
}

func (s State) FindArray(id string) (int, bool) {
	for i := range s.Arrays {
		if s.Arrays[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s State) FindStructure(id string) (int, bool) {
	for i := range s.Structures {
		if s.Structures[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s State) FindShape(id string) (int, bool) {
	for i := range s.Shapes {
		if s.Shapes[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s State) FindText(id string) (int, bool) {
	for i := range s.Texts {
		if s.Texts[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether an entity of the given kind and id exists.
func (s State) Has(kind Kind, id string) bool {
	var ok bool
	switch kind {
	case KindArray:
		_, ok = s.FindArray(id)
	case KindStructure:
		_, ok = s.FindStructure(id)
	case KindShape:
		_, ok = s.FindShape(id)
	case KindText:
		_, ok = s.FindText(id)
	}
	return ok
}
