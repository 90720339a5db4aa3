package document

import (
	"github.com/dsaviz/dsaviz/internal/typeid"
)

// NewSampleState builds a small binary-search lesson: a sorted array with
// low/mid/high labels, a complete tree of the same values, a doubly linked
// list, an arrow and a caption.
func NewSampleState() State {
	values := []string{"2", "5", "8", "12", "16", "23", "38"}

	arr := NewArray(typeid.NewArrayID(), len(values))
	copy(arr.Values, values)
	arr.Highlights[3] = "#FFD700"
	arr.Pointers["low"] = 0
	arr.Pointers["mid"] = 3
	arr.Pointers["high"] = 6

	tree := NewStructure(typeid.NewStructureID(), StructureTree, len(values), "")
	// Level order of the balanced BST over the same keys.
	copy(tree.Values, []string{"12", "5", "23", "2", "8", "16", "38"})
	tree.Transform = Unit(420, 160)

	list := NewStructure(typeid.NewStructureID(), StructureLinkedList, 3, ListDoubly)
	list.Transform = Unit(120, 520)
	for i, v := range []string{"2", "5", "8"} {
		list.Nodes[i].Data = v
	}

	arrow := ShapeEntity{
		ID:        typeid.NewShapeID(),
		Type:      ShapeArrowDown,
		Transform: Unit(300, 60),
		Style:     Style{Stroke: DefaultStroke, StrokeWidth: 2},
		Geometry:  arrowGeometry(0, 0, 0, 40),
	}

	caption := TextAnnotation{
		ID:         typeid.NewTextID(),
		Text:       "Binary search: target = 16",
		FontSize:   18,
		Color:      "#000000",
		FontFamily: "Arial",
		Transform:  Unit(100, 30),
	}

	return State{
		Arrays:     []ArrayEntity{arr},
		Structures: []StructureEntity{tree, list},
		Shapes:     []ShapeEntity{arrow},
		Texts:      []TextAnnotation{caption},
	}
}
