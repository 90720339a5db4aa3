package engine

import (
	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
)

// Part names what a scene node draws within its entity.
type Part string

const (
	PartGroup     Part = "group"
	PartCell      Part = "cell"
	PartValue     Part = "value"
	PartIndex     Part = "index"
	PartLabel     Part = "label"
	PartPointer   Part = "pointer"
	PartNode      Part = "node"
	PartEdge      Part = "edge"
	PartListCell  Part = "listCell"
	PartConnector Part = "connector"
	PartShape     Part = "shape"
	PartText      Part = "text"
	PartOutline   Part = "outline"
	PartHandle    Part = "handle"
)

// SceneGraph is the render-ready view of one state. It is rebuilt whenever
// the state, display settings, selection or an in-progress gesture
// changes.
type SceneGraph struct {
	Root      *SceneNode
	NodesById map[string]*SceneNode
}

// SceneNode is a resolved node ready for rendering.
type SceneNode struct {
	ID       string
	Kind     document.Kind
	Part     Part
	SubIndex int
	Field    document.ListField
	Name     string

	WorldTransform Matrix2D

	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        []float64
	Opacity     float64

	// Text nodes draw Text anchored at (TextX, TextY) in local space.
	Text       string
	TextX      float64
	TextY      float64
	FontSize   float64
	FontFamily string
	Align      string

	// Hittable nodes take part in hit testing.
	Hittable bool
	Children []*SceneNode

	// Axis-aligned bounding box in world space.
	Bounds layout.Rect
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []any

// Op returns the segment letter, or "" for a malformed command.
func (p PathCommand) Op() string {
	if len(p) == 0 {
		return ""
	}
	op, _ := p[0].(string)
	return op
}

// Arg returns the i-th numeric operand (1-based, after the letter).
func (p PathCommand) Arg(i int) float64 {
	if i <= 0 || i >= len(p) {
		return 0
	}
	return toFloat64(p[i])
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		Root:      &SceneNode{Part: PartGroup, SubIndex: -1},
		NodesById: make(map[string]*SceneNode),
	}
}

// Hit identifies what lies under a point.
type Hit struct {
	Kind     document.Kind      `json:"kind"`
	ID       string             `json:"id"`
	Part     Part               `json:"part"`
	SubIndex int                `json:"subIndex"`
	Field    document.ListField `json:"field,omitempty"`
	Name     string             `json:"name,omitempty"`
}

func (n *SceneNode) hit() Hit {
	return Hit{Kind: n.Kind, ID: n.ID, Part: n.Part, SubIndex: n.SubIndex, Field: n.Field, Name: n.Name}
}

// HitTest returns the topmost hittable node containing the world point.
func HitTest(sg *SceneGraph, x, y float64) (Hit, bool) {
	if sg == nil || sg.Root == nil {
		return Hit{}, false
	}
	n := hitTestNode(sg.Root, x, y)
	if n == nil {
		return Hit{}, false
	}
	return n.hit(), true
}

// hitTestNode tests children first (they're on top in painter's order).
func hitTestNode(node *SceneNode, x, y float64) *SceneNode {
	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], x, y); hit != nil {
			return hit
		}
	}
	if node.Hittable && node.Bounds.Contains(x, y) {
		return node
	}
	return nil
}

// Find returns the node drawing the given part of an entity.
func (sg *SceneGraph) Find(id string, part Part, sub int, field document.ListField) (*SceneNode, bool) {
	group, ok := sg.NodesById[id]
	if !ok {
		return nil, false
	}
	for _, c := range group.Children {
		if c.Part == part && c.SubIndex == sub && c.Field == field {
			return c, true
		}
	}
	return nil, false
}

// EntityBounds returns the world bounds of an entity.
func (sg *SceneGraph) EntityBounds(id string) (layout.Rect, bool) {
	group, ok := sg.NodesById[id]
	if !ok {
		return layout.Rect{}, false
	}
	return group.Bounds, true
}
