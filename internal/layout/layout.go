// Package layout maps entities to local-space geometry. Every function is
// pure: the result depends only on the arguments, so callers recompute
// layout every frame instead of caching it.
package layout

import (
	"math"

	"github.com/dsaviz/dsaviz/internal/document"
)

const (
	CellSpacing = 8.0
	IndexHeight = 28.0
	ArrayStartX = 90.0
	ArrayStartY = 120.0
	ArrayGap    = 70.0
	LabelOffset = 40.0
	PointerRise = 40.0

	NodeRadius = 22.0
	NodeGap    = 60.0
	LevelGap   = 70.0

	GraphBaseRadius = 60.0
	GraphRadiusStep = 8.0

	ListCellWidth  = 50.0
	ListCellHeight = 40.0
	ListNodeGap    = 40.0

	StructureStartX = 420.0
	StructureStartY = 160.0
	ShapeStartX     = 120.0
	ShapeStartY     = 420.0
	TextStartX      = 100.0
	TextStartY      = 500.0
	CascadeStep     = 20.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// IsZero reports whether r has neither width nor height. A line has
// zero width or height but is not zero.
func (r Rect) IsZero() bool {
	return r.W == 0 && r.H == 0
}

// Union returns the smallest rect containing both. Zero rects are treated
// as absent.
func (r Rect) Union(o Rect) Rect {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Edge joins two logical node indices.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// StructureHome is the default world position of the n-th structure
// created in a session. Each new structure is nudged so stacked ones stay
// distinguishable.
func StructureHome(n int) Point {
	return cascade(StructureStartX, StructureStartY, n)
}

// ShapeHome is the default position for shapes added without a drop
// point.
func ShapeHome(n int) Point {
	return cascade(ShapeStartX, ShapeStartY, n)
}

// TextHome is the default position for text annotations.
func TextHome(n int) Point {
	return cascade(TextStartX, TextStartY, n)
}

func cascade(x, y float64, n int) Point {
	return Point{X: x + CascadeStep*float64(n), Y: y + CascadeStep*float64(n)}
}

// StructureNodes returns the local center of every node of a tree or
// graph structure. Linked lists are laid out by ListNodes.
func StructureNodes(s document.StructureEntity) []Point {
	pts := make([]Point, s.Size)
	for i := range pts {
		switch s.Type {
		case document.StructureTree:
			pts[i] = TreeNode(i)
		case document.StructureGraph:
			pts[i] = GraphNode(i, s.Size)
		}
	}
	return pts
}

// StructureEdges returns the node-to-node edges of a tree or graph.
func StructureEdges(s document.StructureEntity) []Edge {
	switch s.Type {
	case document.StructureTree:
		return TreeEdges(s.Size)
	case document.StructureGraph:
		return GraphEdges(s.Size)
	}
	return nil
}
