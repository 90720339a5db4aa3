package layout

import (
	"math"

	"github.com/dsaviz/dsaviz/internal/document"
)

// TreeNode returns the center of node i of an implicit complete binary
// tree rooted at index 0. Levels are centered on x = 0.
func TreeNode(i int) Point {
	level := treeLevel(i)
	levelStart := 1<<level - 1
	inLevel := i - levelStart
	nodesInLevel := 1 << level
	return Point{
		X: (float64(inLevel) - float64(nodesInLevel-1)/2) * NodeGap,
		Y: float64(level) * LevelGap,
	}
}

// treeLevel is floor(log2(i+1)), computed without floating point.
func treeLevel(i int) int {
	level := 0
	for n := i + 1; n > 1; n >>= 1 {
		level++
	}
	return level
}

// TreeParent returns the parent of node i; the root has none.
func TreeParent(i int) (int, bool) {
	if i <= 0 {
		return 0, false
	}
	return (i - 1) / 2, true
}

// TreeEdges joins every non-root node to its parent.
func TreeEdges(size int) []Edge {
	var edges []Edge
	for i := 1; i < size; i++ {
		p, _ := TreeParent(i)
		edges = append(edges, Edge{From: p, To: i})
	}
	return edges
}

func GraphRadius(size int) float64 {
	return GraphBaseRadius + GraphRadiusStep*float64(size)
}

// GraphNode places node i of size evenly on a ring centered at the origin.
func GraphNode(i, size int) Point {
	if size <= 0 {
		return Point{}
	}
	r := GraphRadius(size)
	angle := 2 * math.Pi * float64(i) / float64(size)
	return Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// GraphEdges closes the ring: i -> (i+1) mod size. A two node ring has
// both directions.
func GraphEdges(size int) []Edge {
	if size <= 1 {
		return nil
	}
	edges := make([]Edge, size)
	for i := range edges {
		edges[i] = Edge{From: i, To: (i + 1) % size}
	}
	return edges
}

// ListCell is one field box of a linked-list node.
type ListCell struct {
	Field document.ListField `json:"field"`
	Rect  Rect               `json:"rect"`
}

// ListNode is the compound box of one linked-list node.
type ListNode struct {
	Index  int        `json:"index"`
	Bounds Rect       `json:"bounds"`
	Cells  []ListCell `json:"cells"`
}

// ListFields returns the field order of a node box.
func ListFields(kind document.ListKind) []document.ListField {
	if kind == document.ListDoubly {
		return []document.ListField{document.FieldPrev, document.FieldData, document.FieldNext}
	}
	return []document.ListField{document.FieldData, document.FieldNext}
}

// ListNodeWidth is the width of one node box.
func ListNodeWidth(kind document.ListKind) float64 {
	return float64(len(ListFields(kind))) * ListCellWidth
}

// ListNodes lays linked-list nodes out left to right.
func ListNodes(kind document.ListKind, size int) []ListNode {
	fields := ListFields(kind)
	width := ListNodeWidth(kind)
	nodes := make([]ListNode, size)
	for i := range nodes {
		x := float64(i) * (width + ListNodeGap)
		n := ListNode{
			Index:  i,
			Bounds: Rect{X: x, W: width, H: ListCellHeight},
			Cells:  make([]ListCell, len(fields)),
		}
		for j, f := range fields {
			n.Cells[j] = ListCell{
				Field: f,
				Rect:  Rect{X: x + float64(j)*ListCellWidth, W: ListCellWidth, H: ListCellHeight},
			}
		}
		nodes[i] = n
	}
	return nodes
}

// Connector is a directional arrow between consecutive list nodes.
type Connector struct {
	From     Point `json:"from"`
	To       Point `json:"to"`
	Backward bool  `json:"backward"`
}

// ListConnectors returns one forward arrow per consecutive pair, plus a
// backward arrow for doubly linked lists. Forward arrows run along the
// upper third of the boxes and backward arrows along the lower third so
// the two stay apart.
func ListConnectors(kind document.ListKind, size int) []Connector {
	nodes := ListNodes(kind, size)
	var out []Connector
	for i := 0; i+1 < len(nodes); i++ {
		a, b := nodes[i].Bounds, nodes[i+1].Bounds
		if kind != document.ListDoubly {
			out = append(out, Connector{
				From: Point{X: a.X + a.W, Y: a.H / 2},
				To:   Point{X: b.X, Y: b.H / 2},
			})
			continue
		}
		out = append(out,
			Connector{
				From: Point{X: a.X + a.W, Y: a.H / 3},
				To:   Point{X: b.X, Y: b.H / 3},
			},
			Connector{
				From:     Point{X: b.X, Y: 2 * b.H / 3},
				To:       Point{X: a.X + a.W, Y: 2 * a.H / 3},
				Backward: true,
			},
		)
	}
	return out
}
