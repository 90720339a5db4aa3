package layout

import "github.com/dsaviz/dsaviz/internal/document"

// Cell is the local rectangle of one array cell.
type Cell struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

func (c Cell) Rect() Rect {
	return Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}
}

// ArrayHome is the world position of the array with the given creation
// ordinal, before the user's drag offset is added.
func ArrayHome(ordinal int, cellHeight float64) Point {
	return Point{
		X: ArrayStartX,
		Y: ArrayStartY + float64(ordinal)*(cellHeight+IndexHeight+ArrayGap),
	}
}

// Cells lays the array out left to right. A cell with a size override
// uses it; the others use the display settings. Without overrides cell i
// sits at i*(cellWidth+CellSpacing).
func Cells(a document.ArrayEntity, d document.DisplaySettings) []Cell {
	cells := make([]Cell, a.Size)
	x := 0.0
	for i := range cells {
		w, h := d.CellWidth, d.CellHeight
		if o, ok := a.CellSizes[i]; ok {
			w, h = o.Width, o.Height
		}
		cells[i] = Cell{Index: i, X: x, W: w, H: h}
		x += w + CellSpacing
	}
	return cells
}

// IndexLabel is the center of the index number under a cell.
func IndexLabel(c Cell) Point {
	return Point{X: c.X + c.W/2, Y: c.Y + c.H + IndexHeight/2}
}

// PointerAnchor is where a teaching label above the cell is drawn. The
// pointer's arrow runs from the anchor down to the top of the cell.
func PointerAnchor(c Cell) Point {
	return Point{X: c.X + c.W/2, Y: c.Y - PointerRise}
}

// ArrayLabel is the position of the "A1", "A2", ... tag left of the first
// cell.
func ArrayLabel(d document.DisplaySettings) Point {
	return Point{X: -LabelOffset, Y: d.CellHeight / 2}
}
