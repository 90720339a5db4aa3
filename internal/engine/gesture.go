package engine

import (
	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/selection"
)

type dragMode int

const (
	dragEntity dragMode = iota
	dragPan
	dragHandle
	dragPointer
)

// dragSession is one pointer drag. Moves only update the preview; the
// store sees a single command when the drag ends.
type dragSession struct {
	mode   dragMode
	target selection.Ref

	// world pointer at drag start, and the pixel pointer of the last move
	startX, startY float64
	lastPX, lastPY float64

	origin document.Transform
	dx, dy float64

	handle int
	bounds layout.Rect

	pointerName string
}

// BeginDrag starts a drag at a container pixel. What it drags depends on
// what is under the pointer: a resize handle, a pointer label, an entity,
// or, on empty canvas, the view itself.
func (e *Engine) BeginDrag(px, py float64) {
	e.commitOpenEdit()
	e.cancelGestures()

	wx, wy := e.view.PixelToWorld(px, py)
	d := &dragSession{startX: wx, startY: wy, lastPX: px, lastPY: py}

	hit, ok := e.HitTest(px, py)
	switch {
	case !ok:
		d.mode = dragPan
	case hit.Part == PartHandle:
		bounds, found := e.Scene().EntityBounds(hit.ID)
		if !found || bounds.W == 0 || bounds.H == 0 {
			return
		}
		d.mode = dragHandle
		d.target = selection.Ref{Kind: hit.Kind, ID: hit.ID}
		d.handle = hit.SubIndex
		d.bounds = bounds
		e.resize.Begin(d.target)
	case hit.Part == PartPointer:
		d.mode = dragPointer
		d.target = selection.Ref{Kind: hit.Kind, ID: hit.ID}
		d.pointerName = hit.Name
	default:
		t, found := e.transformOf(hit.Kind, hit.ID)
		if !found {
			return
		}
		d.mode = dragEntity
		d.target = selection.Ref{Kind: hit.Kind, ID: hit.ID}
		d.origin = t
		e.sel.Select(d.target)
	}
	e.drag = d
	e.dirty = true
}

// DragTo updates the drag preview.
func (e *Engine) DragTo(px, py float64) {
	d := e.drag
	if d == nil {
		return
	}
	wx, wy := e.view.PixelToWorld(px, py)
	switch d.mode {
	case dragPan:
		e.PanBy(px-d.lastPX, py-d.lastPY)
	case dragEntity:
		d.dx, d.dy = wx-d.startX, wy-d.startY
		e.dirty = true
	case dragHandle:
		sx, sy := handleScale(d.handle, d.bounds, wx-d.startX, wy-d.startY)
		e.resize.Update(sx, sy)
		e.dirty = true
	}
	d.lastPX, d.lastPY = px, py
}

// EndDrag finishes the drag, committing at most one store command.
func (e *Engine) EndDrag(px, py float64) {
	d := e.drag
	if d == nil {
		return
	}
	e.DragTo(px, py)
	e.drag = nil
	e.dirty = true

	switch d.mode {
	case dragEntity:
		if d.dx == 0 && d.dy == 0 {
			return
		}
		e.Move(d.target.Kind, d.target.ID, d.origin.X+d.dx, d.origin.Y+d.dy)
		e.info = "Moved " + string(d.target.Kind)
	case dragHandle:
		e.EndResize()
	case dragPointer:
		wx, wy := e.view.PixelToWorld(px, py)
		if idx, ok := e.cellAt(d.target.ID, wx, wy); ok {
			e.MovePointer(d.target.ID, d.pointerName, idx)
		}
	}
}

// BeginResize starts a handle gesture on the selected entity, for hosts
// that compute scale factors themselves.
func (e *Engine) BeginResize() bool {
	ref, ok := e.sel.Selected()
	if !ok || !selection.HasHandles(ref.Kind) {
		return false
	}
	e.commitOpenEdit()
	e.resize.Begin(ref)
	e.dirty = true
	return true
}

func (e *Engine) ResizeTo(sx, sy float64) {
	e.resize.Update(sx, sy)
	e.dirty = true
}

// EndResize commits the gesture. Neutral gestures leave the store and the
// history untouched.
func (e *Engine) EndResize() {
	target, sx, sy, ok := e.resize.End()
	e.dirty = true
	if !ok {
		return
	}
	e.Resize(target.Kind, target.ID, sx, sy)
	e.info = "Resized " + string(target.Kind)
}

func (e *Engine) cancelGestures() {
	e.drag = nil
	e.resize.Cancel()
	e.dirty = true
}

// preview returns the in-progress gesture to draw, if any.
func (e *Engine) preview() *preview {
	if d := e.drag; d != nil && d.mode == dragEntity {
		return &preview{target: d.target, dx: d.dx, dy: d.dy, sx: 1, sy: 1}
	}
	if e.resize.Active() {
		sx, sy := e.resize.Preview()
		return &preview{target: e.resize.Target(), sx: sx, sy: sy, limits: e.store.Limits()}
	}
	return nil
}

// handleScale converts a handle drag by (dx, dy) world units into scale
// factors relative to the bounds at gesture start. Handles are numbered
// clockwise from the top-left corner.
func handleScale(handle int, b layout.Rect, dx, dy float64) (float64, float64) {
	w, h := b.W, b.H
	switch handle {
	case 2, 3, 4:
		w += dx
	case 0, 6, 7:
		w -= dx
	}
	switch handle {
	case 4, 5, 6:
		h += dy
	case 0, 1, 2:
		h -= dy
	}
	return max(w, 0) / b.W, max(h, 0) / b.H
}

func (e *Engine) transformOf(kind document.Kind, id string) (document.Transform, bool) {
	st := e.store.State()
	switch kind {
	case document.KindArray:
		if i, ok := st.FindArray(id); ok {
			return st.Arrays[i].Transform, true
		}
	case document.KindStructure:
		if i, ok := st.FindStructure(id); ok {
			return st.Structures[i].Transform, true
		}
	case document.KindShape:
		if i, ok := st.FindShape(id); ok {
			return st.Shapes[i].Transform, true
		}
	case document.KindText:
		if i, ok := st.FindText(id); ok {
			return st.Texts[i].Transform, true
		}
	}
	return document.Transform{}, false
}

// cellAt returns the index of the array cell under a world point.
func (e *Engine) cellAt(arrayID string, x, y float64) (int, bool) {
	g, ok := e.Scene().NodesById[arrayID]
	if !ok {
		return 0, false
	}
	for _, c := range g.Children {
		if c.Part == PartCell && c.Bounds.Contains(x, y) {
			return c.SubIndex, true
		}
	}
	return 0, false
}
