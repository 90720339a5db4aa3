package engine

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/store"
	"github.com/dsaviz/dsaviz/internal/typeid"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// Array 0 lays out at world (90, 120) with 60x45 cells 8px apart, so with
// the default viewport cell 1 covers pixels x 158..218, y 120..165.
const cell1X, cell1Y = 188, 142

func newArrayEngine(t *testing.T, size int) (*Engine, string) {
	t.Helper()
	e := NewEngine()
	id, err := e.CreateArray(size)
	if err != nil {
		t.Fatalf("CreateArray(%d): %v", size, err)
	}
	return e, id
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(10, -4).Multiply(Scale(2, 3)).Multiply(Rotate(0.3))
	x, y := m.TransformPoint(7, 11)
	ix, iy := m.Invert().TransformPoint(x, y)
	if !approxEqual(ix, 7) || !approxEqual(iy, 11) {
		t.Errorf("Invert round trip = (%v, %v), want (7, 11)", ix, iy)
	}
	if !m.Multiply(m.Invert()).IsIdentity() {
		t.Error("m * m^-1 is not identity")
	}
}

func TestZoomKeepsCursorFixed(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
		zoom   float64
		want   float64
	}{
		{"zoom in", 300, 200, 2, 2},
		{"zoom out", 40, 500, 0.7, 0.7},
		{"clamped high", 123, 45, 10, 5},
		{"clamped low", 10, 10, 0.1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			e.PanBy(17, -9)
			wx, wy := e.Viewport().PixelToWorld(tt.px, tt.py)

			e.ZoomAt(tt.px, tt.py, tt.zoom)

			if got := e.Viewport().Zoom; !approxEqual(got, tt.want) {
				t.Errorf("zoom = %v, want %v", got, tt.want)
			}
			px, py := e.Viewport().WorldToPixel(wx, wy)
			if math.Abs(px-tt.px) > 1e-6 || math.Abs(py-tt.py) > 1e-6 {
				t.Errorf("world point moved to (%v, %v), want (%v, %v)", px, py, tt.px, tt.py)
			}
		})
	}
}

func TestWheelZoomsByStep(t *testing.T) {
	e := NewEngine()
	e.HandleEvent(Wheel{X: 100, Y: 100, DeltaY: -120})
	if got := e.Viewport().Zoom; !approxEqual(got, 1.1) {
		t.Errorf("zoom after wheel in = %v, want 1.1", got)
	}
	e.HandleEvent(Wheel{X: 100, Y: 100, DeltaY: 120})
	if got := e.Viewport().Zoom; !approxEqual(got, 1) {
		t.Errorf("zoom after wheel out = %v, want 1", got)
	}
}

func TestHitTestCell(t *testing.T) {
	e, id := newArrayEngine(t, 5)

	hit, ok := e.HitTest(cell1X, cell1Y)
	if !ok {
		t.Fatal("expected a hit on cell 1")
	}
	if hit.Kind != document.KindArray || hit.ID != id || hit.Part != PartCell || hit.SubIndex != 1 {
		t.Errorf("hit = %+v, want array %s cell 1", hit, id)
	}

	if _, ok := e.HitTest(5, 5); ok {
		t.Error("expected no hit on empty canvas")
	}

	// After panning, the same cell sits 100px further right.
	e.PanBy(100, 0)
	hit, ok = e.HitTest(cell1X+100, cell1Y)
	if !ok || hit.SubIndex != 1 {
		t.Errorf("hit after pan = %+v, %v", hit, ok)
	}
}

func TestUndoRedo(t *testing.T) {
	e, id := newArrayEngine(t, 3)
	e.SetCellValue(id, 0, "7")

	if !e.CanUndo() || e.CanRedo() {
		t.Fatalf("CanUndo/CanRedo = %v/%v, want true/false", e.CanUndo(), e.CanRedo())
	}

	e.Undo()
	if got := e.State().Arrays[0].Values[0]; got != "" {
		t.Errorf("after undo value = %q, want empty", got)
	}
	e.Undo()
	if got := len(e.State().Arrays); got != 0 {
		t.Errorf("after second undo arrays = %d, want 0", got)
	}
	if e.Undo() {
		t.Error("undo past the first snapshot should do nothing")
	}

	e.Redo()
	e.Redo()
	if got := e.State().Arrays[0].Values[0]; got != "7" {
		t.Errorf("after redo value = %q, want 7", got)
	}
	if e.Info() != "Redo" {
		t.Errorf("info = %q, want Redo", e.Info())
	}
}

func TestUndoKeys(t *testing.T) {
	tests := []struct {
		name      string
		key       Key
		wantCount int
	}{
		{"ctrl z undoes", Key{Key: "z", Ctrl: true}, 0},
		{"meta z undoes", Key{Key: "Z", Meta: true}, 0},
		{"plain z ignored", Key{Key: "z"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newArrayEngine(t, 2)
			e.HandleEvent(tt.key)
			if got := len(e.State().Arrays); got != tt.wantCount {
				t.Errorf("arrays = %d, want %d", got, tt.wantCount)
			}
		})
	}

	t.Run("redo keys", func(t *testing.T) {
		for _, k := range []Key{{Key: "z", Ctrl: true, Shift: true}, {Key: "y", Ctrl: true}} {
			e, _ := newArrayEngine(t, 2)
			e.Undo()
			out, _ := e.HandleEvent(k)
			if !out.Handled || len(e.State().Arrays) != 1 {
				t.Errorf("%+v: handled=%v arrays=%d", k, out.Handled, len(e.State().Arrays))
			}
		}
	})
}

func TestRejectionSetsInfo(t *testing.T) {
	e := NewEngine()
	_, err := e.CreateArray(21)
	if !errors.Is(err, store.ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	if e.Info() != "Please enter a size between 1 and 20" {
		t.Errorf("info = %q", e.Info())
	}
	if n, _ := e.HistoryDepth(); n != 1 {
		t.Errorf("history len = %d, want 1", n)
	}
}

func TestDragCommitsOnce(t *testing.T) {
	e, id := newArrayEngine(t, 5)
	before, _ := e.HistoryDepth()
	start, _ := e.Scene().EntityBounds(id)

	e.HandleEvent(DragStart{X: cell1X, Y: cell1Y})
	for i := 1; i <= 10; i++ {
		e.HandleEvent(DragMove{X: cell1X + float64(5*i), Y: cell1Y + float64(2*i)})
	}
	if got := e.State().Arrays[0].Transform; got.X != 0 || got.Y != 0 {
		t.Fatalf("store moved during drag: %+v", got)
	}
	if r, ok := e.Scene().EntityBounds(id); !ok || !approxEqual(r.X, start.X+50) || !approxEqual(r.Y, start.Y+20) {
		t.Errorf("preview bounds = %+v, want %+v shifted by (50, 20)", r, start)
	}
	e.HandleEvent(DragEnd{X: cell1X + 50, Y: cell1Y + 20})

	after, _ := e.HistoryDepth()
	if after != before+1 {
		t.Errorf("history grew by %d, want 1", after-before)
	}
	if got := e.State().Arrays[0].Transform; got.X != 50 || got.Y != 20 {
		t.Errorf("transform = (%v, %v), want (50, 20)", got.X, got.Y)
	}
	if ref, ok := e.Selected(); !ok || ref.ID != id {
		t.Errorf("selected = %+v, want %s", ref, id)
	}
}

func TestDragWithoutMovementDoesNotRecord(t *testing.T) {
	e, _ := newArrayEngine(t, 5)
	before, _ := e.HistoryDepth()
	e.HandleEvent(DragStart{X: cell1X, Y: cell1Y})
	e.HandleEvent(DragEnd{X: cell1X, Y: cell1Y})
	if after, _ := e.HistoryDepth(); after != before {
		t.Errorf("history grew by %d, want 0", after-before)
	}
}

func TestDragEmptyCanvasPans(t *testing.T) {
	e := NewEngine()
	e.HandleEvent(DragStart{X: 10, Y: 10})
	e.HandleEvent(DragMove{X: 30, Y: 15})
	e.HandleEvent(DragEnd{X: 40, Y: 20})
	if v := e.Viewport(); v.PanX != 30 || v.PanY != 10 {
		t.Errorf("pan = (%v, %v), want (30, 10)", v.PanX, v.PanY)
	}
	if n, _ := e.HistoryDepth(); n != 1 {
		t.Errorf("panning recorded history: %d", n)
	}
}

func TestNeutralResizeLeavesNoSnapshot(t *testing.T) {
	e, id := newArrayEngine(t, 4)
	e.Select(document.KindArray, id)
	before, _ := e.HistoryDepth()

	if !e.BeginResize() {
		t.Fatal("BeginResize refused a selected array")
	}
	e.ResizeTo(1.4, 1.2)
	e.ResizeTo(1, 1)
	e.EndResize()

	if after, _ := e.HistoryDepth(); after != before {
		t.Errorf("history grew by %d, want 0", after-before)
	}

	e.BeginResize()
	e.ResizeTo(2, 1)
	e.EndResize()
	if got := e.State().Arrays[0].Transform.SX; got != 2 {
		t.Errorf("SX = %v, want 2", got)
	}
}

func TestResizePreviewMatchesCommit(t *testing.T) {
	tests := []struct {
		shape  string
		sx, sy float64
	}{
		{"circle", 2, 1},
		{"circle", 0.5, 1.5},
		{"arcArrowUp", 1, 1.8},
		{"rectangle", 2, 0.5},
		{"arrowRight", 1.5, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %vx%v", tt.shape, tt.sx, tt.sy), func(t *testing.T) {
			e := NewEngine()
			id, err := e.AddShape(store.ShapeSpec{Type: tt.shape})
			if err != nil {
				t.Fatal(err)
			}
			e.Select(document.KindShape, id)
			if !e.BeginResize() {
				t.Fatal("BeginResize refused a selected shape")
			}
			e.ResizeTo(tt.sx, tt.sy)
			during, ok := e.SelectionBounds()
			if !ok {
				t.Fatal("no selection bounds during resize")
			}
			e.EndResize()
			after, _ := e.SelectionBounds()
			if !approxEqual(during.W, after.W) || !approxEqual(during.H, after.H) {
				t.Errorf("preview %+v, committed %+v", during, after)
			}
		})
	}
}

func TestResizeRequiresHandles(t *testing.T) {
	e := NewEngine()
	id, err := e.AddText(store.AddText{Text: "note"})
	if err != nil {
		t.Fatal(err)
	}
	e.Select(document.KindText, id)
	if e.BeginResize() {
		t.Error("text should not start a resize gesture")
	}
}

func TestEditorFollowsViewport(t *testing.T) {
	e, id := newArrayEngine(t, 5)
	e.SetCellValue(id, 1, "4")

	out, _ := e.HandleEvent(DoubleClick{X: cell1X, Y: cell1Y})
	if !out.Handled {
		t.Fatal("double click on a cell should open the editor")
	}
	ed, ok := e.Editing()
	if !ok || ed.Value != "4" {
		t.Fatalf("editing = %+v, %v", ed, ok)
	}
	e.SetEditValue("42")

	r, _ := e.EditorRect()
	want := layout.Rect{X: 158, Y: 120, W: 60, H: 45}
	if r != want {
		t.Errorf("editor rect = %+v, want %+v", r, want)
	}

	e.ZoomAt(0, 0, 2)
	e.PanBy(10, 0)
	r, _ = e.EditorRect()
	want = layout.Rect{X: 326, Y: 240, W: 120, H: 90}
	if r != want {
		t.Errorf("editor rect after zoom = %+v, want %+v", r, want)
	}
	if ed, _ := e.Editing(); ed.Value != "42" {
		t.Errorf("buffer = %q, want 42", ed.Value)
	}

	e.HandleEvent(Key{Key: "Enter"})
	if got := e.State().Arrays[0].Values[1]; got != "42" {
		t.Errorf("committed value = %q, want 42", got)
	}
}

func TestEscapeCancelsEdit(t *testing.T) {
	e, _ := newArrayEngine(t, 5)
	before, _ := e.HistoryDepth()

	e.HandleEvent(DoubleClick{X: cell1X, Y: cell1Y})
	e.SetEditValue("9")
	out, _ := e.HandleEvent(Key{Key: "Escape"})

	if !out.Handled {
		t.Error("Escape with an open editor should be handled")
	}
	if _, ok := e.Editing(); ok {
		t.Error("editor still open")
	}
	if got := e.State().Arrays[0].Values[1]; got != "" {
		t.Errorf("value = %q, want empty", got)
	}
	if after, _ := e.HistoryDepth(); after != before {
		t.Errorf("history changed on cancel")
	}
}

func TestNewEditCommitsPrevious(t *testing.T) {
	e, _ := newArrayEngine(t, 5)
	e.HandleEvent(DoubleClick{X: cell1X, Y: cell1Y})
	e.SetEditValue("a")
	e.HandleEvent(DoubleClick{X: cell1X + 68, Y: cell1Y})
	if got := e.State().Arrays[0].Values[1]; got != "a" {
		t.Errorf("first edit = %q, want a", got)
	}
	if ed, _ := e.Editing(); ed.Target.SubIndex != 2 {
		t.Errorf("editing cell %d, want 2", ed.Target.SubIndex)
	}
}

func TestDeleteKey(t *testing.T) {
	e, id := newArrayEngine(t, 3)
	e.HandleEvent(Click{X: cell1X, Y: cell1Y})
	if ref, ok := e.Selected(); !ok || ref.ID != id {
		t.Fatalf("click did not select the array")
	}
	e.HandleEvent(Key{Key: "Delete"})
	if n := len(e.State().Arrays); n != 0 {
		t.Errorf("arrays = %d, want 0", n)
	}
	if _, ok := e.Selected(); ok {
		t.Error("selection survived delete")
	}
}

func TestContextMenuPromptsForHighlight(t *testing.T) {
	e, id := newArrayEngine(t, 3)
	out, _ := e.HandleEvent(ContextMenu{X: cell1X, Y: cell1Y})
	if out.Prompt == nil || out.Prompt.ArrayID != id || out.Prompt.Index != 1 {
		t.Fatalf("prompt = %+v", out.Prompt)
	}
	if len(out.Prompt.Choices) != len(document.HighlightColors) {
		t.Errorf("choices = %v, want the highlight palette", out.Prompt.Choices)
	}
	e.SetHighlight(id, out.Prompt.Index, "#FF0000")
	if got := e.State().Arrays[0].Highlights[1]; got != "#FF0000" {
		t.Errorf("highlight = %q", got)
	}
}

func TestDropShapeUsesWorldCoordinates(t *testing.T) {
	e := NewEngine()
	e.ZoomAt(0, 0, 2)
	e.HandleEvent(Drop{Shape: "circle", X: 200, Y: 100})
	st := e.State()
	if len(st.Shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(st.Shapes))
	}
	if tr := st.Shapes[0].Transform; tr.X != 100 || tr.Y != 50 {
		t.Errorf("shape at (%v, %v), want (100, 50)", tr.X, tr.Y)
	}
	if ref, ok := e.Selected(); !ok || ref.Kind != document.KindShape {
		t.Error("dropped shape not selected")
	}
}

func TestSetShapeColorNeedsSelection(t *testing.T) {
	e := NewEngine()
	e.SetShapeColor("#00FF00")
	if e.Info() != "Select a shape first" {
		t.Errorf("info = %q", e.Info())
	}
}

func TestDo(t *testing.T) {
	e := NewEngine()
	res, err := e.Do(Action{Op: "createArray", Size: 3, Values: []string{"3", "1", "2"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := e.State().Arrays[0].Values; fmt.Sprint(got) != "[3 1 2]" {
		t.Errorf("values = %v", got)
	}
	if !res.CanUndo || res.ID == "" {
		t.Errorf("result = %+v", res)
	}

	// createArray with values is one undo step.
	if n, _ := e.HistoryDepth(); n != 2 {
		t.Errorf("history len = %d, want 2", n)
	}

	steps := []Action{
		{Op: "setPointer", ID: res.ID, Name: "i", Index: 2},
		{Op: "setHighlight", ID: res.ID, Index: 0, Color: "#FFEB3B"},
		{Op: "addStructure", Type: "tree", Size: 3, Values: []string{"8", "4", "9"}},
		{Op: "move", Kind: "array", ID: res.ID, X: 10, Y: 20},
		{Op: "cellWidth", Dir: 1},
	}
	for _, a := range steps {
		if _, err := e.Do(a); err != nil {
			t.Fatalf("%s: %v", a.Op, err)
		}
	}
	st := e.State()
	if st.Arrays[0].Pointers["i"] != 2 || st.Arrays[0].Highlights[0] != "#FFEB3B" {
		t.Errorf("array = %+v", st.Arrays[0])
	}
	if got := st.Structures[0].Values; fmt.Sprint(got) != "[8 4 9]" {
		t.Errorf("tree values = %v", got)
	}
	if e.Display().CellWidth != 70 {
		t.Errorf("cell width = %v, want 70", e.Display().CellWidth)
	}

	if _, err := e.Do(Action{Op: "explode"}); err == nil {
		t.Error("unknown op should fail")
	}
	if _, err := e.Do(Action{Op: "move", Kind: "planet"}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := e.Do(Action{Op: "setPointer", ID: res.ID, Name: "j", Index: 9}); !errors.Is(err, store.ErrRejected) {
		t.Errorf("out of range pointer err = %v", err)
	}
}

func TestDoChecksIDs(t *testing.T) {
	e, arrID := newArrayEngine(t, 3)
	tests := []struct {
		name    string
		a       Action
		wantErr bool
	}{
		{"array id", Action{Op: "setCellValue", ID: arrID, Index: 0, Value: "7"}, false},
		{"garbage", Action{Op: "setCellValue", ID: "cell-zero", Value: "7"}, true},
		{"array id as text", Action{Op: "setText", ID: arrID, Text: "x"}, true},
		{"kind mismatch", Action{Op: "move", Kind: "shape", ID: arrID}, true},
		{"kind match", Action{Op: "move", Kind: "array", ID: arrID, X: 5}, false},
		{"unknown array", Action{Op: "setHighlight", ID: typeid.NewArrayID(), Color: "#FF0000"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Do(tt.a)
			if (err != nil) != tt.wantErr {
				t.Errorf("Do(%+v) err = %v, wantErr %v", tt.a, err, tt.wantErr)
			}
		})
	}
	if got := e.State().Arrays[0].Values[0]; got != "7" {
		t.Errorf("value = %q, want 7", got)
	}
}

func TestDrawCommands(t *testing.T) {
	e := NewEngine(WithState(document.NewSampleState()))
	cmds := e.DrawCommands()
	if len(cmds) == 0 {
		t.Fatal("sample scene produced no draw commands")
	}
	for i, c := range cmds {
		if c.Op != "path" && c.Op != "text" {
			t.Errorf("command %d has op %q", i, c.Op)
		}
	}
	if e.CanUndo() {
		t.Error("initial state should not be undoable")
	}
	if out := e.Render(); out == "" || out[0] != '[' {
		t.Errorf("Render = %.20q", out)
	}
}

func TestEventPayload(t *testing.T) {
	tests := []struct {
		in   EventPayload
		want Event
	}{
		{EventPayload{Type: "click", X: 1, Y: 2}, Click{X: 1, Y: 2}},
		{EventPayload{Type: "wheel", X: 3, Y: 4, DeltaY: -1}, Wheel{X: 3, Y: 4, DeltaY: -1}},
		{EventPayload{Type: "drop", Shape: "rect", X: 5, Y: 6}, Drop{Shape: "rect", X: 5, Y: 6}},
		{EventPayload{Type: "key", Key: "z", Ctrl: true}, Key{Key: "z", Ctrl: true}},
		{EventPayload{Type: "pan", DX: 7, DY: 8}, Pan{DX: 7, DY: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.in.Type, func(t *testing.T) {
			got, err := tt.in.Event()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Event() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := (EventPayload{Type: "teleport"}).Event(); err == nil {
		t.Error("unknown event type accepted")
	}
}
