package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dsaviz/dsaviz/internal/document"
)

func newTestStore() *Store {
	n := 0
	return New(document.DefaultLimits(), WithIDGenerator(func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}))
}

func TestCreateArrayBounds(t *testing.T) {
	tests := []struct {
		size   int
		reject bool
	}{
		{0, true},
		{-3, true},
		{1, false},
		{5, false},
		{20, false},
		{21, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.size), func(t *testing.T) {
			s := newTestStore()
			res, err := s.Apply(CreateArray{Size: tt.size})
			if tt.reject {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("err = %v, want rejection", err)
				}
				if UserMessage(err) != "Please enter a size between 1 and 20" {
					t.Errorf("message = %q", UserMessage(err))
				}
				if len(s.State().Arrays) != 0 {
					t.Fatal("rejected command mutated state")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			arrays := s.State().Arrays
			if len(arrays) != 1 || arrays[0].ID != res.ID {
				t.Fatalf("arrays = %+v", arrays)
			}
			a := arrays[0]
			if len(a.Values) != tt.size || len(a.Highlights) != 0 {
				t.Errorf("array = %+v", a)
			}
			if a.Transform != document.Unit(0, 0) {
				t.Errorf("transform = %+v", a.Transform)
			}
		})
	}
}

func TestSetCellValue(t *testing.T) {
	s := newTestStore()
	id, err := s.CreateArray(5)
	if err != nil {
		t.Fatal(err)
	}

	if res, err := s.SetCellValue(id, 2, "7"); err != nil || !res.Changed {
		t.Fatalf("SetCellValue: res = %+v, err = %v", res, err)
	}
	if got := s.State().Arrays[0].Values[2]; got != "7" {
		t.Fatalf("value = %q", got)
	}

	before := s.State()
	for _, idx := range []int{-1, 5, 10} {
		res, err := s.Apply(SetCellValue{ArrayID: id, Index: idx, Value: "x"})
		if err != nil || res.Changed {
			t.Errorf("index %d: res = %+v, err = %v", idx, res, err)
		}
	}
	if res, _ := s.Apply(SetCellValue{ArrayID: "arr_missing", Index: 0, Value: "x"}); res.Changed {
		t.Error("unknown array changed")
	}
	if !before.Equal(s.State()) {
		t.Fatal("out-of-range writes changed state")
	}
}

func TestStateIsCopyOnWrite(t *testing.T) {
	s := newTestStore()
	id, _ := s.CreateArray(3)
	before := s.State()

	s.SetCellValue(id, 0, "a")
	s.SetHighlight(id, 1, "#FF6B6B")
	s.Apply(SetPointer{ArrayID: id, Name: "i", Index: 2})

	a := before.Arrays[0]
	if a.Values[0] != "" || len(a.Highlights) != 0 || len(a.Pointers) != 0 {
		t.Fatalf("earlier state was mutated: %+v", a)
	}
}

func TestHighlights(t *testing.T) {
	s := newTestStore()
	id, _ := s.CreateArray(4)

	s.SetHighlight(id, 1, "#FFD700")
	s.SetHighlight(id, 1, "#90EE90")
	if res, _ := s.SetHighlight(id, 9, "#90EE90"); res.Changed {
		t.Error("out-of-range highlight reported a change")
	}
	hl := s.State().Arrays[0].Highlights
	if len(hl) != 1 || hl[1] != "#90EE90" {
		t.Fatalf("highlights = %v", hl)
	}

	s.SetHighlight(id, 3, "#FFD700")
	s.Apply(ClearHighlight{ArrayID: id, Index: 1})
	if hl := s.State().Arrays[0].Highlights; len(hl) != 1 {
		t.Fatalf("after clear one: %v", hl)
	}
	s.Apply(ClearHighlight{ArrayID: id, Index: -1})
	if hl := s.State().Arrays[0].Highlights; len(hl) != 0 {
		t.Fatalf("after clear all: %v", hl)
	}
}

func TestPointers(t *testing.T) {
	s := newTestStore()
	id, _ := s.CreateArray(3)

	tests := []struct {
		name   string
		cmd    SetPointer
		reject bool
	}{
		{"valid", SetPointer{ArrayID: id, Name: "low", Index: 0}, false},
		{"move", SetPointer{ArrayID: id, Name: "low", Index: 2}, false},
		{"out of range", SetPointer{ArrayID: id, Name: "high", Index: 3}, true},
		{"empty name", SetPointer{ArrayID: id, Name: "", Index: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Apply(tt.cmd)
			if got := errors.Is(err, ErrRejected); got != tt.reject {
				t.Fatalf("err = %v, reject = %v", err, tt.reject)
			}
		})
	}

	p := s.State().Arrays[0].Pointers
	if len(p) != 1 || p["low"] != 2 {
		t.Fatalf("pointers = %v", p)
	}
	s.Apply(RemovePointer{ArrayID: id, Name: "low"})
	if len(s.State().Arrays[0].Pointers) != 0 {
		t.Fatal("pointer not removed")
	}
}

func TestAddStructure(t *testing.T) {
	tests := []struct {
		name   string
		cmd    AddStructure
		reject bool
	}{
		{"tree", AddStructure{Type: document.StructureTree, Size: 7}, false},
		{"graph", AddStructure{Type: document.StructureGraph, Size: 5}, false},
		{"singly by default", AddStructure{Type: document.StructureLinkedList, Size: 3}, false},
		{"doubly", AddStructure{Type: document.StructureLinkedList, Size: 3, ListKind: document.ListDoubly}, false},
		{"too big", AddStructure{Type: document.StructureTree, Size: 21}, true},
		{"zero", AddStructure{Type: document.StructureGraph, Size: 0}, true},
		{"unknown type", AddStructure{Type: "heap", Size: 3}, true},
		{"unknown list kind", AddStructure{Type: document.StructureLinkedList, Size: 3, ListKind: "circular"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.Apply(tt.cmd)
			if got := errors.Is(err, ErrRejected); got != tt.reject {
				t.Fatalf("err = %v, reject = %v", err, tt.reject)
			}
			if tt.reject {
				return
			}
			st := s.State().Structures[0]
			if st.Size != tt.cmd.Size || st.Transform.X != 420 || st.Transform.Y != 160 {
				t.Errorf("structure = %+v", st)
			}
		})
	}
}

func TestStructureCascade(t *testing.T) {
	s := newTestStore()
	for range 3 {
		s.Apply(AddStructure{Type: document.StructureTree, Size: 3})
	}
	st := s.State().Structures[2]
	if st.Transform.X != 460 || st.Transform.Y != 200 {
		t.Fatalf("third structure at %+v", st.Transform)
	}
}

func TestListNodes(t *testing.T) {
	s := newTestStore()
	singly, _ := s.Apply(AddStructure{Type: document.StructureLinkedList, Size: 2})
	doubly, _ := s.Apply(AddStructure{Type: document.StructureLinkedList, Size: 2, ListKind: document.ListDoubly})

	s.Apply(SetListNode{StructureID: singly.ID, Index: 0, Field: document.FieldData, Value: "4"})
	s.Apply(SetListNode{StructureID: singly.ID, Index: 0, Field: document.FieldNext, Value: "1"})
	if res, _ := s.Apply(SetListNode{StructureID: singly.ID, Index: 0, Field: document.FieldPrev, Value: "x"}); res.Changed {
		t.Error("prev on a singly list must be a no-op")
	}
	s.Apply(SetListNode{StructureID: doubly.ID, Index: 1, Field: document.FieldPrev, Value: "0"})

	st := s.State().Structures
	if n := st[0].Nodes[0]; n.Data != "4" || n.Next != "1" || n.Prev != "" {
		t.Errorf("singly node = %+v", n)
	}
	if n := st[1].Nodes[1]; n.Prev != "0" {
		t.Errorf("doubly node = %+v", n)
	}

	if res, _ := s.Apply(SetStructureValue{StructureID: singly.ID, Index: 0, Value: "x"}); res.Changed {
		t.Error("SetStructureValue on a list must be a no-op")
	}
}

func TestAddShape(t *testing.T) {
	s := newTestStore()

	if _, err := s.Apply(AddShape{Spec: ShapeSpec{Type: "hexagon"}}); !errors.Is(err, ErrRejected) {
		t.Fatalf("unknown shape: err = %v", err)
	}

	res, err := s.Apply(AddShape{Spec: ShapeSpec{Type: "rectangle", Width: 5, Height: 90}})
	if err != nil {
		t.Fatal(err)
	}
	sh := s.State().Shapes[0]
	if sh.ID != res.ID {
		t.Fatalf("id = %s, want %s", sh.ID, res.ID)
	}
	g := sh.Geometry.(document.RectGeometry)
	if g.Width != 20 || g.Height != 90 {
		t.Errorf("rect = %+v", g)
	}
	if sh.Transform.X != 120 || sh.Transform.Y != 420 {
		t.Errorf("default position = %+v", sh.Transform)
	}
	if sh.Style.Fill != document.DefaultFill || sh.Style.Stroke != document.DefaultStroke {
		t.Errorf("style = %+v", sh.Style)
	}

	s.Apply(AddShape{Spec: ShapeSpec{Type: "arrowRight", At: &Point{X: 300, Y: 250}}})
	arrow := s.State().Shapes[1]
	if arrow.Transform.X != 300 || arrow.Transform.Y != 250 {
		t.Errorf("drop position = %+v", arrow.Transform)
	}
	if arrow.Style.Fill != "" {
		t.Errorf("arrow got a fill: %+v", arrow.Style)
	}
}

func TestSetShapeColor(t *testing.T) {
	s := newTestStore()
	rect, _ := s.Apply(AddShape{Spec: ShapeSpec{Type: "rectangle", Fill: "#eeeeee"}})
	line, _ := s.Apply(AddShape{Spec: ShapeSpec{Type: "line"}})

	s.Apply(SetShapeColor{ShapeID: rect.ID, Color: "#FF0000"})
	s.Apply(SetShapeColor{ShapeID: line.ID, Color: "#00FF00"})

	shapes := s.State().Shapes
	if st := shapes[0].Style; st.Stroke != "#FF0000" || st.Fill != document.DefaultFill {
		t.Errorf("rect style = %+v", st)
	}
	if st := shapes[1].Style; st.Stroke != "#00FF00" || st.Fill != "" {
		t.Errorf("line style = %+v", st)
	}
}

func TestRejectsMalformedColors(t *testing.T) {
	s := newTestStore()
	arr, _ := s.CreateArray(3)
	rect, _ := s.Apply(AddShape{Spec: ShapeSpec{Type: "rectangle"}})
	before := s.State()

	tests := []struct {
		name string
		cmd  Command
	}{
		{"named highlight", SetHighlight{ArrayID: arr, Index: 0, Color: "red"}},
		{"rgb highlight", SetHighlight{ArrayID: arr, Index: 0, Color: "rgb(1,2,3)"}},
		{"empty shape color", SetShapeColor{ShapeID: rect.ID, Color: ""}},
		{"bad digits", SetShapeColor{ShapeID: rect.ID, Color: "#12345g"}},
		{"shape fill", AddShape{Spec: ShapeSpec{Type: "circle", Fill: "blue"}}},
		{"text color", AddText{Text: "x", FontSize: 12, Color: "black"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Apply(tt.cmd); !errors.Is(err, ErrRejected) {
				t.Errorf("err = %v, want rejection", err)
			}
		})
	}
	if !before.Equal(s.State()) {
		t.Error("rejected colors changed state")
	}

	if res, err := s.SetHighlight(arr, 0, "#abc"); err != nil || !res.Changed {
		t.Errorf("short hex: res = %+v, err = %v", res, err)
	}
}

func TestText(t *testing.T) {
	s := newTestStore()
	tests := []struct {
		name   string
		cmd    AddText
		reject bool
	}{
		{"ok", AddText{Text: "hello", FontSize: 16}, false},
		{"empty", AddText{Text: "", FontSize: 16}, true},
		{"tiny font", AddText{Text: "x", FontSize: 9}, true},
		{"huge font", AddText{Text: "x", FontSize: 49}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Apply(tt.cmd)
			if got := errors.Is(err, ErrRejected); got != tt.reject {
				t.Fatalf("err = %v, reject = %v", err, tt.reject)
			}
		})
	}

	txt := s.State().Texts[0]
	if txt.Transform.X != 100 || txt.Transform.Y != 500 {
		t.Errorf("position = %+v", txt.Transform)
	}
	s.Apply(SetText{TextID: txt.ID, Text: "edited"})
	if got := s.State().Texts[0].Text; got != "edited" {
		t.Errorf("text = %q", got)
	}
	if _, err := s.Apply(SetText{TextID: txt.ID}); !errors.Is(err, ErrRejected) {
		t.Errorf("empty edit: err = %v", err)
	}
}

func TestMoveAndResize(t *testing.T) {
	s := newTestStore()
	arr, _ := s.CreateArray(3)
	circle, _ := s.Apply(AddShape{Spec: ShapeSpec{Type: "circle"}})

	if res, _ := s.Move(document.KindArray, arr, 40, -10); !res.Changed {
		t.Error("move reported no change")
	}
	s.Resize(document.KindArray, arr, 1.5, 0.01)
	a := s.State().Arrays[0]
	if a.Transform.X != 40 || a.Transform.Y != -10 {
		t.Errorf("offset = %+v", a.Transform)
	}
	if a.Transform.SX != 1.5 || a.Transform.SY != 0.2 {
		t.Errorf("scale = %+v", a.Transform)
	}

	s.Resize(document.KindShape, circle.ID, 2, 1)
	sh := s.State().Shapes[0]
	if r := sh.Geometry.(document.CircleGeometry).Radius; r != 72 {
		t.Errorf("radius = %v, want 72", r)
	}
	if sh.Transform.SX != 1 || sh.Transform.SY != 1 {
		t.Errorf("shape scale not neutral: %+v", sh.Transform)
	}

	before := s.State()
	if res, _ := s.Apply(ResizeEntity{Kind: document.KindShape, ID: circle.ID, ScaleX: 1, ScaleY: 1}); res.Changed {
		t.Error("neutral resize reported a change")
	}
	if !before.Equal(s.State()) {
		t.Error("neutral resize changed state")
	}
}

func TestDeleteAndClearAreIdempotent(t *testing.T) {
	s := newTestStore()
	arr, _ := s.CreateArray(3)
	s.Apply(AddText{Text: "t", FontSize: 12})

	if res, _ := s.Delete(document.KindArray, arr); !res.Changed {
		t.Fatal("delete reported no change")
	}
	if res, _ := s.Delete(document.KindArray, arr); res.Changed {
		t.Fatal("second delete reported a change")
	}

	if res, err := s.ClearAll(); err != nil || !res.Changed {
		t.Fatalf("ClearAll: res = %+v, err = %v", res, err)
	}
	if s.State().Count() != 0 {
		t.Fatal("clear left entities")
	}
	if res, _ := s.ClearAll(); res.Changed {
		t.Fatal("clearing an empty store reported a change")
	}
}

func TestRestore(t *testing.T) {
	s := newTestStore()
	sample := document.NewSampleState()
	s.Restore(sample)
	if !s.State().Equal(sample) {
		t.Fatal("restore did not install the state")
	}
	s.SetCellValue(sample.Arrays[0].ID, 0, "changed")
	if sample.Arrays[0].Values[0] == "changed" {
		t.Fatal("restore aliased the caller's state")
	}
}
