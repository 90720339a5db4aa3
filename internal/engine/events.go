package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dsaviz/dsaviz/internal/document"
)

// Event is a pointer, wheel or keyboard event in container pixels. The set
// of events is closed; HandleEvent dispatches on the concrete type.
type Event interface {
	event()
}

type Click struct{ X, Y float64 }
type DoubleClick struct{ X, Y float64 }
type ContextMenu struct{ X, Y float64 }
type Hover struct{ X, Y float64 }
type DragStart struct{ X, Y float64 }
type DragMove struct{ X, Y float64 }
type DragEnd struct{ X, Y float64 }

// ClickEmpty is a click the host already knows missed every entity.
type ClickEmpty struct{}

// Drop is a palette item released over the canvas.
type Drop struct {
	Shape string
	X, Y  float64
}

// Wheel zooms around the pointer. Negative DeltaY zooms in.
type Wheel struct {
	X, Y   float64
	DeltaY float64
}

type Pan struct{ DX, DY float64 }

type ResizeStart struct{}
type ResizeMove struct{ ScaleX, ScaleY float64 }
type ResizeEnd struct{}

type Key struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (Click) event()       {}
func (DoubleClick) event() {}
func (ContextMenu) event() {}
func (Hover) event()       {}
func (DragStart) event()   {}
func (DragMove) event()    {}
func (DragEnd) event()     {}
func (ClickEmpty) event()  {}
func (Drop) event()        {}
func (Wheel) event()       {}
func (Pan) event()         {}
func (ResizeStart) event() {}
func (ResizeMove) event()  {}
func (ResizeEnd) event()   {}
func (Key) event()         {}

// EventPayload is the wire form of an Event. Type selects the event;
// only the fields that event uses are read.
type EventPayload struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	ScaleX float64 `json:"scaleX,omitempty"`
	ScaleY float64 `json:"scaleY,omitempty"`
	Shape  string  `json:"shape,omitempty"`
	Key    string  `json:"key,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Meta   bool    `json:"meta,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
}

// Event converts the payload into the engine's event union.
func (p EventPayload) Event() (Event, error) {
	switch p.Type {
	case "click":
		return Click{X: p.X, Y: p.Y}, nil
	case "clickEmpty":
		return ClickEmpty{}, nil
	case "doubleClick":
		return DoubleClick{X: p.X, Y: p.Y}, nil
	case "contextMenu":
		return ContextMenu{X: p.X, Y: p.Y}, nil
	case "hover":
		return Hover{X: p.X, Y: p.Y}, nil
	case "dragStart":
		return DragStart{X: p.X, Y: p.Y}, nil
	case "dragMove":
		return DragMove{X: p.X, Y: p.Y}, nil
	case "dragEnd":
		return DragEnd{X: p.X, Y: p.Y}, nil
	case "drop":
		return Drop{Shape: p.Shape, X: p.X, Y: p.Y}, nil
	case "wheel":
		return Wheel{X: p.X, Y: p.Y, DeltaY: p.DeltaY}, nil
	case "pan":
		return Pan{DX: p.DX, DY: p.DY}, nil
	case "resizeStart":
		return ResizeStart{}, nil
	case "resizeMove":
		return ResizeMove{ScaleX: p.ScaleX, ScaleY: p.ScaleY}, nil
	case "resizeEnd":
		return ResizeEnd{}, nil
	case "key":
		return Key{Key: p.Key, Ctrl: p.Ctrl, Meta: p.Meta, Shift: p.Shift}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", p.Type)
}

// Prompt asks the host to collect input, e.g. a highlight color for a
// right-clicked cell. Choices lists the values to offer.
type Prompt struct {
	Action  string   `json:"action"`
	ArrayID string   `json:"arrayId"`
	Index   int      `json:"index"`
	Choices []string `json:"choices,omitempty"`
}

// Outcome reports what an event did. Handled is false when the host should
// apply its own default behavior.
type Outcome struct {
	Handled bool    `json:"handled"`
	Prompt  *Prompt `json:"prompt,omitempty"`
}

var handled = Outcome{Handled: true}

// HandleEvent routes one input event.
func (e *Engine) HandleEvent(ev Event) (Outcome, error) {
	switch ev := ev.(type) {
	case Click:
		return e.click(ev.X, ev.Y), nil
	case ClickEmpty:
		e.commitOpenEdit()
		e.ClearSelection()
		return handled, nil
	case DoubleClick:
		hit, ok := e.HitTest(ev.X, ev.Y)
		if !ok || !e.BeginEdit(hit) {
			return Outcome{}, nil
		}
		return handled, nil
	case ContextMenu:
		hit, ok := e.HitTest(ev.X, ev.Y)
		if !ok || hit.Part != PartCell {
			return Outcome{}, nil
		}
		return Outcome{Handled: true, Prompt: &Prompt{
			Action:  "highlight",
			ArrayID: hit.ID,
			Index:   hit.SubIndex,
			Choices: slices.Clone(document.HighlightColors),
		}}, nil
	case Hover:
		if hit, ok := e.HitTest(ev.X, ev.Y); ok {
			if s := e.describe(hit); s != "" {
				e.info = s
			}
		}
		return handled, nil
	case DragStart:
		e.BeginDrag(ev.X, ev.Y)
		return handled, nil
	case DragMove:
		e.DragTo(ev.X, ev.Y)
		return handled, nil
	case DragEnd:
		e.EndDrag(ev.X, ev.Y)
		return handled, nil
	case Drop:
		if _, err := e.DropShape(ev.Shape, ev.X, ev.Y); err != nil {
			return Outcome{}, err
		}
		return handled, nil
	case Wheel:
		switch {
		case ev.DeltaY < 0:
			e.ZoomBy(ev.X, ev.Y, 1)
		case ev.DeltaY > 0:
			e.ZoomBy(ev.X, ev.Y, -1)
		}
		return handled, nil
	case Pan:
		e.PanBy(ev.DX, ev.DY)
		return handled, nil
	case ResizeStart:
		return Outcome{Handled: e.BeginResize()}, nil
	case ResizeMove:
		e.ResizeTo(ev.ScaleX, ev.ScaleY)
		return handled, nil
	case ResizeEnd:
		e.EndResize()
		return handled, nil
	case Key:
		return e.key(ev)
	}
	return Outcome{}, nil
}

func (e *Engine) click(px, py float64) Outcome {
	e.commitOpenEdit()
	hit, ok := e.HitTest(px, py)
	if !ok {
		e.ClearSelection()
		return handled
	}
	switch hit.Part {
	case PartHandle:
	case PartPointer:
		e.RemovePointer(hit.ID, hit.Name)
	default:
		e.Select(hit.Kind, hit.ID)
	}
	return handled
}

func (e *Engine) key(k Key) (Outcome, error) {
	mod := k.Ctrl || k.Meta
	switch name := strings.ToLower(k.Key); {
	case mod && name == "z" && k.Shift, mod && name == "y":
		e.Redo()
	case mod && name == "z":
		e.Undo()
	case name == "escape":
		if e.edit == nil && e.drag == nil && !e.resize.Active() {
			return Outcome{}, nil
		}
		e.CancelEdit()
		e.cancelGestures()
	case name == "enter":
		if e.edit == nil {
			return Outcome{}, nil
		}
		if err := e.CommitEdit(); err != nil {
			return handled, err
		}
	case name == "delete" || name == "backspace":
		if e.edit != nil {
			return Outcome{}, nil
		}
		if _, ok := e.sel.Selected(); !ok {
			return Outcome{}, nil
		}
		e.Delete()
	default:
		return Outcome{}, nil
	}
	return handled, nil
}

// KindOf parses an entity kind name.
func KindOf(s string) (document.Kind, bool) {
	k := document.Kind(s)
	return k, k.Valid()
}
