package engine

import (
	"fmt"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/store"
	"github.com/dsaviz/dsaviz/internal/typeid"
)

// Action is a serializable engine call. Transports and command scripts
// decode into Action and hand it to Do, so every surface drives the
// engine the same way.
type Action struct {
	Op string `json:"op" toml:"op"`
	// As names the created entity so later script steps can refer to it.
	As string `json:"as,omitempty" toml:"as"`

	Kind     string   `json:"kind,omitempty" toml:"kind"`
	ID       string   `json:"id,omitempty" toml:"id"`
	Size     int      `json:"size,omitempty" toml:"size"`
	Index    int      `json:"index,omitempty" toml:"index"`
	Value    string   `json:"value,omitempty" toml:"value"`
	Values   []string `json:"values,omitempty" toml:"values"`
	Color    string   `json:"color,omitempty" toml:"color"`
	Name     string   `json:"name,omitempty" toml:"name"`
	Type     string   `json:"type,omitempty" toml:"type"`
	ListKind string   `json:"listKind,omitempty" toml:"list_kind"`
	Field    string   `json:"field,omitempty" toml:"field"`
	Text     string   `json:"text,omitempty" toml:"text"`
	FontSize float64  `json:"fontSize,omitempty" toml:"font_size"`
	X        float64  `json:"x,omitempty" toml:"x"`
	Y        float64  `json:"y,omitempty" toml:"y"`
	ScaleX   float64  `json:"scaleX,omitempty" toml:"scale_x"`
	ScaleY   float64  `json:"scaleY,omitempty" toml:"scale_y"`
	Zoom     float64  `json:"zoom,omitempty" toml:"zoom"`
	Dir      int      `json:"dir,omitempty" toml:"dir"`
	At       bool     `json:"at,omitempty" toml:"at"`

	Shape *store.ShapeSpec `json:"shape,omitempty" toml:"shape"`
}

// Result is what Do reports back: the id of a created entity, if any, the
// status message and whether undo/redo are available afterwards.
type Result struct {
	ID      string `json:"id,omitempty"`
	Info    string `json:"info"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
}

// Do performs one action. Unknown ops are an error; store rejections are
// returned as *store.RejectionError.
func (e *Engine) Do(a Action) (Result, error) {
	id, err := e.do(a)
	res := Result{ID: id, Info: e.info, CanUndo: e.CanUndo(), CanRedo: e.CanRedo()}
	return res, err
}

func (e *Engine) do(a Action) (string, error) {
	if err := checkID(a); err != nil {
		return "", err
	}
	switch a.Op {
	case "createArray":
		var id string
		err := e.Batch(func() error {
			var err error
			if id, err = e.CreateArray(a.Size); err != nil {
				return err
			}
			for i, v := range a.Values {
				e.SetCellValue(id, i, v)
			}
			return nil
		})
		return id, err
	case "setCellValue":
		e.SetCellValue(a.ID, a.Index, a.Value)
	case "setHighlight":
		e.SetHighlight(a.ID, a.Index, a.Color)
	case "clearHighlight":
		e.ClearHighlight(a.ID, a.Index)
	case "setCellSize":
		e.SetCellSize(a.ID, a.Index, a.X, a.Y)
	case "setPointer":
		return "", e.SetPointer(a.ID, a.Name, a.Index)
	case "movePointer":
		return "", e.MovePointer(a.ID, a.Name, a.Index)
	case "removePointer":
		e.RemovePointer(a.ID, a.Name)
	case "addStructure":
		var id string
		err := e.Batch(func() error {
			var err error
			id, err = e.AddStructure(document.StructureType(a.Type), a.Size, document.ListKind(a.ListKind))
			if err != nil {
				return err
			}
			for i, v := range a.Values {
				e.SetStructureValue(id, i, v)
				e.SetListNode(id, i, document.FieldData, v)
			}
			return nil
		})
		return id, err
	case "setStructureValue":
		e.SetStructureValue(a.ID, a.Index, a.Value)
	case "setListNode":
		e.SetListNode(a.ID, a.Index, document.ListField(a.Field), a.Value)
	case "addShape":
		spec := store.ShapeSpec{Type: a.Type}
		if a.Shape != nil {
			spec = *a.Shape
		}
		if a.At {
			spec.At = &store.Point{X: a.X, Y: a.Y}
		}
		return e.AddShape(spec)
	case "dropShape":
		return e.DropShape(a.Type, a.X, a.Y)
	case "setShapeColor":
		if a.ID != "" {
			e.Select(document.KindShape, a.ID)
		}
		e.SetShapeColor(a.Color)
	case "addText":
		cmd := store.AddText{Text: a.Text, FontSize: a.FontSize, Color: a.Color, FontFamily: a.Name}
		if a.At {
			cmd.At = &store.Point{X: a.X, Y: a.Y}
		}
		return e.AddText(cmd)
	case "setText":
		return "", e.SetText(a.ID, a.Text)
	case "move":
		kind, err := parseKind(a.Kind)
		if err != nil {
			return "", err
		}
		e.Move(kind, a.ID, a.X, a.Y)
	case "resize":
		kind, err := parseKind(a.Kind)
		if err != nil {
			return "", err
		}
		e.Resize(kind, a.ID, a.ScaleX, a.ScaleY)
	case "select":
		kind, err := parseKind(a.Kind)
		if err != nil {
			return "", err
		}
		e.Select(kind, a.ID)
	case "clearSelection":
		e.ClearSelection()
	case "delete":
		if a.ID == "" {
			e.Delete()
			return "", nil
		}
		kind, err := parseKind(a.Kind)
		if err != nil {
			return "", err
		}
		e.DeleteEntity(kind, a.ID)
	case "clearAll":
		e.ClearAll()
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "cellWidth":
		e.StepCellWidth(a.Dir)
	case "cellHeight":
		e.StepCellHeight(a.Dir)
	case "cellFontSize":
		e.StepCellFontSize(a.Dir)
	case "zoomAt":
		e.ZoomAt(a.X, a.Y, a.Zoom)
	case "pan":
		e.PanBy(a.X, a.Y)
	case "resetView":
		e.ResetView()
	default:
		return "", fmt.Errorf("unknown op %q", a.Op)
	}
	return "", nil
}

var opPrefix = map[string]string{
	"setCellValue":      typeid.PrefixArray,
	"setHighlight":      typeid.PrefixArray,
	"clearHighlight":    typeid.PrefixArray,
	"setCellSize":       typeid.PrefixArray,
	"setPointer":        typeid.PrefixArray,
	"movePointer":       typeid.PrefixArray,
	"removePointer":     typeid.PrefixArray,
	"setStructureValue": typeid.PrefixStructure,
	"setListNode":       typeid.PrefixStructure,
	"setShapeColor":     typeid.PrefixShape,
	"setText":           typeid.PrefixText,
}

var kindPrefix = map[document.Kind]string{
	document.KindArray:     typeid.PrefixArray,
	document.KindStructure: typeid.PrefixStructure,
	document.KindShape:     typeid.PrefixShape,
	document.KindText:      typeid.PrefixText,
}

// checkID rejects an id that cannot name an entity of the kind the op
// targets. Well-formed ids that match nothing stay no-ops.
func checkID(a Action) error {
	if a.ID == "" {
		return nil
	}
	prefix, ok := opPrefix[a.Op]
	if !ok {
		k, known := KindOf(a.Kind)
		if !known {
			return nil
		}
		prefix = kindPrefix[k]
	}
	if err := typeid.Validate(a.ID, prefix); err != nil {
		return fmt.Errorf("%s: %w", a.Op, err)
	}
	return nil
}

func parseKind(s string) (document.Kind, error) {
	k, ok := KindOf(s)
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}
