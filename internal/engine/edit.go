package engine

import (
	"fmt"

	"github.com/dsaviz/dsaviz/internal/layout"
)

// EditSession is an open in-place editor. Value is the buffered text; the
// store is not touched until the edit commits.
type EditSession struct {
	Target Hit    `json:"target"`
	Value  string `json:"value"`
}

// Editable reports whether a hit names something with an in-place editor.
func Editable(h Hit) bool {
	switch h.Part {
	case PartCell, PartNode, PartListCell, PartText:
		return true
	}
	return false
}

// BeginEdit opens an editor over the hit element, committing any editor
// that was already open. It reports false if the element is not editable.
func (e *Engine) BeginEdit(h Hit) bool {
	if !Editable(h) {
		return false
	}
	e.commitOpenEdit()
	value, ok := e.currentValue(h)
	if !ok {
		return false
	}
	e.edit = &EditSession{Target: h, Value: value}
	return true
}

// Editing returns the open editor, if any.
func (e *Engine) Editing() (EditSession, bool) {
	if e.edit == nil {
		return EditSession{}, false
	}
	return *e.edit, true
}

// SetEditValue replaces the buffered value of the open editor.
func (e *Engine) SetEditValue(v string) {
	if e.edit != nil {
		e.edit.Value = v
	}
}

// CommitEdit writes the buffered value through the store and closes the
// editor.
func (e *Engine) CommitEdit() error {
	ed := e.edit
	if ed == nil {
		return nil
	}
	e.edit = nil
	t := ed.Target

	switch t.Part {
	case PartCell:
		e.SetCellValue(t.ID, t.SubIndex, ed.Value)
		e.info = fmt.Sprintf("Cell [%d] = %s", t.SubIndex, ed.Value)
	case PartNode:
		e.SetStructureValue(t.ID, t.SubIndex, ed.Value)
		e.info = fmt.Sprintf("Node %d = %s", t.SubIndex, ed.Value)
	case PartListCell:
		e.SetListNode(t.ID, t.SubIndex, t.Field, ed.Value)
		e.info = fmt.Sprintf("Node %d %s = %s", t.SubIndex, t.Field, ed.Value)
	case PartText:
		if err := e.SetText(t.ID, ed.Value); err != nil {
			return err
		}
		e.info = "Updated text"
	}
	return nil
}

// CancelEdit closes the editor without touching the store.
func (e *Engine) CancelEdit() {
	e.edit = nil
}

func (e *Engine) commitOpenEdit() {
	if e.edit == nil {
		return
	}
	if err := e.CommitEdit(); err != nil {
		e.logger.Debug("commit edit", "error", err)
	}
}

// EditorRect returns where the host should place the editor, in container
// pixels. It is recomputed from the current viewport on every call, so a
// pan or zoom during an edit moves the editor with its element.
func (e *Engine) EditorRect() (layout.Rect, bool) {
	if e.edit == nil {
		return layout.Rect{}, false
	}
	t := e.edit.Target
	n, ok := e.Scene().Find(t.ID, t.Part, t.SubIndex, t.Field)
	if !ok {
		return layout.Rect{}, false
	}
	return e.view.Matrix().TransformRect(n.Bounds), true
}

func (e *Engine) currentValue(h Hit) (string, bool) {
	st := e.store.State()
	switch h.Part {
	case PartCell:
		if i, ok := st.FindArray(h.ID); ok && st.Arrays[i].InRange(h.SubIndex) {
			return st.Arrays[i].Values[h.SubIndex], true
		}
	case PartNode:
		if i, ok := st.FindStructure(h.ID); ok && st.Structures[i].InRange(h.SubIndex) && st.Structures[i].Values != nil {
			return st.Structures[i].Values[h.SubIndex], true
		}
	case PartListCell:
		if i, ok := st.FindStructure(h.ID); ok && st.Structures[i].InRange(h.SubIndex) && st.Structures[i].Nodes != nil {
			return listFieldValue(st.Structures[i].Nodes[h.SubIndex], h.Field), true
		}
	case PartText:
		if i, ok := st.FindText(h.ID); ok {
			return st.Texts[i].Text, true
		}
	}
	return "", false
}

// describe renders a hit for hover info, e.g. "Array 1 Cell [2] = 7".
func (e *Engine) describe(h Hit) string {
	st := e.store.State()
	switch h.Part {
	case PartCell:
		if i, ok := st.FindArray(h.ID); ok && st.Arrays[i].InRange(h.SubIndex) {
			return fmt.Sprintf("Array %d Cell [%d] = %s", i+1, h.SubIndex, st.Arrays[i].Values[h.SubIndex])
		}
	case PartNode, PartListCell:
		if v, ok := e.currentValue(h); ok {
			return fmt.Sprintf("Node %d = %s", h.SubIndex, v)
		}
	case PartPointer:
		return fmt.Sprintf("Pointer %q at [%d]", h.Name, h.SubIndex)
	case PartShape:
		return "Shape"
	case PartText:
		return "Text"
	}
	return ""
}
