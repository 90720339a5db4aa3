// Package selection tracks the single selected entity and turns generic
// scale-handle gestures into variant-specific geometry.
package selection

import "github.com/dsaviz/dsaviz/internal/document"

// Ref identifies an entity across every collection.
type Ref struct {
	Kind document.Kind `json:"kind"`
	ID   string        `json:"id"`
}

func (r Ref) IsZero() bool {
	return r.ID == ""
}

// Controller holds at most one selection. There is a single slot, so
// selecting an entity of any kind drops whatever was selected before.
type Controller struct {
	current Ref
}

func (c *Controller) Select(r Ref) {
	c.current = r
}

func (c *Controller) Clear() {
	c.current = Ref{}
}

// Selected returns the selected entity, if any.
func (c *Controller) Selected() (Ref, bool) {
	return c.current, !c.current.IsZero()
}

func (c *Controller) IsSelected(kind document.Kind, id string) bool {
	return c.current.Kind == kind && c.current.ID == id && id != ""
}

// Forget clears the selection if it names the given entity. Called after
// deletes so the controller never holds a dangling id.
func (c *Controller) Forget(kind document.Kind, id string) {
	if c.IsSelected(kind, id) {
		c.Clear()
	}
}

// Prune clears the selection if the entity no longer exists in s.
func (c *Controller) Prune(s document.State) {
	if r, ok := c.Selected(); ok && !s.Has(r.Kind, r.ID) {
		c.Clear()
	}
}

// HasHandles reports whether entities of kind get a resize overlay.
// Text annotations are selectable for move and delete only.
func HasHandles(kind document.Kind) bool {
	switch kind {
	case document.KindShape, document.KindArray, document.KindStructure:
		return true
	}
	return false
}
