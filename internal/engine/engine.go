package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/history"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/selection"
	"github.com/dsaviz/dsaviz/internal/store"
)

// Observer receives engine activity, e.g. for metrics. Every method is
// called synchronously from the engine's goroutine.
type Observer interface {
	CommandApplied(name string, err error)
	SnapshotRecorded(depth int)
	Undone()
	Redone()
}

type nopObserver struct{}

func (nopObserver) CommandApplied(string, error) {}
func (nopObserver) SnapshotRecorded(int)         {}
func (nopObserver) Undone()                      {}
func (nopObserver) Redone()                      {}

// Engine is the editing core: it owns the store, history, selection,
// viewport and gesture sessions, and turns input events into store
// commands. It is not safe for concurrent use; callers serialize access.
type Engine struct {
	limits   document.Limits
	display  document.DisplaySettings
	view     Viewport
	store    *store.Store
	history  *history.History
	sel      selection.Controller
	resize   selection.Gesture
	drag     *dragSession
	edit     *EditSession
	info     string
	logger   *slog.Logger
	observer Observer
	initial  *document.State
	batching bool

	// Retained scene graph, rebuilt when dirty.
	sceneGraph *SceneGraph
	dirty      bool
}

type Option func(*Engine)

func WithLimits(l document.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

func WithDisplay(d document.DisplaySettings) Option {
	return func(e *Engine) { e.display = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithState starts the session from st instead of an empty canvas. The
// initial state is the first history snapshot, so it cannot be undone.
func WithState(st document.State) Option {
	return func(e *Engine) { e.initial = &st }
}

// NewEngine creates a new engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		limits:   document.DefaultLimits(),
		display:  document.DefaultDisplay(),
		view:     DefaultViewport(),
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
		dirty:    true,
	}
	for _, opt := range opts {
		opt(e)
	}

	storeOpts := []store.Option{store.WithLogger(e.logger)}
	if e.initial != nil {
		storeOpts = append(storeOpts, store.WithState(*e.initial))
	}
	e.store = store.New(e.limits, storeOpts...)
	e.history = history.New(e.limits.HistoryLimit)
	e.record()
	return e
}

// --- Commands (host → engine) ---

// exec applies one store command and records a snapshot if it changed
// anything.
func (e *Engine) exec(cmd store.Command) (store.Result, error) {
	name := commandName(cmd)
	res, err := e.store.Apply(cmd)
	e.observer.CommandApplied(name, err)
	if err != nil {
		e.info = store.UserMessage(err)
		return res, err
	}
	if res.Changed {
		e.logger.Debug("command applied", "command", name, "id", res.ID)
		if !e.batching {
			e.record()
		}
		e.sel.Prune(e.store.State())
		e.dirty = true
	}
	return res, nil
}

// Batch runs fn with snapshotting suspended and records one snapshot for
// everything fn changed, so the whole batch undoes in one step. Changes
// made before fn fails are kept.
func (e *Engine) Batch(fn func() error) error {
	if e.batching {
		return fn()
	}
	e.batching = true
	err := fn()
	e.batching = false
	e.record()
	return err
}

func (e *Engine) record() {
	recorded, err := e.history.Record(e.store.State())
	if err != nil {
		e.logger.Error("record snapshot", "error", err)
		return
	}
	if recorded {
		e.observer.SnapshotRecorded(e.history.Len())
	}
}

func commandName(cmd store.Command) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", cmd), "store.")
}

// CreateArray adds an array with n empty cells.
func (e *Engine) CreateArray(n int) (string, error) {
	res, err := e.exec(store.CreateArray{Size: n})
	if err != nil {
		return "", err
	}
	e.info = fmt.Sprintf("Added array #%d (size %d)", len(e.store.State().Arrays), n)
	return res.ID, nil
}

func (e *Engine) SetCellValue(arrayID string, index int, value string) {
	e.exec(store.SetCellValue{ArrayID: arrayID, Index: index, Value: value})
}

func (e *Engine) SetHighlight(arrayID string, index int, color string) {
	if res, _ := e.exec(store.SetHighlight{ArrayID: arrayID, Index: index, Color: color}); res.Changed {
		e.info = fmt.Sprintf("Highlighted cell [%d]", index)
	}
}

// ClearHighlight clears one cell's highlight, or all of them for index < 0.
func (e *Engine) ClearHighlight(arrayID string, index int) {
	if res, _ := e.exec(store.ClearHighlight{ArrayID: arrayID, Index: index}); res.Changed {
		e.info = "Cleared highlight"
	}
}

func (e *Engine) SetCellSize(arrayID string, index int, width, height float64) {
	e.exec(store.SetCellSize{ArrayID: arrayID, Index: index, Width: width, Height: height})
}

func (e *Engine) SetPointer(arrayID, name string, index int) error {
	res, err := e.exec(store.SetPointer{ArrayID: arrayID, Name: name, Index: index})
	if err != nil {
		return err
	}
	if res.Changed {
		e.info = fmt.Sprintf("Pointer %q at [%d]", name, index)
	}
	return nil
}

// MovePointer moves an existing pointer; unknown pointers are ignored.
func (e *Engine) MovePointer(arrayID, name string, index int) error {
	i, ok := e.store.State().FindArray(arrayID)
	if !ok {
		return nil
	}
	if _, ok := e.store.State().Arrays[i].Pointers[name]; !ok {
		return nil
	}
	return e.SetPointer(arrayID, name, index)
}

func (e *Engine) RemovePointer(arrayID, name string) {
	if res, _ := e.exec(store.RemovePointer{ArrayID: arrayID, Name: name}); res.Changed {
		e.info = fmt.Sprintf("Removed pointer %q", name)
	}
}

func (e *Engine) AddStructure(typ document.StructureType, size int, kind document.ListKind) (string, error) {
	res, err := e.exec(store.AddStructure{Type: typ, Size: size, ListKind: kind})
	if err != nil {
		return "", err
	}
	e.info = fmt.Sprintf("Added %s (size %d)", typ, size)
	return res.ID, nil
}

func (e *Engine) SetStructureValue(id string, index int, value string) {
	e.exec(store.SetStructureValue{StructureID: id, Index: index, Value: value})
}

func (e *Engine) SetListNode(id string, index int, field document.ListField, value string) {
	e.exec(store.SetListNode{StructureID: id, Index: index, Field: field, Value: value})
}

// AddShape creates a shape and selects it.
func (e *Engine) AddShape(spec store.ShapeSpec) (string, error) {
	res, err := e.exec(store.AddShape{Spec: spec})
	if err != nil {
		return "", err
	}
	e.sel.Select(selection.Ref{Kind: document.KindShape, ID: res.ID})
	e.info = fmt.Sprintf("Added %s", spec.Type)
	return res.ID, nil
}

// DropShape creates a shape of the given kind at a container pixel, as
// when a palette item is dropped on the canvas.
func (e *Engine) DropShape(kind string, px, py float64) (string, error) {
	x, y := e.view.PixelToWorld(px, py)
	return e.AddShape(store.ShapeSpec{Type: kind, At: &store.Point{X: x, Y: y}})
}

// SetShapeColor recolors the selected shape.
func (e *Engine) SetShapeColor(color string) {
	ref, ok := e.sel.Selected()
	if !ok || ref.Kind != document.KindShape {
		e.info = "Select a shape first"
		return
	}
	if res, _ := e.exec(store.SetShapeColor{ShapeID: ref.ID, Color: color}); res.Changed {
		e.info = "Changed shape color"
	}
}

func (e *Engine) AddText(cmd store.AddText) (string, error) {
	res, err := e.exec(cmd)
	if err != nil {
		return "", err
	}
	e.info = "Added text"
	return res.ID, nil
}

func (e *Engine) SetText(id, text string) error {
	_, err := e.exec(store.SetText{TextID: id, Text: text})
	return err
}

func (e *Engine) Move(kind document.Kind, id string, x, y float64) {
	e.exec(store.MoveEntity{Kind: kind, ID: id, X: x, Y: y})
}

func (e *Engine) Resize(kind document.Kind, id string, sx, sy float64) {
	e.exec(store.ResizeEntity{Kind: kind, ID: id, ScaleX: sx, ScaleY: sy})
}

func (e *Engine) DeleteEntity(kind document.Kind, id string) {
	if e.edit != nil && e.edit.Target.ID == id {
		e.CancelEdit()
	}
	if res, _ := e.exec(store.DeleteEntity{Kind: kind, ID: id}); res.Changed {
		e.sel.Forget(kind, id)
		e.info = fmt.Sprintf("Deleted %s", kind)
	}
}

// Delete removes the selected entity.
func (e *Engine) Delete() {
	if ref, ok := e.sel.Selected(); ok {
		e.DeleteEntity(ref.Kind, ref.ID)
	}
}

func (e *Engine) ClearAll() {
	e.CancelEdit()
	e.cancelGestures()
	if res, _ := e.exec(store.ClearAll{}); res.Changed {
		e.sel.Clear()
		e.info = "Cleared canvas"
	}
}

// Undo restores the previous snapshot. It reports false, and does
// nothing, when there is nothing to undo.
func (e *Engine) Undo() bool {
	st, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(st)
	e.observer.Undone()
	e.info = "Undo"
	return true
}

func (e *Engine) Redo() bool {
	st, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(st)
	e.observer.Redone()
	e.info = "Redo"
	return true
}

func (e *Engine) restore(st document.State) {
	e.CancelEdit()
	e.cancelGestures()
	e.store.Restore(st)
	e.sel.Prune(e.store.State())
	e.dirty = true
}

func (e *Engine) CanUndo() bool { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Select selects an entity; unknown entities clear the selection.
func (e *Engine) Select(kind document.Kind, id string) {
	if !e.store.State().Has(kind, id) {
		e.ClearSelection()
		return
	}
	e.sel.Select(selection.Ref{Kind: kind, ID: id})
	e.dirty = true
}

func (e *Engine) ClearSelection() {
	e.sel.Clear()
	e.dirty = true
}

func (e *Engine) Selected() (selection.Ref, bool) {
	return e.sel.Selected()
}

// StepCellWidth, StepCellHeight and StepCellFontSize move the display
// settings by one step in direction dir. They are not part of history.
func (e *Engine) StepCellWidth(dir int) {
	e.display = e.display.StepCellWidth(dir)
	e.info = fmt.Sprintf("Cell width: %gpx", e.display.CellWidth)
	e.dirty = true
}

func (e *Engine) StepCellHeight(dir int) {
	e.display = e.display.StepCellHeight(dir)
	e.info = fmt.Sprintf("Cell height: %gpx", e.display.CellHeight)
	e.dirty = true
}

func (e *Engine) StepCellFontSize(dir int) {
	e.display = e.display.StepCellFontSize(dir)
	e.info = fmt.Sprintf("Font size: %gpx", e.display.CellFontSize)
	e.dirty = true
}

// ZoomAt sets the zoom level keeping the world point under the pixel
// fixed.
func (e *Engine) ZoomAt(px, py, zoom float64) {
	e.view = e.view.ZoomAt(px, py, zoom, e.limits)
	e.dirty = true
}

func (e *Engine) ZoomBy(px, py, steps float64) {
	e.view = e.view.ZoomBy(px, py, steps, e.limits)
	e.dirty = true
}

func (e *Engine) PanBy(dx, dy float64) {
	e.view = e.view.PanBy(dx, dy)
}

func (e *Engine) ResetView() {
	e.view = DefaultViewport()
	e.dirty = true
}

// --- Queries (host ← engine) ---

func (e *Engine) State() document.State {
	return e.store.State()
}

func (e *Engine) Limits() document.Limits {
	return e.limits
}

func (e *Engine) Display() document.DisplaySettings {
	return e.display
}

func (e *Engine) Viewport() Viewport {
	return e.view
}

// Info returns the latest status message.
func (e *Engine) Info() string {
	return e.info
}

// HistoryDepth returns the number of snapshots and the cursor position.
func (e *Engine) HistoryDepth() (int, int) {
	return e.history.Len(), e.history.Cursor()
}

// Scene returns the current scene graph in world space.
func (e *Engine) Scene() *SceneGraph {
	if e.dirty || e.sceneGraph == nil {
		ref, _ := e.sel.Selected()
		e.sceneGraph = BuildSceneGraph(e.store.State(), e.display, SceneOptions{
			Selected: ref,
			Zoom:     e.view.Zoom,
			preview:  e.preview(),
		})
		e.dirty = false
	}
	return e.sceneGraph
}

// ExportScene builds the scene without the selection overlay or any
// in-progress gesture, for rendering outside the live canvas.
func (e *Engine) ExportScene() *SceneGraph {
	return BuildSceneGraph(e.store.State(), e.display, SceneOptions{})
}

// DrawCommands compiles the scene for the live canvas.
func (e *Engine) DrawCommands() []DrawCommand {
	return CompileDrawCommands(e.Scene(), e.view.Matrix())
}

// Render returns the draw commands as JSON.
func (e *Engine) Render() string {
	result, err := DrawCommandsToJSON(e.DrawCommands())
	if err != nil {
		e.logger.Error("encode draw commands", "error", err)
	}
	return result
}

// HitTest returns what lies under a container pixel.
func (e *Engine) HitTest(px, py float64) (Hit, bool) {
	x, y := e.view.PixelToWorld(px, py)
	return HitTest(e.Scene(), x, y)
}

// SelectionBounds returns the selected entity's bounds in container
// pixels.
func (e *Engine) SelectionBounds() (layout.Rect, bool) {
	ref, ok := e.sel.Selected()
	if !ok {
		return layout.Rect{}, false
	}
	r, ok := e.Scene().EntityBounds(ref.ID)
	if !ok {
		return layout.Rect{}, false
	}
	return e.view.Matrix().TransformRect(r), true
}
