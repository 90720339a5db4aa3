// Package store owns the editing state. Every mutation goes through Apply
// and replaces whole values, so a State returned earlier is never changed
// by a later command.
package store

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/selection"
	"github.com/dsaviz/dsaviz/internal/typeid"
)

// Result describes what a command did. ID is set for commands that create
// an entity. Changed is false for commands that turned out to be no-ops.
type Result struct {
	ID      string
	Changed bool
}

// Store is the single source of truth for the editing state. It is not
// safe for concurrent use.
type Store struct {
	state  document.State
	limits document.Limits
	newID  func(prefix string) string
	logger *slog.Logger

	// creation counters drive the default cascade positions; they are
	// not reset by deletes, like the ids they accompany.
	structuresAdded int
	shapesAdded     int
	textsAdded      int
}

type Option func(*Store)

// WithIDGenerator replaces the typeid-based id source, mostly for tests.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithState seeds the store, e.g. with document.NewSampleState.
func WithState(st document.State) Option {
	return func(s *Store) { s.state = st.Clone() }
}

func New(limits document.Limits, opts ...Option) *Store {
	s := &Store{
		state:  document.Empty(),
		limits: limits,
		newID:  typeid.New,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state. The caller must treat it as read-only;
// the store never mutates a state it has handed out.
func (s *Store) State() document.State {
	return s.state
}

func (s *Store) Limits() document.Limits {
	return s.limits
}

// Restore replaces the whole state. It is used by undo and redo only.
func (s *Store) Restore(st document.State) {
	s.state = st.Clone()
}

// Apply runs one command. A *RejectionError leaves the state untouched;
// commands naming an entity that does not exist are silent no-ops.
func (s *Store) Apply(cmd Command) (Result, error) {
	res, err := s.apply(cmd)
	if err != nil {
		s.logger.Debug("command rejected", "command", fmt.Sprintf("%T", cmd), "error", err)
		return Result{}, err
	}
	return res, nil
}

func (s *Store) apply(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case CreateArray:
		return s.createArray(c)
	case SetCellValue:
		return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
			if !a.InRange(c.Index) {
				return false
			}
			a.Values = slices.Clone(a.Values)
			a.Values[c.Index] = c.Value
			return true
		})
	case SetHighlight:
		if !document.ValidColor(c.Color) {
			return Result{}, reject("Invalid color %q", c.Color)
		}
		return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
			if !a.InRange(c.Index) {
				return false
			}
			a.Highlights = cloneMap(a.Highlights)
			a.Highlights[c.Index] = c.Color
			return true
		})
	case ClearHighlight:
		return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
			if c.Index < 0 {
				if len(a.Highlights) == 0 {
					return false
				}
				a.Highlights = map[int]string{}
				return true
			}
			if _, ok := a.Highlights[c.Index]; !ok {
				return false
			}
			a.Highlights = cloneMap(a.Highlights)
			delete(a.Highlights, c.Index)
			return true
		})
	case SetCellSize:
		return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
			if !a.InRange(c.Index) {
				return false
			}
			a.CellSizes = cloneMap(a.CellSizes)
			a.CellSizes[c.Index] = document.CellSize{
				Width:  max(document.MinCellWidth, c.Width),
				Height: max(document.MinCellHeight, c.Height),
			}
			return true
		})
	case SetPointer:
		return s.setPointer(c)
	case RemovePointer:
		return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
			if _, ok := a.Pointers[c.Name]; !ok {
				return false
			}
			a.Pointers = cloneMap(a.Pointers)
			delete(a.Pointers, c.Name)
			return true
		})
	case AddStructure:
		return s.addStructure(c)
	case SetStructureValue:
		return s.updateStructure(c.StructureID, func(st *document.StructureEntity) bool {
			if st.Type == document.StructureLinkedList || !st.InRange(c.Index) {
				return false
			}
			st.Values = slices.Clone(st.Values)
			st.Values[c.Index] = c.Value
			return true
		})
	case SetListNode:
		return s.updateStructure(c.StructureID, func(st *document.StructureEntity) bool {
			return setListNode(st, c)
		})
	case AddShape:
		return s.addShape(c.Spec)
	case SetShapeColor:
		if !document.ValidColor(c.Color) {
			return Result{}, reject("Invalid color %q", c.Color)
		}
		return s.updateShape(c.ShapeID, func(sh *document.ShapeEntity) bool {
			sh.Style.Stroke = c.Color
			if !strokeOnly(sh.Type) {
				sh.Style.Fill = document.DefaultFill
			}
			return true
		})
	case AddText:
		return s.addText(c)
	case SetText:
		if c.Text == "" {
			return Result{}, reject("Please enter some text")
		}
		return s.updateText(c.TextID, func(t *document.TextAnnotation) bool {
			t.Text = c.Text
			return true
		})
	case MoveEntity:
		return s.move(c)
	case ResizeEntity:
		return s.resize(c)
	case DeleteEntity:
		return s.deleteEntity(c.Kind, c.ID), nil
	case ClearAll:
		if s.state.Count() == 0 {
			return Result{}, nil
		}
		s.state = document.Empty()
		return Result{Changed: true}, nil
	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *Store) createArray(c CreateArray) (Result, error) {
	if c.Size < 1 || c.Size > s.limits.MaxArraySize {
		return Result{}, reject("Please enter a size between 1 and %d", s.limits.MaxArraySize)
	}
	a := document.NewArray(s.newID(typeid.PrefixArray), c.Size)
	s.state.Arrays = append(slices.Clip(s.state.Arrays), a)
	return Result{ID: a.ID, Changed: true}, nil
}

func (s *Store) setPointer(c SetPointer) (Result, error) {
	if c.Name == "" {
		return Result{}, reject("Please select or enter a pointer name")
	}
	i, ok := s.state.FindArray(c.ArrayID)
	if !ok {
		return Result{}, nil
	}
	if a := s.state.Arrays[i]; !a.InRange(c.Index) {
		return Result{}, reject("Invalid index. Array size is %d", a.Size)
	}
	return s.updateArray(c.ArrayID, func(a *document.ArrayEntity) bool {
		a.Pointers = cloneMap(a.Pointers)
		a.Pointers[c.Name] = c.Index
		return true
	})
}

func (s *Store) addStructure(c AddStructure) (Result, error) {
	switch c.Type {
	case document.StructureTree, document.StructureGraph:
		c.ListKind = ""
	case document.StructureLinkedList:
		if c.ListKind == "" {
			c.ListKind = document.ListSingly
		}
		if c.ListKind != document.ListSingly && c.ListKind != document.ListDoubly {
			return Result{}, reject("Unknown list kind %q", c.ListKind)
		}
	default:
		return Result{}, reject("Unknown structure type %q", c.Type)
	}
	if c.Size < 1 || c.Size > s.limits.MaxStructureSize {
		return Result{}, reject("Please enter a size between 1 and %d", s.limits.MaxStructureSize)
	}

	st := document.NewStructure(s.newID(typeid.PrefixStructure), c.Type, c.Size, c.ListKind)
	home := layout.StructureHome(s.structuresAdded)
	st.Transform = document.Unit(home.X, home.Y)
	s.structuresAdded++
	s.state.Structures = append(slices.Clip(s.state.Structures), st)
	return Result{ID: st.ID, Changed: true}, nil
}

func setListNode(st *document.StructureEntity, c SetListNode) bool {
	if st.Type != document.StructureLinkedList || !st.InRange(c.Index) {
		return false
	}
	node := st.Nodes[c.Index]
	switch c.Field {
	case document.FieldData:
		node.Data = c.Value
	case document.FieldNext:
		node.Next = c.Value
	case document.FieldPrev:
		if st.ListKind != document.ListDoubly {
			return false
		}
		node.Prev = c.Value
	default:
		return false
	}
	st.Nodes = slices.Clone(st.Nodes)
	st.Nodes[c.Index] = node
	return true
}

func (s *Store) addShape(spec ShapeSpec) (Result, error) {
	typ, geom, ok := document.DefaultGeometry(spec.Type)
	if !ok {
		return Result{}, reject("Unknown shape type %q", spec.Type)
	}
	for _, c := range []string{spec.Fill, spec.Stroke} {
		if c != "" && !document.ValidColor(c) {
			return Result{}, reject("Invalid color %q", c)
		}
	}
	geom = s.customize(geom, spec)

	pos := layout.ShapeHome(s.shapesAdded)
	if spec.At != nil {
		pos = layout.Point{X: spec.At.X, Y: spec.At.Y}
	}
	style := document.Style{
		Fill:        spec.Fill,
		Stroke:      spec.Stroke,
		StrokeWidth: spec.StrokeWidth,
	}
	if style.Stroke == "" {
		style.Stroke = document.DefaultStroke
	}
	if style.StrokeWidth <= 0 {
		style.StrokeWidth = 2
	}
	if style.Fill == "" && !strokeOnly(typ) {
		style.Fill = document.DefaultFill
	}

	sh := document.ShapeEntity{
		ID:        s.newID(typeid.PrefixShape),
		Type:      typ,
		Transform: document.Unit(pos.X, pos.Y),
		Style:     style,
		Geometry:  geom,
	}
	s.shapesAdded++
	s.state.Shapes = append(slices.Clip(s.state.Shapes), sh)
	return Result{ID: sh.ID, Changed: true}, nil
}

// customize applies the spec's explicit dimensions over the defaults,
// clamping anything degenerate to the minimum sizes.
func (s *Store) customize(g document.Geometry, spec ShapeSpec) document.Geometry {
	switch g := g.(type) {
	case document.RectGeometry:
		if spec.Width != 0 {
			g.Width = max(s.limits.MinRectSize, spec.Width)
		}
		if spec.Height != 0 {
			g.Height = max(s.limits.MinRectSize, spec.Height)
		}
		if spec.CornerRadius > 0 {
			g.CornerRadius = spec.CornerRadius
		}
		return g
	case document.CircleGeometry:
		if spec.Radius != 0 {
			g.Radius = max(s.limits.MinRadius, spec.Radius)
		}
		return g
	case document.PathGeometry:
		if len(spec.Points) >= 4 && len(spec.Points)%2 == 0 {
			g.Points = slices.Clone(spec.Points)
		}
		return g
	case document.ArcGeometry:
		if spec.Radius != 0 {
			r := max(s.limits.MinRadius, spec.Radius)
			g.InnerRadius, g.OuterRadius = r, r
		}
		return g
	}
	return g
}

// strokeOnly reports whether the shape has no fill area.
func strokeOnly(t document.ShapeType) bool {
	return t == document.ShapeLine || t.IsArrow()
}

func (s *Store) addText(c AddText) (Result, error) {
	if c.Text == "" {
		return Result{}, reject("Please enter some text")
	}
	if c.FontSize < s.limits.MinFontSize || c.FontSize > s.limits.MaxFontSize {
		return Result{}, reject("Font size must be between %g and %g", s.limits.MinFontSize, s.limits.MaxFontSize)
	}
	if c.Color != "" && !document.ValidColor(c.Color) {
		return Result{}, reject("Invalid color %q", c.Color)
	}
	pos := layout.TextHome(s.textsAdded)
	if c.At != nil {
		pos = layout.Point{X: c.At.X, Y: c.At.Y}
	}
	t := document.TextAnnotation{
		ID:         s.newID(typeid.PrefixText),
		Text:       c.Text,
		FontSize:   c.FontSize,
		Color:      c.Color,
		FontFamily: c.FontFamily,
		Effect:     c.Effect,
		Transform:  document.Unit(pos.X, pos.Y),
	}
	if t.Color == "" {
		t.Color = "#000000"
	}
	if t.FontFamily == "" {
		t.FontFamily = "Arial"
	}
	s.textsAdded++
	s.state.Texts = append(slices.Clip(s.state.Texts), t)
	return Result{ID: t.ID, Changed: true}, nil
}

func (s *Store) move(c MoveEntity) (Result, error) {
	set := func(tr *document.Transform) bool {
		tr.X, tr.Y = c.X, c.Y
		return true
	}
	switch c.Kind {
	case document.KindArray:
		return s.updateArray(c.ID, func(a *document.ArrayEntity) bool { return set(&a.Transform) })
	case document.KindStructure:
		return s.updateStructure(c.ID, func(st *document.StructureEntity) bool { return set(&st.Transform) })
	case document.KindShape:
		return s.updateShape(c.ID, func(sh *document.ShapeEntity) bool { return set(&sh.Transform) })
	case document.KindText:
		return s.updateText(c.ID, func(t *document.TextAnnotation) bool { return set(&t.Transform) })
	}
	return Result{}, nil
}

func (s *Store) resize(c ResizeEntity) (Result, error) {
	if selection.Neutral(c.ScaleX, c.ScaleY) {
		return Result{}, nil
	}
	multiply := func(tr *document.Transform) bool {
		tr.SX = selection.ScaleMultiplier(tr.SX, c.ScaleX, s.limits)
		tr.SY = selection.ScaleMultiplier(tr.SY, c.ScaleY, s.limits)
		return true
	}
	switch c.Kind {
	case document.KindArray:
		return s.updateArray(c.ID, func(a *document.ArrayEntity) bool { return multiply(&a.Transform) })
	case document.KindStructure:
		return s.updateStructure(c.ID, func(st *document.StructureEntity) bool { return multiply(&st.Transform) })
	case document.KindShape:
		return s.updateShape(c.ID, func(sh *document.ShapeEntity) bool {
			*sh = selection.ApplyScale(*sh, c.ScaleX, c.ScaleY, s.limits)
			return true
		})
	}
	// Text annotations have no resize handles.
	return Result{}, nil
}

func (s *Store) deleteEntity(kind document.Kind, id string) Result {
	removed := false
	switch kind {
	case document.KindArray:
		s.state.Arrays, removed = without(s.state.Arrays, func(a document.ArrayEntity) bool { return a.ID == id })
	case document.KindStructure:
		s.state.Structures, removed = without(s.state.Structures, func(st document.StructureEntity) bool { return st.ID == id })
	case document.KindShape:
		s.state.Shapes, removed = without(s.state.Shapes, func(sh document.ShapeEntity) bool { return sh.ID == id })
	case document.KindText:
		s.state.Texts, removed = without(s.state.Texts, func(t document.TextAnnotation) bool { return t.ID == id })
	}
	return Result{Changed: removed}
}

// without returns a fresh slice lacking the matching element, or the
// original slice if nothing matched.
func without[T any](items []T, match func(T) bool) ([]T, bool) {
	i := slices.IndexFunc(items, match)
	if i < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

// The update helpers copy the collection, let fn edit a copy of the
// entity, and install both only if fn reports a change.

func (s *Store) updateArray(id string, fn func(*document.ArrayEntity) bool) (Result, error) {
	i, ok := s.state.FindArray(id)
	if !ok {
		return Result{}, nil
	}
	a := s.state.Arrays[i]
	if !fn(&a) {
		return Result{}, nil
	}
	s.state.Arrays = replaceAt(s.state.Arrays, i, a)
	return Result{Changed: true}, nil
}

func (s *Store) updateStructure(id string, fn func(*document.StructureEntity) bool) (Result, error) {
	i, ok := s.state.FindStructure(id)
	if !ok {
		return Result{}, nil
	}
	st := s.state.Structures[i]
	if !fn(&st) {
		return Result{}, nil
	}
	s.state.Structures = replaceAt(s.state.Structures, i, st)
	return Result{Changed: true}, nil
}

func (s *Store) updateShape(id string, fn func(*document.ShapeEntity) bool) (Result, error) {
	i, ok := s.state.FindShape(id)
	if !ok {
		return Result{}, nil
	}
	sh := s.state.Shapes[i]
	if !fn(&sh) {
		return Result{}, nil
	}
	s.state.Shapes = replaceAt(s.state.Shapes, i, sh)
	return Result{Changed: true}, nil
}

func (s *Store) updateText(id string, fn func(*document.TextAnnotation) bool) (Result, error) {
	i, ok := s.state.FindText(id)
	if !ok {
		return Result{}, nil
	}
	t := s.state.Texts[i]
	if !fn(&t) {
		return Result{}, nil
	}
	s.state.Texts = replaceAt(s.state.Texts, i, t)
	return Result{Changed: true}, nil
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
