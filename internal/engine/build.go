package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/selection"
)

const (
	outlineColor = "#1E90FF"
	handleSize   = 8.0
	hitPadding   = 6.0
	textBoxW     = 200.0
	textBoxH     = 60.0
)

// SceneOptions controls what BuildSceneGraph draws beyond the state
// itself.
type SceneOptions struct {
	Selected selection.Ref
	// Zoom keeps overlay strokes and handles a constant pixel size.
	Zoom float64

	preview *preview
}

// preview moves or scales one entity for an in-progress drag or resize
// without touching the store.
type preview struct {
	target selection.Ref
	dx, dy float64
	sx, sy float64
	limits document.Limits
}

func (p *preview) targets(kind document.Kind, id string) bool {
	return p != nil && p.target.Kind == kind && p.target.ID == id
}

// apply places an array, structure or text. Shapes fold the scale into
// their geometry instead, see shape.
func (p *preview) apply(kind document.Kind, id string, m Matrix2D) Matrix2D {
	if !p.targets(kind, id) {
		return m
	}
	m = Translate(p.dx, p.dy).Multiply(m)
	if kind == document.KindShape {
		return m
	}
	return m.Multiply(Scale(p.sx, p.sy))
}

// shape resizes sh exactly as committing the gesture would.
func (p *preview) shape(sh document.ShapeEntity) document.ShapeEntity {
	if !p.targets(document.KindShape, sh.ID) || selection.Neutral(p.sx, p.sy) {
		return sh
	}
	return selection.ApplyScale(sh, p.sx, p.sy, p.limits)
}

type builder struct {
	sg      *SceneGraph
	display document.DisplaySettings
	opts    SceneOptions
}

// BuildSceneGraph builds a render-ready scene graph from the state. Painter
// order is arrays, structures, shapes, texts, then the selection overlay.
func BuildSceneGraph(st document.State, d document.DisplaySettings, opts SceneOptions) *SceneGraph {
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	b := &builder{sg: NewSceneGraph(), display: d, opts: opts}

	for i, a := range st.Arrays {
		b.array(a, i)
	}
	for _, s := range st.Structures {
		b.structure(s)
	}
	for _, sh := range st.Shapes {
		b.shape(sh)
	}
	for _, t := range st.Texts {
		b.text(t)
	}
	b.overlay()
	return b.sg
}

func (b *builder) group(kind document.Kind, id string) *SceneNode {
	g := &SceneNode{ID: id, Kind: kind, Part: PartGroup, SubIndex: -1, Opacity: 1}
	b.sg.NodesById[id] = g
	b.sg.Root.Children = append(b.sg.Root.Children, g)
	return g
}

// add attaches n to the entity group g, placing it with matrix m.
func (b *builder) add(g *SceneNode, n *SceneNode, m Matrix2D) *SceneNode {
	n.ID, n.Kind = g.ID, g.Kind
	n.WorldTransform = m
	if n.Opacity == 0 {
		n.Opacity = 1
	}
	if n.Bounds == (layout.Rect{}) {
		if len(n.Path) > 0 {
			n.Bounds = computePathBounds(n.Path, m)
		} else if n.Text != "" {
			n.Bounds = m.TransformRect(textExtent(n))
		}
	}
	g.Children = append(g.Children, n)
	g.Bounds = g.Bounds.Union(n.Bounds)
	b.sg.Root.Bounds = b.sg.Root.Bounds.Union(n.Bounds)
	return n
}

func (b *builder) array(a document.ArrayEntity, ordinal int) {
	m := b.opts.preview.apply(document.KindArray, a.ID, ArrayMatrix(a, ordinal, b.display))
	g := b.group(document.KindArray, a.ID)
	cells := layout.Cells(a, b.display)

	for _, c := range cells {
		fill := "#FFFFFF"
		if h, ok := a.Highlights[c.Index]; ok {
			fill = h
		}
		b.add(g, &SceneNode{
			Part: PartCell, SubIndex: c.Index,
			Path: rectPath(c.X, c.Y, c.W, c.H),
			Fill: fill, Stroke: "#333333", StrokeWidth: 2,
			Hittable: true,
		}, m)
		center := c.Rect().Center()
		b.add(g, label(PartValue, c.Index, a.Values[c.Index], center.X, center.Y, b.display.CellFontSize, "#000000"), m)
		idx := layout.IndexLabel(c)
		b.add(g, label(PartIndex, c.Index, strconv.Itoa(c.Index), idx.X, idx.Y, 12, "#666666"), m)
	}

	tag := layout.ArrayLabel(b.display)
	b.add(g, label(PartLabel, -1, fmt.Sprintf("A%d", ordinal+1), tag.X, tag.Y, 14, "#333333"), m)

	names := make([]string, 0, len(a.Pointers))
	for name := range a.Pointers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		idx := a.Pointers[name]
		if !a.InRange(idx) {
			continue
		}
		b.pointer(g, m, cells[idx], name)
	}
}

// pointer draws a teaching label: a colored tag above the cell with an
// arrow pointing down at it.
func (b *builder) pointer(g *SceneNode, m Matrix2D, c layout.Cell, name string) {
	color := document.PointerColor(name)
	p := layout.PointerAnchor(c)
	tipY := c.Y - 4
	b.add(g, &SceneNode{
		Part: PartEdge, SubIndex: c.Index, Name: name,
		Path:   linePath(p.X, p.Y, p.X, tipY),
		Stroke: color, StrokeWidth: 2,
	}, m)
	b.add(g, &SceneNode{
		Part: PartEdge, SubIndex: c.Index, Name: name,
		Path: arrowHeadPath(p.X, p.Y, p.X, tipY, 12, 12),
		Fill: color,
	}, m)
	b.add(g, &SceneNode{
		Part: PartPointer, SubIndex: c.Index, Name: name,
		Path:     rectPath(p.X-30, p.Y-24, 60, 22),
		Fill:     color,
		Opacity:  0.9,
		Hittable: true,
	}, m)
	b.add(g, label(PartValue, -1, name, p.X, p.Y-13, 12, "#FFFFFF"), m)
}

func (b *builder) structure(s document.StructureEntity) {
	m := b.opts.preview.apply(document.KindStructure, s.ID, StructureMatrix(s))
	g := b.group(document.KindStructure, s.ID)

	if s.Type == document.StructureLinkedList {
		b.list(g, m, s)
		return
	}

	nodes := layout.StructureNodes(s)
	for _, e := range layout.StructureEdges(s) {
		from, to := nodes[e.From], nodes[e.To]
		b.add(g, &SceneNode{
			Part: PartEdge, SubIndex: e.To,
			Path:   linePath(from.X, from.Y, to.X, to.Y),
			Stroke: "#555555", StrokeWidth: 2,
		}, m)
	}
	for i, p := range nodes {
		b.add(g, &SceneNode{
			Part: PartNode, SubIndex: i,
			Path: ellipsePath(p.X, p.Y, layout.NodeRadius, layout.NodeRadius),
			Fill: "#E3F2FD", Stroke: "#1976D2", StrokeWidth: 2,
			Hittable: true,
		}, m)
		b.add(g, label(PartValue, i, s.Values[i], p.X, p.Y, b.display.CellFontSize, "#000000"), m)
	}
}

func (b *builder) list(g *SceneNode, m Matrix2D, s document.StructureEntity) {
	for _, c := range layout.ListConnectors(s.ListKind, s.Size) {
		stroke := "#333333"
		var dash []float64
		if c.Backward {
			stroke = "#E67E22"
			dash = []float64{4, 3}
		}
		b.add(g, &SceneNode{
			Part: PartConnector, SubIndex: -1,
			Path:   linePath(c.From.X, c.From.Y, c.To.X, c.To.Y),
			Stroke: stroke, StrokeWidth: 2, Dash: dash,
		}, m)
		b.add(g, &SceneNode{
			Part: PartConnector, SubIndex: -1,
			Path: arrowHeadPath(c.From.X, c.From.Y, c.To.X, c.To.Y, 8, 8),
			Fill: stroke,
		}, m)
	}
	for _, n := range layout.ListNodes(s.ListKind, s.Size) {
		node := s.Nodes[n.Index]
		for _, c := range n.Cells {
			fill := "#F5F5F5"
			if c.Field == document.FieldData {
				fill = "#FFFFFF"
			}
			b.add(g, &SceneNode{
				Part: PartListCell, SubIndex: n.Index, Field: c.Field,
				Path: rectPath(c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H),
				Fill: fill, Stroke: "#333333", StrokeWidth: 2,
				Hittable: true,
			}, m)
			center := c.Rect.Center()
			text := label(PartValue, n.Index, listFieldValue(node, c.Field), center.X, center.Y, b.display.CellFontSize, "#000000")
			text.Field = c.Field
			b.add(g, text, m)
		}
	}
}

func listFieldValue(n document.ListNode, f document.ListField) string {
	switch f {
	case document.FieldNext:
		return n.Next
	case document.FieldPrev:
		return n.Prev
	}
	return n.Data
}

func (b *builder) shape(sh document.ShapeEntity) {
	sh = b.opts.preview.shape(sh)
	m := b.opts.preview.apply(document.KindShape, sh.ID, ShapeMatrix(sh))
	g := b.group(document.KindShape, sh.ID)
	st := sh.Style
	body := &SceneNode{
		Part: PartShape, SubIndex: -1,
		Fill: st.Fill, Stroke: st.Stroke, StrokeWidth: st.StrokeWidth,
		Hittable: true,
	}

	var head []PathCommand
	switch geom := sh.Geometry.(type) {
	case document.RectGeometry:
		body.Path = rectPath(0, 0, geom.Width, geom.Height)
	case document.CircleGeometry:
		body.Path = ellipsePath(0, 0, geom.Radius, geom.Radius)
	case document.PathGeometry:
		body.Path = polylinePath(geom.Points)
		body.Fill = ""
		if sh.Type.IsArrow() && len(geom.Points) >= 4 {
			n := len(geom.Points)
			head = arrowHeadPath(geom.Points[n-4], geom.Points[n-3], geom.Points[n-2], geom.Points[n-1],
				geom.PointerLength, geom.PointerWidth)
		}
	case document.ArcGeometry:
		pts := arcPoints(geom)
		body.Path = polylinePath(pts)
		body.Fill = ""
		n := len(pts)
		head = arrowHeadPath(pts[n-4], pts[n-3], pts[n-2], pts[n-1], 10, 10)
	}
	if len(body.Path) == 0 {
		return
	}

	body.Bounds = pad(computePathBounds(body.Path, m), max(hitPadding, st.StrokeWidth))
	b.add(g, body, m)
	if len(head) > 0 {
		b.add(g, &SceneNode{Part: PartEdge, SubIndex: -1, Path: head, Fill: st.Stroke}, m)
	}
}

func (b *builder) text(t document.TextAnnotation) {
	m := b.opts.preview.apply(document.KindText, t.ID, TextMatrix(t))
	g := b.group(document.KindText, t.ID)
	b.add(g, &SceneNode{
		Part: PartText, SubIndex: -1,
		Path: rectPath(0, 0, textBoxW, textBoxH),
		Fill: "#FFFACD", Stroke: "#999999", StrokeWidth: 1,
		Hittable: true,
	}, m)
	content := label(PartValue, -1, t.Text, 5, 5+t.FontSize/2, t.FontSize, t.Color)
	content.Align = "left"
	content.FontFamily = t.FontFamily
	b.add(g, content, m)
}

// overlay draws the selection outline and, for resizable kinds, the eight
// handles: 0 top-left, then clockwise.
func (b *builder) overlay() {
	sel := b.opts.Selected
	g, ok := b.sg.NodesById[sel.ID]
	if sel.IsZero() || !ok || g.Kind != sel.Kind {
		return
	}
	px := 1 / b.opts.Zoom
	r := pad(g.Bounds, 4*px)
	outline := &SceneNode{
		ID: sel.ID, Kind: sel.Kind, Part: PartOutline, SubIndex: -1,
		WorldTransform: Identity(),
		Path:           rectPath(r.X, r.Y, r.W, r.H),
		Stroke:         outlineColor, StrokeWidth: px, Dash: []float64{4 * px, 4 * px},
		Opacity: 1,
		Bounds:  r,
	}
	b.sg.Root.Children = append(b.sg.Root.Children, outline)
	if !selection.HasHandles(sel.Kind) {
		return
	}
	size := handleSize * px
	for i, p := range handlePoints(r) {
		hr := layout.Rect{X: p.X - size/2, Y: p.Y - size/2, W: size, H: size}
		b.sg.Root.Children = append(b.sg.Root.Children, &SceneNode{
			ID: sel.ID, Kind: sel.Kind, Part: PartHandle, SubIndex: i,
			WorldTransform: Identity(),
			Path:           rectPath(hr.X, hr.Y, hr.W, hr.H),
			Fill:           "#FFFFFF", Stroke: outlineColor, StrokeWidth: px,
			Opacity:  1,
			Hittable: true,
			Bounds:   hr,
		})
	}
}

func handlePoints(r layout.Rect) [8]layout.Point {
	x0, x1, x2 := r.X, r.X+r.W/2, r.X+r.W
	y0, y1, y2 := r.Y, r.Y+r.H/2, r.Y+r.H
	return [8]layout.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x2, Y: y0}, {X: x2, Y: y1},
		{X: x2, Y: y2}, {X: x1, Y: y2}, {X: x0, Y: y2}, {X: x0, Y: y1},
	}
}

func label(part Part, sub int, text string, x, y, size float64, color string) *SceneNode {
	return &SceneNode{
		Part: part, SubIndex: sub,
		Text: text, TextX: x, TextY: y,
		FontSize: size, FontFamily: "Arial", Fill: color, Align: "center",
	}
}

// textExtent estimates the local box of a text node; glyph metrics belong
// to the renderer.
func textExtent(n *SceneNode) layout.Rect {
	w := 0.6 * n.FontSize * float64(utf8.RuneCountInString(n.Text))
	h := n.FontSize
	x := n.TextX - w/2
	if n.Align == "left" {
		x = n.TextX
	}
	return layout.Rect{X: x, Y: n.TextY - h/2, W: w, H: h}
}

func pad(r layout.Rect, p float64) layout.Rect {
	return layout.Rect{X: r.X - p, Y: r.Y - p, W: r.W + 2*p, H: r.H + 2*p}
}

func rectPath(x, y, w, h float64) []PathCommand {
	return []PathCommand{
		{"M", x, y},
		{"L", x + w, y},
		{"L", x + w, y + h},
		{"L", x, y + h},
		{"Z"},
	}
}

// ellipsePath generates path commands for an ellipse using bezier curves.
func ellipsePath(cx, cy, rx, ry float64) []PathCommand {
	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

func linePath(x0, y0, x1, y1 float64) []PathCommand {
	return []PathCommand{{"M", x0, y0}, {"L", x1, y1}}
}

func polylinePath(pts []float64) []PathCommand {
	if len(pts) < 4 {
		return nil
	}
	path := []PathCommand{{"M", pts[0], pts[1]}}
	for i := 2; i+1 < len(pts); i += 2 {
		path = append(path, PathCommand{"L", pts[i], pts[i+1]})
	}
	return path
}

// arrowHeadPath is a filled triangle with its tip at (x1, y1), pointing
// along the segment from (x0, y0).
func arrowHeadPath(x0, y0, x1, y1, length, width float64) []PathCommand {
	dx, dy := x1-x0, y1-y0
	d := math.Hypot(dx, dy)
	if d == 0 || length <= 0 {
		return nil
	}
	ux, uy := dx/d, dy/d
	bx, by := x1-ux*length, y1-uy*length
	px, py := -uy*width/2, ux*width/2
	return []PathCommand{
		{"M", x1, y1},
		{"L", bx + px, by + py},
		{"L", bx - px, by - py},
		{"Z"},
	}
}

// arcPoints samples an arc arrow. The arc starts at the rotation angle and
// sweeps Angle degrees towards negative y, so rotation 0 bulges up and
// rotation 180 bulges down.
func arcPoints(g document.ArcGeometry) []float64 {
	const segments = 24
	r := g.OuterRadius
	rot := Rotate(g.Rotation * math.Pi / 180)
	sweep := g.Angle * math.Pi / 180
	pts := make([]float64, 0, 2*(segments+1))
	for k := 0; k <= segments; k++ {
		phi := -sweep * float64(k) / segments
		x, y := rot.TransformPoint(r*math.Cos(phi), r*math.Sin(phi))
		pts = append(pts, x, y)
	}
	return pts
}

// computePathBounds computes the axis-aligned bounding box of a path in world space.
func computePathBounds(path []PathCommand, worldTransform Matrix2D) layout.Rect {
	var minX, minY, maxX, maxY float64
	first := true

	include := func(x, y float64) {
		wx, wy := worldTransform.TransformPoint(x, y)
		if first {
			minX, maxX = wx, wx
			minY, maxY = wy, wy
			first = false
			return
		}
		minX = math.Min(minX, wx)
		maxX = math.Max(maxX, wx)
		minY = math.Min(minY, wy)
		maxY = math.Max(maxY, wy)
	}

	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}

		switch op {
		case "M", "L":
			if len(cmd) >= 3 {
				include(toFloat64(cmd[1]), toFloat64(cmd[2]))
			}
		case "C":
			// Cubic bezier: include all control points and endpoint
			if len(cmd) >= 7 {
				for i := 1; i < 7; i += 2 {
					include(toFloat64(cmd[i]), toFloat64(cmd[i+1]))
				}
			}
		case "Q":
			if len(cmd) >= 5 {
				for i := 1; i < 5; i += 2 {
					include(toFloat64(cmd[i]), toFloat64(cmd[i+1]))
				}
			}
		}
	}

	if first {
		return layout.Rect{}
	}
	return layout.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// toFloat64 converts a path operand to float64.
func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
