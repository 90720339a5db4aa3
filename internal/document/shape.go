package document

type ShapeType string

const (
	ShapeRectangle    ShapeType = "rectangle"
	ShapeCircle       ShapeType = "circle"
	ShapeLine         ShapeType = "line"
	ShapeArrowUp      ShapeType = "arrowUp"
	ShapeArrowDown    ShapeType = "arrowDown"
	ShapeArrowLeft    ShapeType = "arrowLeft"
	ShapeArrowRight   ShapeType = "arrowRight"
	ShapeArcArrowUp   ShapeType = "arcArrowUp"
	ShapeArcArrowDown ShapeType = "arcArrowDown"
)

// IsArrow reports whether the shape is drawn with an arrow head at the
// end of its point sequence.
func (t ShapeType) IsArrow() bool {
	switch t {
	case ShapeArrowUp, ShapeArrowDown, ShapeArrowLeft, ShapeArrowRight:
		return true
	}
	return false
}

// Geometry is the variant-specific part of a shape. The set of
// implementations is closed: RectGeometry, CircleGeometry, PathGeometry
// and ArcGeometry.
type Geometry interface {
	geometry()
}

type RectGeometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CornerRadius float64 `json:"cornerRadius"`
}

type CircleGeometry struct {
	Radius float64 `json:"radius"`
}

// PathGeometry is a flat sequence of alternating x/y control points,
// relative to the shape's offset. Arrow shapes also carry head size.
type PathGeometry struct {
	Points        []float64 `json:"points"`
	PointerLength float64   `json:"pointerLength,omitempty"`
	PointerWidth  float64   `json:"pointerWidth,omitempty"`
}

type ArcGeometry struct {
	Angle       float64 `json:"angle"`
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
	Rotation    float64 `json:"rotation"`
}

func (RectGeometry) geometry()   {}
func (CircleGeometry) geometry() {}
func (PathGeometry) geometry()   {}
func (ArcGeometry) geometry()    {}

type ShapeEntity struct {
	ID        string    `json:"id"`
	Type      ShapeType `json:"type"`
	Transform Transform `json:"transform"`
	Style     Style     `json:"style"`
	Geometry  Geometry  `json:"geometry"`
}

const (
	DefaultStroke = "#333333"
	DefaultFill   = "#ffffff"
)

// DefaultGeometry returns the geometry a freshly dropped shape of the
// given type starts with. ok is false for unknown types.
//
// "vline" is accepted as an alias producing a vertical line.
func DefaultGeometry(kind string) (ShapeType, Geometry, bool) {
	switch kind {
	case string(ShapeRectangle):
		return ShapeRectangle, RectGeometry{Width: 120, Height: 70, CornerRadius: 6}, true
	case string(ShapeCircle):
		return ShapeCircle, CircleGeometry{Radius: 36}, true
	case string(ShapeLine):
		return ShapeLine, PathGeometry{Points: []float64{0, 0, 120, 0}}, true
	case "vline":
		return ShapeLine, PathGeometry{Points: []float64{0, 0, 0, 160}}, true
	case string(ShapeArrowUp):
		return ShapeArrowUp, arrowGeometry(0, 40, 0, 0), true
	case string(ShapeArrowDown):
		return ShapeArrowDown, arrowGeometry(0, 0, 0, 40), true
	case string(ShapeArrowLeft):
		return ShapeArrowLeft, arrowGeometry(40, 0, 0, 0), true
	case string(ShapeArrowRight):
		return ShapeArrowRight, arrowGeometry(0, 0, 40, 0), true
	case string(ShapeArcArrowUp):
		return ShapeArcArrowUp, ArcGeometry{Angle: 180, InnerRadius: 40, OuterRadius: 40, Rotation: 0}, true
	case string(ShapeArcArrowDown):
		return ShapeArcArrowDown, ArcGeometry{Angle: 180, InnerRadius: 40, OuterRadius: 40, Rotation: 180}, true
	}
	return "", nil, false
}

func arrowGeometry(x0, y0, x1, y1 float64) PathGeometry {
	return PathGeometry{
		Points:        []float64{x0, y0, x1, y1},
		PointerLength: 10,
		PointerWidth:  10,
	}
}

// CloneGeometry returns a copy that shares no slices with g.
func CloneGeometry(g Geometry) Geometry {
	if p, ok := g.(PathGeometry); ok {
		p.Points = append([]float64(nil), p.Points...)
		return p
	}
	return g
}
