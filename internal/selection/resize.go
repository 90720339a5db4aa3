package selection

import (
	"math"

	"github.com/dsaviz/dsaviz/internal/document"
)

// ApplyScale folds a gesture scale into the shape's own geometry and
// returns the result with a neutral transform scale, so scale never
// compounds across gestures.
func ApplyScale(sh document.ShapeEntity, sx, sy float64, lim document.Limits) document.ShapeEntity {
	sx, sy = Sanitize(sx), Sanitize(sy)
	out := sh
	out.Transform.SX, out.Transform.SY = 1, 1

	switch g := sh.Geometry.(type) {
	case document.RectGeometry:
		g.Width = max(lim.MinRectSize, g.Width*sx)
		g.Height = max(lim.MinRectSize, g.Height*sy)
		out.Geometry = g
	case document.CircleGeometry:
		g.Radius = max(lim.MinRadius, g.Radius*max(sx, sy))
		out.Geometry = g
	case document.PathGeometry:
		fx, fy := max(lim.MinPathScale, sx), max(lim.MinPathScale, sy)
		pts := make([]float64, len(g.Points))
		for i, v := range g.Points {
			if i%2 == 0 {
				pts[i] = v * fx
			} else {
				pts[i] = v * fy
			}
		}
		g.Points = pts
		out.Geometry = g
	case document.ArcGeometry:
		f := max(sx, sy)
		g.OuterRadius = max(lim.MinRadius, g.OuterRadius*f)
		g.InnerRadius = max(lim.MinRadius, g.InnerRadius*f)
		out.Geometry = g
	}
	return out
}

// ScaleMultiplier updates an array or structure display multiplier. The
// gesture factor is relative to the multiplier at gesture start.
func ScaleMultiplier(current, factor float64, lim document.Limits) float64 {
	return max(lim.MinScale, current*Sanitize(factor))
}

// Sanitize maps non-finite or non-positive factors to something the
// clamps can work with: NaN and infinities become neutral, and anything
// at or below zero becomes zero so the minimum-size clamp applies.
func Sanitize(f float64) float64 {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 1
	case f < 0:
		return 0
	}
	return f
}
