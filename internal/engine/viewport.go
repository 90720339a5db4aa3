package engine

import (
	"math"

	"github.com/dsaviz/dsaviz/internal/document"
)

// Viewport is the pan/zoom applied on top of world space. A world point w
// lands at pixel pan + w*zoom in the host container.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Matrix maps world coordinates to container pixels.
func (v Viewport) Matrix() Matrix2D {
	return Translate(v.PanX, v.PanY).Multiply(Scale(v.Zoom, v.Zoom))
}

func (v Viewport) WorldToPixel(x, y float64) (float64, float64) {
	return v.Matrix().TransformPoint(x, y)
}

func (v Viewport) PixelToWorld(px, py float64) (float64, float64) {
	return v.Matrix().Invert().TransformPoint(px, py)
}

// ZoomAt changes the zoom level, clamped to the limits, keeping the world
// point under pixel (px, py) fixed on screen.
func (v Viewport) ZoomAt(px, py, zoom float64, lim document.Limits) Viewport {
	if math.IsNaN(zoom) || zoom <= 0 {
		return v
	}
	zoom = min(max(zoom, lim.MinZoom), lim.MaxZoom)
	if v.Zoom == 0 {
		v.Zoom = 1
	}
	ratio := zoom / v.Zoom
	return Viewport{
		PanX: px - (px-v.PanX)*ratio,
		PanY: py - (py-v.PanY)*ratio,
		Zoom: zoom,
	}
}

// ZoomBy zooms by ZoomStep^steps around (px, py). Positive steps zoom in.
func (v Viewport) ZoomBy(px, py, steps float64, lim document.Limits) Viewport {
	return v.ZoomAt(px, py, v.Zoom*math.Pow(lim.ZoomStep, steps), lim)
}

// PanBy moves the view by a pixel delta. Panning is unconstrained.
func (v Viewport) PanBy(dx, dy float64) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}
