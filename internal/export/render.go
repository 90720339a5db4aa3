// Package export rasterizes a scene to PNG.
package export

import (
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/layout"
)

// Options control the output image.
type Options struct {
	Width, Height int
	// Padding is kept clear on every side, in pixels.
	Padding float64
	// MaxScale caps the fit so a small scene is not blown up.
	MaxScale   float64
	Background string
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 800, Padding: 24, MaxScale: 2, Background: "#FFFFFF"}
}

// FitMatrix maps world bounds into the image, centered and uniformly
// scaled.
func FitMatrix(bounds layout.Rect, opts Options) engine.Matrix2D {
	if bounds.W <= 0 || bounds.H <= 0 {
		return engine.Identity()
	}
	availW := float64(opts.Width) - 2*opts.Padding
	availH := float64(opts.Height) - 2*opts.Padding
	s := min(availW/bounds.W, availH/bounds.H)
	if opts.MaxScale > 0 {
		s = min(s, opts.MaxScale)
	}
	s = max(s, 1e-3)
	ox := (float64(opts.Width) - bounds.W*s) / 2
	oy := (float64(opts.Height) - bounds.H*s) / 2
	return engine.Translate(ox, oy).
		Multiply(engine.Scale(s, s)).
		Multiply(engine.Translate(-bounds.X, -bounds.Y))
}

// Render draws the scene fitted into an image.
func Render(sg *engine.SceneGraph, opts Options) (image.Image, error) {
	dc, err := render(sg, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders the scene and encodes it as PNG.
func WritePNG(w io.Writer, sg *engine.SceneGraph, opts Options) error {
	dc, err := render(sg, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// renderer holds per-render state; font faces are not safe to share
// between goroutines.
type renderer struct {
	dc    *gg.Context
	faces map[faceKey]font.Face
}

type faceKey struct {
	mono bool
	size float64
}

func render(sg *engine.SceneGraph, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	if _, err := document.ParseColor(opts.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	fontsOnce.Do(loadFonts)
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	r := &renderer{dc: gg.NewContext(opts.Width, opts.Height), faces: map[faceKey]font.Face{}}
	setColor(r.dc, opts.Background, 1)
	r.dc.Clear()

	var bounds layout.Rect
	if sg != nil && sg.Root != nil {
		bounds = sg.Root.Bounds
	}
	for _, c := range engine.CompileDrawCommands(sg, FitMatrix(bounds, opts)) {
		switch c.Op {
		case "path":
			r.path(c)
		case "text":
			r.text(c)
		}
	}
	return r.dc, nil
}

func (r *renderer) path(c engine.DrawCommand) {
	dc := r.dc
	m := engine.FromSlice(c.Transform)
	dc.NewSubPath()
	for _, p := range c.Path {
		switch p.Op() {
		case "M":
			dc.MoveTo(m.TransformPoint(p.Arg(1), p.Arg(2)))
		case "L":
			dc.LineTo(m.TransformPoint(p.Arg(1), p.Arg(2)))
		case "Q":
			x1, y1 := m.TransformPoint(p.Arg(1), p.Arg(2))
			x, y := m.TransformPoint(p.Arg(3), p.Arg(4))
			dc.QuadraticTo(x1, y1, x, y)
		case "C":
			x1, y1 := m.TransformPoint(p.Arg(1), p.Arg(2))
			x2, y2 := m.TransformPoint(p.Arg(3), p.Arg(4))
			x, y := m.TransformPoint(p.Arg(5), p.Arg(6))
			dc.CubicTo(x1, y1, x2, y2, x, y)
		case "Z":
			dc.ClosePath()
		}
	}

	alpha := opacity(c.Opacity)
	if c.Fill != "" {
		setColor(dc, c.Fill, alpha)
		if c.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if c.Stroke != "" {
		setColor(dc, c.Stroke, alpha)
		scale := lineScale(m)
		dc.SetLineWidth(max(c.StrokeWidth, 1) * scale)
		dash := make([]float64, len(c.Dash))
		for i, d := range c.Dash {
			dash[i] = d * scale
		}
		dc.SetDash(dash...)
		dc.Stroke()
	}
	dc.ClearPath()
}

func (r *renderer) text(c engine.DrawCommand) {
	m := engine.FromSlice(c.Transform)
	size := c.FontSize * lineScale(m)
	if size < 1 {
		return
	}
	r.dc.SetFontFace(r.face(c.FontFamily, size))
	color := c.Fill
	if color == "" {
		color = "#000000"
	}
	setColor(r.dc, color, opacity(c.Opacity))
	x, y := m.TransformPoint(c.X, c.Y)
	ax := 0.5
	if c.Align == "left" {
		ax = 0
	}
	r.dc.DrawStringAnchored(c.Text, x, y, ax, 0.35)
}

// face returns a font face for the render. Monospace families map to Go
// Mono, everything else to Go Regular.
func (r *renderer) face(family string, size float64) font.Face {
	f := strings.ToLower(family)
	key := faceKey{
		mono: strings.Contains(f, "mono") || strings.Contains(f, "courier"),
		size: math.Round(size*4) / 4,
	}
	if fc, ok := r.faces[key]; ok {
		return fc
	}
	ttf := regular
	if key.mono {
		ttf = mono
	}
	fc := truetype.NewFace(ttf, &truetype.Options{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = fc
	return fc
}

// lineScale is the uniform scale factor of m, used for widths and sizes.
func lineScale(m engine.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}

func opacity(o float64) float64 {
	if o <= 0 || o > 1 {
		return 1
	}
	return o
}

// setColor paints with a "#RGB" or "#RRGGBB" color. The store admits no
// other form, so anything else only comes from a hand-built scene and
// paints black.
func setColor(dc *gg.Context, hex string, alpha float64) {
	c, _ := document.ParseColor(hex)
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

var (
	fontsOnce sync.Once
	regular   *truetype.Font
	mono      *truetype.Font
	fontErr   error
)

func loadFonts() {
	if regular, fontErr = truetype.Parse(goregular.TTF); fontErr != nil {
		return
	}
	mono, fontErr = truetype.Parse(gomono.TTF)
}
