package document

// DefaultPointerColor is used for teaching labels without a preset color.
const DefaultPointerColor = "#FFD700"

var pointerColors = map[string]string{
	"i":       "#FF6B6B",
	"j":       "#4ECDC4",
	"low":     "#95E1D3",
	"high":    "#FFB84D",
	"left":    "#A8D8EA",
	"right":   "#FFB3BA",
	"mid":     "#FFFACD",
	"start":   "#B19CD9",
	"end":     "#87CEEB",
	"current": "#FFD700",
}

// PointerColor returns the display color for a pointer label.
func PointerColor(name string) string {
	if c, ok := pointerColors[name]; ok {
		return c
	}
	return DefaultPointerColor
}

// HighlightColors is the palette offered by the highlight picker.
var HighlightColors = []string{
	"#FFD700",
	"#FF6B6B",
	"#4ECDC4",
	"#95E1D3",
	"#FFB84D",
	"#A8D8EA",
	"#B19CD9",
	"#90EE90",
}
